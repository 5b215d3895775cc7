package models

import (
	"gorm.io/gorm"
)

// Player is a wallet holder registered under a branch. Balances live in the
// wallet service, not here.
type Player struct {
	gorm.Model

	UserCode   string `gorm:"uniqueIndex;size:64" json:"user_code"`
	BranchCode string `gorm:"index;size:32" json:"branch_code"`
	Country    string `gorm:"size:64" json:"country"`
	Currency   string `gorm:"size:8" json:"currency"`
	IsActive   bool   `gorm:"default:true" json:"is_active"`
}
