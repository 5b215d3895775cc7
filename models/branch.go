package models

import "gorm.io/gorm"

type Branch struct {
	gorm.Model

	Username   string `gorm:"uniqueIndex;size:32" json:"username"`
	BranchCode string `gorm:"uniqueIndex;size:32" json:"branch_code"`
	SecretKey  string `gorm:"size:128" json:"secret_key"`
	Currency   string `gorm:"size:8" json:"currency"`
	IsActive   bool   `gorm:"default:true" json:"is_active"`

	Players []Player `gorm:"foreignKey:BranchCode;references:BranchCode"`
}
