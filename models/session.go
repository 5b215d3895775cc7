package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session is a sportsbook launch issued to a player.
type Session struct {
	gorm.Model
	SID       string    `gorm:"column:sid;size:36;uniqueIndex;not null"`
	PlayerID  uint      `gorm:"index"`
	Player    Player    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Provider  string    `gorm:"size:16;index"`
	LaunchURL string    `gorm:"size:512"`
	ExpiresAt time.Time `gorm:"index"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) (err error) {
	if s.SID == "" {
		s.SID = strings.ToLower(uuid.New().String())
	}
	return nil
}
