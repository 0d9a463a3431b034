package models

import (
	"gorm.io/gorm"
)

// PredefinedWarning is a reusable warning template moderators can
// issue by name.
type PredefinedWarning struct {
	gorm.Model
	Name string `gorm:"uniqueIndex;not null"`
	Text string `gorm:"not null"`
}

// Warning is one warning issued to a member.
type Warning struct {
	gorm.Model
	UserID      string `gorm:"not null;index"`
	ModeratorID string `gorm:"not null"`
	Reason      string `gorm:"not null"`
	// Optional reference to the template the reason was taken from.
	PredefinedID *uint
}
