package models

import (
	"time"

	"gorm.io/gorm"
)

// Reminder is one scheduled deadline notification. Reminders live in
// the database rather than in one-shot timers so that a restart never
// re-fires or loses them; the scheduler polls for due rows.
type Reminder struct {
	gorm.Model
	ChallengeID uint      `gorm:"not null;index"`
	OffsetLabel string    `gorm:"not null"` // e.g. "24 hours", "30 minutes"
	FireAt      time.Time `gorm:"not null;index"`
	Fired       bool      `gorm:"not null;default:false"`
	Cancelled   bool      `gorm:"not null;default:false"`
}
