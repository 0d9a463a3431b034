package models

import (
	"gorm.io/gorm"
)

// Submission is one participant's entry, at most one per user per
// challenge. The composite unique index enforces that at the storage
// layer; the ledger's check-then-act path only decides between insert
// and update.
type Submission struct {
	gorm.Model
	UserID      string `gorm:"not null;uniqueIndex:uniq_user_challenge"`
	ChallengeID uint   `gorm:"not null;uniqueIndex:uniq_user_challenge;index"`
	ImageURL    string `gorm:"not null"`
	Description string
	Finalized   bool `gorm:"not null;default:false"`
	// Ballot message, assigned when voting starts.
	MessageID string
	ChannelID string
	// Derived at tally time, kept only for the results record.
	VoteCount int `gorm:"not null;default:0"`
}
