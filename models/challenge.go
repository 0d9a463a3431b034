package models

import (
	"time"

	"gorm.io/gorm"
)

// Challenge lifecycle states.
const (
	StateSubmissions = "Submissions"
	StateVoting      = "Voting"
	StateClosed      = "Closed"
)

// Challenge is one themed, time-boxed community submission event.
// The partial unique index on Active closes the race between two
// near-simultaneous start commands: postgres only allows a single
// row with active = true.
type Challenge struct {
	gorm.Model
	Theme            string `gorm:"not null"`
	Description      string
	State            string `gorm:"not null;default:'Submissions';index"`
	SubmissionsClose time.Time
	VotingBegins     time.Time // informational only, voting is started by a moderator
	VotingEnds       time.Time
	ThreadID         string `gorm:"not null"`
	VotingThreadID   string // assigned when voting starts in dual-thread mode
	ImageURL         string
	ApprovedMods     string
	// Emoji the ballots were seeded with, recorded at voting start so
	// the tally reads the same glyph even if configuration changes.
	VoteEmoji        string
	Active           bool         `gorm:"not null;default:true;uniqueIndex:uniq_active_challenge,where:active"`
	Submissions      []Submission `gorm:"foreignKey:ChallengeID"`
}

// IsOpen reports whether the challenge still occupies the single
// active slot (accepting submissions or collecting votes).
func (c *Challenge) IsOpen() bool {
	return c.State == StateSubmissions || c.State == StateVoting
}
