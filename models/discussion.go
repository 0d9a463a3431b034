package models

import (
	"gorm.io/gorm"
)

// SeenDiscussion records a Steam forum thread the monitor has already
// notified about. Keeping this in postgres instead of process memory
// means a restart does not re-announce old threads.
type SeenDiscussion struct {
	gorm.Model
	Link   string `gorm:"uniqueIndex;not null"`
	Title  string
	Author string
}
