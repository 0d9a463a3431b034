package models

import (
	"gorm.io/gorm"
)

// AuditEntry is one row of the moderator action log shown on the
// dashboard. The embed posted to the audit channel is best-effort;
// this row is the durable record.
type AuditEntry struct {
	gorm.Model
	Action  string `gorm:"not null;index"`
	ActorID string `gorm:"not null"`
	Subject string
	Detail  string
}
