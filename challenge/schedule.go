package challenge

import (
	"time"

	"craftbot/models"
)

// ReminderOffset pairs a duration before the submission deadline with
// the wording used in the reminder embed.
type ReminderOffset struct {
	Before time.Duration
	Label  string
}

// DefaultReminderOffsets are the intervals the bot has always used.
var DefaultReminderOffsets = []ReminderOffset{
	{Before: 24 * time.Hour, Label: "24 hours"},
	{Before: 6 * time.Hour, Label: "6 hours"},
	{Before: time.Hour, Label: "1 hour"},
	{Before: 30 * time.Minute, Label: "30 minutes"},
}

// ReminderTimes computes the reminder rows for a deadline. Offsets
// whose fire instant is not strictly in the future at scheduling time
// are skipped, never fired late.
func ReminderTimes(now, close time.Time, offsets []ReminderOffset, challengeID uint) []models.Reminder {
	var reminders []models.Reminder
	for _, offset := range offsets {
		fireAt := close.Add(-offset.Before)
		if fireAt.After(now) {
			reminders = append(reminders, models.Reminder{
				ChallengeID: challengeID,
				OffsetLabel: offset.Label,
				FireAt:      fireAt,
			})
		}
	}
	return reminders
}
