package challenge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderTimesAllFuture(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	close := now.Add(48 * time.Hour)

	reminders := ReminderTimes(now, close, DefaultReminderOffsets, 7)
	require.Len(t, reminders, 4)

	assert.Equal(t, close.Add(-24*time.Hour), reminders[0].FireAt)
	assert.Equal(t, "24 hours", reminders[0].OffsetLabel)
	assert.Equal(t, close.Add(-30*time.Minute), reminders[3].FireAt)
	for _, reminder := range reminders {
		assert.Equal(t, uint(7), reminder.ChallengeID)
		assert.True(t, reminder.FireAt.After(now))
	}
}

func TestReminderTimesSkipsElapsedOffsets(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Two hours to the deadline: only the 1 hour and 30 minute
	// reminders still lie ahead.
	reminders := ReminderTimes(now, now.Add(2*time.Hour), DefaultReminderOffsets, 1)
	require.Len(t, reminders, 2)
	assert.Equal(t, "1 hour", reminders[0].OffsetLabel)
	assert.Equal(t, "30 minutes", reminders[1].OffsetLabel)
}

func TestReminderTimesDeadlineInPast(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Empty(t, ReminderTimes(now, now.Add(-time.Hour), DefaultReminderOffsets, 1))
}

func TestReminderTimesExactBoundaryIsSkipped(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// A reminder landing exactly on now is not strictly in the future.
	reminders := ReminderTimes(now, now.Add(30*time.Minute), DefaultReminderOffsets, 1)
	assert.Empty(t, reminders)
}
