package challenge

import (
	"context"
	"strings"
	"testing"
	"time"

	"craftbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestScheduler(t *testing.T) (*Scheduler, *fakeChallengeStore, *fakeReminderStore, *fakeGateway) {
	t.Helper()
	challenges := newFakeChallengeStore()
	reminders := newFakeReminderStore()
	gateway := newFakeGateway()
	cfg := models.Config{ContestRoleID: "role-contest"}
	scheduler := NewScheduler(challenges, reminders, gateway, cfg, zap.NewNop())
	return scheduler, challenges, reminders, gateway
}

func seedChallenge(t *testing.T, challenges *fakeChallengeStore, state string) *models.Challenge {
	t.Helper()
	row := &models.Challenge{
		Theme:            "Medieval Castles",
		State:            state,
		SubmissionsClose: time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC),
		ThreadID:         "thread-1",
		Active:           state != models.StateClosed,
	}
	require.NoError(t, challenges.Create(context.Background(), row))
	return row
}

func TestTickFiresDueReminderOnce(t *testing.T) {
	scheduler, challenges, reminders, gateway := newTestScheduler(t)
	row := seedChallenge(t, challenges, models.StateSubmissions)

	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	scheduler.now = fixedClock(now)
	require.NoError(t, reminders.CreateBatch(context.Background(), []models.Reminder{
		{ChallengeID: row.ID, OffsetLabel: "24 hours", FireAt: now.Add(-time.Minute)},
		{ChallengeID: row.ID, OffsetLabel: "6 hours", FireAt: now.Add(18 * time.Hour)},
	}))

	scheduler.Tick(context.Background())

	require.Len(t, gateway.posted, 1)
	assert.Equal(t, "thread-1", gateway.posted[0].channelID)
	assert.True(t, strings.Contains(gateway.posted[0].msg.Content, "role-contest"),
		"reminder pings the contest role")
	assert.Equal(t, 1, reminders.pending(row.ID), "the future reminder stays scheduled")

	// The fired row never fires again.
	scheduler.Tick(context.Background())
	assert.Len(t, gateway.posted, 1)
}

func TestTickSurvivesRestart(t *testing.T) {
	// Rows persisted before a crash are picked up by a fresh scheduler
	// instance with no in-process state.
	_, challenges, reminders, _ := newTestScheduler(t)
	row := seedChallenge(t, challenges, models.StateSubmissions)

	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	require.NoError(t, reminders.CreateBatch(context.Background(), []models.Reminder{
		{ChallengeID: row.ID, OffsetLabel: "1 hour", FireAt: now.Add(-time.Minute)},
	}))

	gateway := newFakeGateway()
	restarted := NewScheduler(challenges, reminders, gateway, models.Config{ContestRoleID: "role-contest"}, zap.NewNop())
	restarted.now = fixedClock(now)
	restarted.Tick(context.Background())

	assert.Len(t, gateway.posted, 1)
	assert.Equal(t, 0, reminders.pending(row.ID))
}

func TestTickCancelsStaleReminders(t *testing.T) {
	scheduler, challenges, reminders, gateway := newTestScheduler(t)
	voting := seedChallenge(t, challenges, models.StateVoting)

	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	scheduler.now = fixedClock(now)
	require.NoError(t, reminders.CreateBatch(context.Background(), []models.Reminder{
		// Challenge moved past Submissions without the reminder being
		// cancelled, and a reminder whose challenge is gone entirely.
		{ChallengeID: voting.ID, OffsetLabel: "24 hours", FireAt: now.Add(-time.Minute)},
		{ChallengeID: 999, OffsetLabel: "24 hours", FireAt: now.Add(-time.Minute)},
	}))

	scheduler.Tick(context.Background())

	assert.Empty(t, gateway.posted, "stale reminders never post")
	assert.Equal(t, 0, reminders.pending(voting.ID))
	assert.Equal(t, 0, reminders.pending(999))
}

func TestTickRetriesAfterPostFailure(t *testing.T) {
	scheduler, challenges, reminders, gateway := newTestScheduler(t)
	row := seedChallenge(t, challenges, models.StateSubmissions)

	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	scheduler.now = fixedClock(now)
	require.NoError(t, reminders.CreateBatch(context.Background(), []models.Reminder{
		{ChallengeID: row.ID, OffsetLabel: "24 hours", FireAt: now.Add(-time.Minute)},
	}))

	gateway.failPost = true
	scheduler.Tick(context.Background())
	assert.Equal(t, 1, reminders.pending(row.ID), "failed post leaves the row unfired")

	gateway.failPost = false
	scheduler.Tick(context.Background())
	assert.Len(t, gateway.posted, 1)
	assert.Equal(t, 0, reminders.pending(row.ID))
}
