package challenge

import (
	"context"
	"errors"
	"time"

	"craftbot/discord"
	"craftbot/models"
	"craftbot/storage"

	"go.uber.org/zap"
)

// Scheduler fires due reminder rows. Because the schedule lives in
// the database, a restart picks up exactly the unfired entries; rows
// whose challenge has been deleted or has moved past Submissions are
// retired instead of fired.
type Scheduler struct {
	challenges storage.ChallengeStorage
	reminders  storage.ReminderStorage
	gateway    discord.Gateway
	cfg        models.Config
	logger     *zap.Logger
	interval   time.Duration
	now        func() time.Time
}

func NewScheduler(
	challenges storage.ChallengeStorage,
	reminders storage.ReminderStorage,
	gateway discord.Gateway,
	cfg models.Config,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		challenges: challenges,
		reminders:  reminders,
		gateway:    gateway,
		cfg:        cfg,
		logger:     logger,
		interval:   30 * time.Second,
		now:        time.Now,
	}
}

// Run polls until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("reminder scheduler started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick fires everything currently due. Exported so a single pass can
// be driven directly in tests.
func (s *Scheduler) Tick(ctx context.Context) {
	due, err := s.reminders.Due(ctx, s.now())
	if err != nil {
		s.logger.Error("failed to query due reminders", zap.Error(err))
		return
	}

	for _, reminder := range due {
		current, err := s.challenges.GetByID(ctx, reminder.ChallengeID)
		if errors.Is(err, storage.ErrNotFound) || (err == nil && current.State != models.StateSubmissions) {
			// Stale entry: the challenge is gone or past its
			// submission window.
			if err := s.reminders.MarkCancelled(ctx, reminder.ID); err != nil {
				s.logger.Error("failed to cancel stale reminder", zap.Uint("reminderID", reminder.ID), zap.Error(err))
			}
			continue
		}
		if err != nil {
			s.logger.Error("failed to load challenge for reminder",
				zap.Uint("reminderID", reminder.ID), zap.Error(err))
			continue
		}

		msg := discord.Message{
			Content: "<@&" + s.cfg.ContestRoleID + ">",
			Embeds:  []discord.Embed{reminderEmbed(current, reminder.OffsetLabel)},
		}
		if _, err := s.gateway.PostMessage(ctx, current.ThreadID, msg); err != nil {
			// Leave the row unfired; the next tick retries until the
			// challenge closes or the row is cancelled.
			s.logger.Error("failed to post reminder",
				zap.Uint("reminderID", reminder.ID), zap.String("threadID", current.ThreadID), zap.Error(err))
			continue
		}
		if err := s.reminders.MarkFired(ctx, reminder.ID); err != nil {
			s.logger.Error("failed to mark reminder fired", zap.Uint("reminderID", reminder.ID), zap.Error(err))
		}
	}
}
