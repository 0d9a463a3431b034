package utils

import (
	"context"
	"time"

	"craftbot/storage"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CronCleaner runs the nightly housekeeping: settled reminder rows
// older than a week and seen-discussion rows older than a month are
// purged. Neither table is load-bearing history; the audit log is.
func CronCleaner(reminders storage.ReminderStorage, discussions storage.DiscussionStorage, logger *zap.Logger) {
	c := cron.New()

	c.AddFunc("0 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		purged, err := reminders.PurgeSettled(ctx, time.Now().Add(-7*24*time.Hour))
		if err != nil {
			logger.Error("failed to purge settled reminders", zap.Error(err))
		} else {
			logger.Info("purged settled reminders", zap.Int64("rows", purged))
		}

		purged, err = discussions.PurgeOlderThan(ctx, time.Now().Add(-30*24*time.Hour))
		if err != nil {
			logger.Error("failed to purge old seen discussions", zap.Error(err))
		} else {
			logger.Info("purged old seen discussions", zap.Int64("rows", purged))
		}
	})

	c.Start()
}
