package storage

import (
	"context"
	"time"

	"craftbot/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ReminderStorage interface {
	CreateBatch(ctx context.Context, reminders []models.Reminder) error
	// Due returns unfired, uncancelled reminders whose fire time has
	// passed, oldest first.
	Due(ctx context.Context, now time.Time) ([]models.Reminder, error)
	MarkFired(ctx context.Context, id uint) error
	MarkCancelled(ctx context.Context, id uint) error
	// CancelForChallenge retires every unfired reminder of a
	// challenge; used on deletion, close, and deadline changes.
	CancelForChallenge(ctx context.Context, challengeID uint) error
	// PurgeSettled deletes fired or cancelled rows older than before.
	PurgeSettled(ctx context.Context, before time.Time) (int64, error)
}

type GormReminderStorage struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewGormReminderStorage(db *gorm.DB, logger *zap.Logger) *GormReminderStorage {
	return &GormReminderStorage{db: db, logger: logger}
}

func (s *GormReminderStorage) CreateBatch(ctx context.Context, reminders []models.Reminder) error {
	if len(reminders) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&reminders).Error
}

func (s *GormReminderStorage) Due(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	var due []models.Reminder
	err := s.db.WithContext(ctx).
		Where("fire_at <= ? AND NOT fired AND NOT cancelled", now).
		Order("fire_at ASC").Find(&due).Error
	if err != nil {
		s.logger.Error("failed to query due reminders", zap.Error(err))
		return nil, err
	}
	return due, nil
}

func (s *GormReminderStorage) MarkFired(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Model(&models.Reminder{}).
		Where("id = ?", id).Update("fired", true).Error
}

func (s *GormReminderStorage) MarkCancelled(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Model(&models.Reminder{}).
		Where("id = ?", id).Update("cancelled", true).Error
}

func (s *GormReminderStorage) CancelForChallenge(ctx context.Context, challengeID uint) error {
	return s.db.WithContext(ctx).Model(&models.Reminder{}).
		Where("challenge_id = ? AND NOT fired", challengeID).
		Update("cancelled", true).Error
}

func (s *GormReminderStorage) PurgeSettled(ctx context.Context, before time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Unscoped().
		Where("(fired OR cancelled) AND updated_at < ?", before).
		Delete(&models.Reminder{})
	return result.RowsAffected, result.Error
}
