package storage

import (
	"context"
	"time"

	"craftbot/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type DiscussionStorage interface {
	Seen(ctx context.Context, link string) (bool, error)
	MarkSeen(ctx context.Context, discussion *models.SeenDiscussion) error
	PurgeOlderThan(ctx context.Context, before time.Time) (int64, error)
}

type GormDiscussionStorage struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewGormDiscussionStorage(db *gorm.DB, logger *zap.Logger) *GormDiscussionStorage {
	return &GormDiscussionStorage{db: db, logger: logger}
}

func (s *GormDiscussionStorage) Seen(ctx context.Context, link string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.SeenDiscussion{}).
		Where("link = ?", link).Count(&count).Error
	if err != nil {
		s.logger.Error("failed to query seen discussion", zap.String("link", link), zap.Error(err))
		return false, err
	}
	return count > 0, nil
}

func (s *GormDiscussionStorage) MarkSeen(ctx context.Context, discussion *models.SeenDiscussion) error {
	err := s.db.WithContext(ctx).Create(discussion).Error
	if IsUniqueViolation(err) {
		// Two pollers racing on the same link is harmless.
		return nil
	}
	return err
}

func (s *GormDiscussionStorage) PurgeOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Unscoped().
		Where("created_at < ?", before).Delete(&models.SeenDiscussion{})
	return result.RowsAffected, result.Error
}
