package storage

import (
	"context"

	"craftbot/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AuditStorage interface {
	Record(ctx context.Context, entry *models.AuditEntry) error
	List(ctx context.Context, limit int) ([]models.AuditEntry, error)
}

type GormAuditStorage struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewGormAuditStorage(db *gorm.DB, logger *zap.Logger) *GormAuditStorage {
	return &GormAuditStorage{db: db, logger: logger}
}

func (s *GormAuditStorage) Record(ctx context.Context, entry *models.AuditEntry) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *GormAuditStorage) List(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []models.AuditEntry
	if err := s.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&entries).Error; err != nil {
		s.logger.Error("failed to list audit entries", zap.Error(err))
		return nil, err
	}
	return entries, nil
}
