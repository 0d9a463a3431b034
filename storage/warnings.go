package storage

import (
	"context"
	"errors"

	"craftbot/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type WarningStorage interface {
	CreatePredefined(ctx context.Context, warning *models.PredefinedWarning) error
	ListPredefined(ctx context.Context) ([]models.PredefinedWarning, error)
	GetPredefined(ctx context.Context, id uint) (*models.PredefinedWarning, error)
	SavePredefined(ctx context.Context, warning *models.PredefinedWarning) error
	DeletePredefined(ctx context.Context, id uint) error

	CreateWarning(ctx context.Context, warning *models.Warning) error
	GetWarning(ctx context.Context, id uint) (*models.Warning, error)
	SaveWarning(ctx context.Context, warning *models.Warning) error
	ListWarnings(ctx context.Context) ([]models.Warning, error)
	ListWarningsForUser(ctx context.Context, userID string) ([]models.Warning, error)
	DeleteWarning(ctx context.Context, id uint) error
	ClearUser(ctx context.Context, userID string) (int64, error)
}

type GormWarningStorage struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewGormWarningStorage(db *gorm.DB, logger *zap.Logger) *GormWarningStorage {
	return &GormWarningStorage{db: db, logger: logger}
}

func (s *GormWarningStorage) CreatePredefined(ctx context.Context, warning *models.PredefinedWarning) error {
	return s.db.WithContext(ctx).Create(warning).Error
}

func (s *GormWarningStorage) ListPredefined(ctx context.Context) ([]models.PredefinedWarning, error) {
	var warnings []models.PredefinedWarning
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&warnings).Error; err != nil {
		s.logger.Error("failed to list predefined warnings", zap.Error(err))
		return nil, err
	}
	return warnings, nil
}

func (s *GormWarningStorage) GetPredefined(ctx context.Context, id uint) (*models.PredefinedWarning, error) {
	var warning models.PredefinedWarning
	err := s.db.WithContext(ctx).First(&warning, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &warning, nil
}

func (s *GormWarningStorage) SavePredefined(ctx context.Context, warning *models.PredefinedWarning) error {
	return s.db.WithContext(ctx).Save(warning).Error
}

func (s *GormWarningStorage) DeletePredefined(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Unscoped().Delete(&models.PredefinedWarning{}, id).Error
}

func (s *GormWarningStorage) CreateWarning(ctx context.Context, warning *models.Warning) error {
	return s.db.WithContext(ctx).Create(warning).Error
}

func (s *GormWarningStorage) GetWarning(ctx context.Context, id uint) (*models.Warning, error) {
	var warning models.Warning
	err := s.db.WithContext(ctx).First(&warning, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &warning, nil
}

func (s *GormWarningStorage) SaveWarning(ctx context.Context, warning *models.Warning) error {
	return s.db.WithContext(ctx).Save(warning).Error
}

func (s *GormWarningStorage) ListWarnings(ctx context.Context) ([]models.Warning, error) {
	var warnings []models.Warning
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&warnings).Error; err != nil {
		s.logger.Error("failed to list warnings", zap.Error(err))
		return nil, err
	}
	return warnings, nil
}

func (s *GormWarningStorage) ListWarningsForUser(ctx context.Context, userID string) ([]models.Warning, error) {
	var warnings []models.Warning
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").Find(&warnings).Error
	if err != nil {
		s.logger.Error("failed to list warnings for user", zap.String("userID", userID), zap.Error(err))
		return nil, err
	}
	return warnings, nil
}

func (s *GormWarningStorage) DeleteWarning(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Unscoped().Delete(&models.Warning{}, id).Error
}

func (s *GormWarningStorage) ClearUser(ctx context.Context, userID string) (int64, error) {
	result := s.db.WithContext(ctx).Unscoped().
		Where("user_id = ?", userID).Delete(&models.Warning{})
	return result.RowsAffected, result.Error
}
