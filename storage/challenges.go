package storage

import (
	"context"
	"errors"

	"craftbot/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ChallengeStorage interface {
	// GetOpen returns the challenge currently in Submissions or
	// Voting, or ErrNotFound when no challenge is active.
	GetOpen(ctx context.Context) (*models.Challenge, error)
	GetByID(ctx context.Context, id uint) (*models.Challenge, error)
	Create(ctx context.Context, challenge *models.Challenge) error
	Save(ctx context.Context, challenge *models.Challenge) error
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	// Delete removes the row permanently; moderator deletion is the
	// one place a challenge physically disappears.
	Delete(ctx context.Context, id uint) error
	ListAll(ctx context.Context) ([]models.Challenge, error)
	ListOpen(ctx context.Context) ([]models.Challenge, error)
}

type GormChallengeStorage struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewGormChallengeStorage(db *gorm.DB, logger *zap.Logger) *GormChallengeStorage {
	return &GormChallengeStorage{db: db, logger: logger}
}

func (s *GormChallengeStorage) GetOpen(ctx context.Context) (*models.Challenge, error) {
	var challenge models.Challenge
	err := s.db.WithContext(ctx).
		Where("state IN ?", []string{models.StateSubmissions, models.StateVoting}).
		Order("id DESC").First(&challenge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.logger.Error("failed to query open challenge", zap.Error(err))
		return nil, err
	}
	return &challenge, nil
}

func (s *GormChallengeStorage) GetByID(ctx context.Context, id uint) (*models.Challenge, error) {
	var challenge models.Challenge
	err := s.db.WithContext(ctx).First(&challenge, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.logger.Error("failed to query challenge", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &challenge, nil
}

func (s *GormChallengeStorage) Create(ctx context.Context, challenge *models.Challenge) error {
	return s.db.WithContext(ctx).Create(challenge).Error
}

func (s *GormChallengeStorage) Save(ctx context.Context, challenge *models.Challenge) error {
	return s.db.WithContext(ctx).Save(challenge).Error
}

func (s *GormChallengeStorage) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return s.db.WithContext(ctx).Model(&models.Challenge{}).Where("id = ?", id).Updates(fields).Error
}

func (s *GormChallengeStorage) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Unscoped().Delete(&models.Challenge{}, id).Error
}

func (s *GormChallengeStorage) ListAll(ctx context.Context) ([]models.Challenge, error) {
	var challenges []models.Challenge
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&challenges).Error; err != nil {
		s.logger.Error("failed to list challenges", zap.Error(err))
		return nil, err
	}
	return challenges, nil
}

func (s *GormChallengeStorage) ListOpen(ctx context.Context) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := s.db.WithContext(ctx).
		Where("state IN ? AND active", []string{models.StateSubmissions, models.StateVoting}).
		Order("id DESC").Find(&challenges).Error
	if err != nil {
		s.logger.Error("failed to list open challenges", zap.Error(err))
		return nil, err
	}
	return challenges, nil
}
