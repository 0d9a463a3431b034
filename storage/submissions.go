package storage

import (
	"context"
	"errors"

	"craftbot/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SubmissionStorage interface {
	GetForUser(ctx context.Context, userID string, challengeID uint) (*models.Submission, error)
	GetByID(ctx context.Context, id uint) (*models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	Save(ctx context.Context, submission *models.Submission) error
	ListByChallenge(ctx context.Context, challengeID uint) ([]models.Submission, error)
	ListFinalized(ctx context.Context, challengeID uint) ([]models.Submission, error)
	// FinalizeAll is the bulk one-way draft -> finalized transition at
	// voting start.
	FinalizeAll(ctx context.Context, challengeID uint) error
	Delete(ctx context.Context, id uint) error
	DeleteByChallenge(ctx context.Context, challengeID uint) error
}

type GormSubmissionStorage struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewGormSubmissionStorage(db *gorm.DB, logger *zap.Logger) *GormSubmissionStorage {
	return &GormSubmissionStorage{db: db, logger: logger}
}

func (s *GormSubmissionStorage) GetForUser(ctx context.Context, userID string, challengeID uint) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.logger.Error("failed to query submission",
			zap.String("userID", userID), zap.Uint("challengeID", challengeID), zap.Error(err))
		return nil, err
	}
	return &submission, nil
}

func (s *GormSubmissionStorage) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.WithContext(ctx).First(&submission, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.logger.Error("failed to query submission", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &submission, nil
}

func (s *GormSubmissionStorage) Create(ctx context.Context, submission *models.Submission) error {
	return s.db.WithContext(ctx).Create(submission).Error
}

func (s *GormSubmissionStorage) Save(ctx context.Context, submission *models.Submission) error {
	return s.db.WithContext(ctx).Save(submission).Error
}

func (s *GormSubmissionStorage) ListByChallenge(ctx context.Context, challengeID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := s.db.WithContext(ctx).
		Where("challenge_id = ?", challengeID).
		Order("created_at ASC").Find(&submissions).Error
	if err != nil {
		s.logger.Error("failed to list submissions", zap.Uint("challengeID", challengeID), zap.Error(err))
		return nil, err
	}
	return submissions, nil
}

func (s *GormSubmissionStorage) ListFinalized(ctx context.Context, challengeID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := s.db.WithContext(ctx).
		Where("challenge_id = ? AND finalized", challengeID).
		Order("created_at ASC").Find(&submissions).Error
	if err != nil {
		s.logger.Error("failed to list finalized submissions", zap.Uint("challengeID", challengeID), zap.Error(err))
		return nil, err
	}
	return submissions, nil
}

func (s *GormSubmissionStorage) FinalizeAll(ctx context.Context, challengeID uint) error {
	return s.db.WithContext(ctx).Model(&models.Submission{}).
		Where("challenge_id = ?", challengeID).
		Update("finalized", true).Error
}

func (s *GormSubmissionStorage) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Unscoped().Delete(&models.Submission{}, id).Error
}

func (s *GormSubmissionStorage) DeleteByChallenge(ctx context.Context, challengeID uint) error {
	return s.db.WithContext(ctx).Unscoped().
		Where("challenge_id = ?", challengeID).Delete(&models.Submission{}).Error
}
