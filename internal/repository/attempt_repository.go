package repository

import (
	"context"
	"time"

	"github.com/lshigami/jlpt-assessment/internal/apperror"
	"github.com/lshigami/jlpt-assessment/internal/model"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Attempt, error)
	// FindLatest returns the most recently created attempt regardless of
	// status, or (nil, nil) when the user never started the test.
	FindLatest(ctx context.Context, userID, testID uint) (*model.Attempt, error)
	FindLive(ctx context.Context, userID, testID uint) (*model.Attempt, error)
	// CreateLive inserts an IN_PROGRESS attempt. It returns
	// ErrLiveAttemptExists when idx_attempts_live rejects the row.
	CreateLive(ctx context.Context, userID, testID uint) (*model.Attempt, error)
	DeleteAnswerLogs(ctx context.Context, attemptID uint) (int64, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) FindByID(ctx context.Context, id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	if err := r.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("attempt", id)
		}
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindLatest(ctx context.Context, userID, testID uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND test_id = ?", userID, testID).
		Order("created_at DESC, id DESC").
		First(&attempt).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindLive(ctx context.Context, userID, testID uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND test_id = ? AND status = ?", userID, testID, model.AttemptInProgress).
		First(&attempt).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) CreateLive(ctx context.Context, userID, testID uint) (*model.Attempt, error) {
	attempt := model.Attempt{
		UserID:    userID,
		TestID:    testID,
		Status:    model.AttemptInProgress,
		StartedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Omit("Test").Create(&attempt).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrLiveAttemptExists
		}
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) DeleteAnswerLogs(ctx context.Context, attemptID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("attempt_id = ?", attemptID).Delete(&model.AnswerLog{})
	return res.RowsAffected, res.Error
}
