package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/inkwell-edu/inkwell-backend/internal/domain"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/logger"
)

type AttemptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, attempts []*types.Attempt) ([]*types.Attempt, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Attempt, error)
	// Latest returns the highest-numbered attempt for the pair, or nil
	// when none exist.
	Latest(ctx context.Context, tx *gorm.DB, userID, topicID uuid.UUID) (*types.Attempt, error)
	ListForUserTopic(ctx context.Context, tx *gorm.DB, userID, topicID uuid.UUID) ([]*types.Attempt, error)
	Update(ctx context.Context, tx *gorm.DB, attempt *types.Attempt) error
}

type attemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AttemptRepo {
	return &attemptRepo{db: db, log: baseLog.With("repo", "AttemptRepo")}
}

func (r *attemptRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *attemptRepo) Create(ctx context.Context, tx *gorm.DB, attempts []*types.Attempt) ([]*types.Attempt, error) {
	if len(attempts) == 0 {
		return []*types.Attempt{}, nil
	}
	if err := r.conn(tx).WithContext(ctx).Create(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r *attemptRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Attempt, error) {
	var a types.Attempt
	if err := r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attemptRepo) Latest(ctx context.Context, tx *gorm.DB, userID, topicID uuid.UUID) (*types.Attempt, error) {
	var a types.Attempt
	err := r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		Order("attempt_number DESC").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attemptRepo) ListForUserTopic(ctx context.Context, tx *gorm.DB, userID, topicID uuid.UUID) ([]*types.Attempt, error) {
	var results []*types.Attempt
	if err := r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		Order("attempt_number").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *attemptRepo) Update(ctx context.Context, tx *gorm.DB, attempt *types.Attempt) error {
	attempt.UpdatedAt = time.Now().UTC()
	return r.conn(tx).WithContext(ctx).Save(attempt).Error
}
