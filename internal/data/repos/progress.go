package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/inkwell-edu/inkwell-backend/internal/domain"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/logger"
)

type ProgressRepo interface {
	// GetOrCreateLocked fetches the (user, topic) progress row under a
	// row-level lock, creating it when absent. Must run inside the
	// caller's transaction: the lock serializes concurrent submissions
	// so attempt numbers never collide.
	GetOrCreateLocked(ctx context.Context, tx *gorm.DB, userID, topicID uuid.UUID) (*types.UserTopicProgress, bool, error)

	Get(ctx context.Context, tx *gorm.DB, userID, topicID uuid.UUID) (*types.UserTopicProgress, error)
	GetByUserAndTopicIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, topicIDs []uuid.UUID) ([]*types.UserTopicProgress, error)
	GetByTopicIDs(ctx context.Context, tx *gorm.DB, topicIDs []uuid.UUID) ([]*types.UserTopicProgress, error)
	Update(ctx context.Context, tx *gorm.DB, progress *types.UserTopicProgress) error
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return &progressRepo{db: db, log: baseLog.With("repo", "ProgressRepo")}
}

func (r *progressRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *progressRepo) lockedQuery(ctx context.Context, tx *gorm.DB) *gorm.DB {
	q := r.conn(tx).WithContext(ctx)
	// FOR UPDATE is postgres-only; sqlite has a single writer per
	// database, which gives the same serialization.
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func (r *progressRepo) GetOrCreateLocked(ctx context.Context, tx *gorm.DB, userID, topicID uuid.UUID) (*types.UserTopicProgress, bool, error) {
	var p types.UserTopicProgress
	err := r.lockedQuery(ctx, tx).
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		First(&p).Error
	if err == nil {
		return &p, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	now := time.Now().UTC()
	p = types.UserTopicProgress{
		ID:        uuid.New(),
		UserID:    userID,
		TopicID:   topicID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	createErr := r.conn(tx).WithContext(ctx).Create(&p).Error
	if createErr == nil {
		return &p, true, nil
	}
	if !errors.Is(createErr, gorm.ErrDuplicatedKey) {
		return nil, false, createErr
	}

	// Lost the insert race to a concurrent first submission; the row
	// exists now, take the lock on it.
	var existing types.UserTopicProgress
	if err := r.lockedQuery(ctx, tx).
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		First(&existing).Error; err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

func (r *progressRepo) Get(ctx context.Context, tx *gorm.DB, userID, topicID uuid.UUID) (*types.UserTopicProgress, error) {
	var p types.UserTopicProgress
	if err := r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *progressRepo) GetByUserAndTopicIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, topicIDs []uuid.UUID) ([]*types.UserTopicProgress, error) {
	var results []*types.UserTopicProgress
	if len(topicIDs) == 0 {
		return results, nil
	}
	if err := r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND topic_id IN ?", userID, topicIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *progressRepo) GetByTopicIDs(ctx context.Context, tx *gorm.DB, topicIDs []uuid.UUID) ([]*types.UserTopicProgress, error) {
	var results []*types.UserTopicProgress
	if len(topicIDs) == 0 {
		return results, nil
	}
	if err := r.conn(tx).WithContext(ctx).
		Where("topic_id IN ?", topicIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *progressRepo) Update(ctx context.Context, tx *gorm.DB, progress *types.UserTopicProgress) error {
	progress.UpdatedAt = time.Now().UTC()
	return r.conn(tx).WithContext(ctx).Save(progress).Error
}
