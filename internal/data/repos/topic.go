package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/inkwell-edu/inkwell-backend/internal/domain"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/logger"
)

type TopicRepo interface {
	Create(ctx context.Context, tx *gorm.DB, topics []*types.Topic) ([]*types.Topic, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Topic, error)
	GetByGroupIDs(ctx context.Context, tx *gorm.DB, groupIDs []uuid.UUID, generatedOnly bool) ([]*types.Topic, error)
	Update(ctx context.Context, tx *gorm.DB, topic *types.Topic) error
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type topicRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
	return &topicRepo{db: db, log: baseLog.With("repo", "TopicRepo")}
}

func (r *topicRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *topicRepo) Create(ctx context.Context, tx *gorm.DB, topics []*types.Topic) ([]*types.Topic, error) {
	if len(topics) == 0 {
		return []*types.Topic{}, nil
	}
	if err := r.conn(tx).WithContext(ctx).Create(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}

func (r *topicRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Topic, error) {
	var t types.Topic
	if err := r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *topicRepo) GetByGroupIDs(ctx context.Context, tx *gorm.DB, groupIDs []uuid.UUID, generatedOnly bool) ([]*types.Topic, error) {
	var results []*types.Topic
	if len(groupIDs) == 0 {
		return results, nil
	}
	q := r.conn(tx).WithContext(ctx).
		Where("group_id IN ?", groupIDs)
	if generatedOnly {
		q = q.Where("content_generated = ?", true)
	}
	if err := q.Order("title").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *topicRepo) Update(ctx context.Context, tx *gorm.DB, topic *types.Topic) error {
	return r.conn(tx).WithContext(ctx).Save(topic).Error
}

func (r *topicRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.Topic{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
