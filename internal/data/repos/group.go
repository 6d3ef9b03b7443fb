package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/inkwell-edu/inkwell-backend/internal/domain"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/logger"
)

type GroupRepo interface {
	Create(ctx context.Context, tx *gorm.DB, groups []*types.Group) ([]*types.Group, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Group, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Group, error)
	List(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*types.Group, int64, error)
	GetForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Group, error)
	AddMembers(ctx context.Context, tx *gorm.DB, groupID uuid.UUID, userIDs []uuid.UUID) error
	IsMember(ctx context.Context, tx *gorm.DB, groupID, userID uuid.UUID) (bool, error)
	GetMembers(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) ([]*types.User, error)
}

type groupRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGroupRepo(db *gorm.DB, baseLog *logger.Logger) GroupRepo {
	return &groupRepo{db: db, log: baseLog.With("repo", "GroupRepo")}
}

func (r *groupRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *groupRepo) Create(ctx context.Context, tx *gorm.DB, groups []*types.Group) ([]*types.Group, error) {
	if len(groups) == 0 {
		return []*types.Group{}, nil
	}
	if err := r.conn(tx).WithContext(ctx).Create(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Group, error) {
	var g types.Group
	if err := r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *groupRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Group, error) {
	var g types.Group
	if err := r.conn(tx).WithContext(ctx).
		Where("name = ?", name).
		First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *groupRepo) List(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*types.Group, int64, error) {
	var total int64
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.Group{}).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.conn(tx).WithContext(ctx).Order("name")
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var results []*types.Group
	if err := q.Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *groupRepo) GetForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Group, error) {
	var results []*types.Group
	if err := r.conn(tx).WithContext(ctx).
		Joins("JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.user_id = ?", userID).
		Order("groups.name").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *groupRepo) AddMembers(ctx context.Context, tx *gorm.DB, groupID uuid.UUID, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]*types.GroupMember, 0, len(userIDs))
	for _, uid := range userIDs {
		rows = append(rows, &types.GroupMember{
			ID:        uuid.New(),
			GroupID:   groupID,
			UserID:    uid,
			CreatedAt: now,
		})
	}
	return r.conn(tx).WithContext(ctx).Create(&rows).Error
}

func (r *groupRepo) IsMember(ctx context.Context, tx *gorm.DB, groupID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *groupRepo) GetMembers(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) ([]*types.User, error) {
	var results []*types.User
	if err := r.conn(tx).WithContext(ctx).
		Joins("JOIN group_members ON group_members.user_id = users.id").
		Where("group_members.group_id = ?", groupID).
		Order("users.email").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
