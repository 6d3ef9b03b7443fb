package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/inkwell-edu/inkwell-backend/internal/domain"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/logger"
)

type AIGenerationLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.AIGenerationLog) (*types.AIGenerationLog, error)
	// Finish records the outcome of the call the entry was opened for.
	// This is the single permitted update to an audit row.
	Finish(ctx context.Context, tx *gorm.DB, id uuid.UUID, success bool, response, errorMessage string) error
	List(ctx context.Context, tx *gorm.DB, generationType types.GenerationType, offset, limit int) ([]*types.AIGenerationLog, int64, error)
	GetByAttemptID(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) ([]*types.AIGenerationLog, error)
}

type aiGenerationLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAIGenerationLogRepo(db *gorm.DB, baseLog *logger.Logger) AIGenerationLogRepo {
	return &aiGenerationLogRepo{db: db, log: baseLog.With("repo", "AIGenerationLogRepo")}
}

func (r *aiGenerationLogRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *aiGenerationLogRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.AIGenerationLog) (*types.AIGenerationLog, error) {
	if err := r.conn(tx).WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *aiGenerationLogRepo) Finish(ctx context.Context, tx *gorm.DB, id uuid.UUID, success bool, response, errorMessage string) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.AIGenerationLog{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"success":       success,
			"response":      response,
			"error_message": errorMessage,
		}).Error
}

func (r *aiGenerationLogRepo) List(ctx context.Context, tx *gorm.DB, generationType types.GenerationType, offset, limit int) ([]*types.AIGenerationLog, int64, error) {
	base := r.conn(tx).WithContext(ctx).Model(&types.AIGenerationLog{})
	if generationType != "" {
		base = base.Where("generation_type = ?", generationType)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := base.Order("created_at DESC")
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var results []*types.AIGenerationLog
	if err := q.Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *aiGenerationLogRepo) GetByAttemptID(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) ([]*types.AIGenerationLog, error) {
	var results []*types.AIGenerationLog
	if err := r.conn(tx).WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("created_at").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
