package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkwell-edu/inkwell-backend/internal/data/repos"
	types "github.com/inkwell-edu/inkwell-backend/internal/domain"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/logger"
)

// AILogRow is the operator-facing projection of an audit entry.
// Prompt and response are truncated for list display.
type AILogRow struct {
	ID             uuid.UUID            `json:"id"`
	GenerationType types.GenerationType `json:"generation_type"`
	Prompt         string               `json:"prompt"`
	Response       string               `json:"response"`
	Success        bool                 `json:"success"`
	ErrorMessage   string               `json:"error_message,omitempty"`
	TopicID        *uuid.UUID           `json:"topic_id,omitempty"`
	AttemptID      *uuid.UUID           `json:"attempt_id,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

const logExcerptLen = 500

type AuditService interface {
	ListAILogs(ctx context.Context, generationType types.GenerationType, offset, limit int) ([]AILogRow, int64, error)
}

type auditService struct {
	db      *gorm.DB
	log     *logger.Logger
	logRepo repos.AIGenerationLogRepo
}

func NewAuditService(db *gorm.DB, log *logger.Logger, logRepo repos.AIGenerationLogRepo) AuditService {
	return &auditService{
		db:      db,
		log:     log.With("service", "AuditService"),
		logRepo: logRepo,
	}
}

func excerpt(s string) string {
	if len(s) > logExcerptLen {
		return s[:logExcerptLen] + "..."
	}
	return s
}

func (s *auditService) ListAILogs(ctx context.Context, generationType types.GenerationType, offset, limit int) ([]AILogRow, int64, error) {
	entries, total, err := s.logRepo.List(ctx, nil, generationType, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	rows := make([]AILogRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, AILogRow{
			ID:             e.ID,
			GenerationType: e.GenerationType,
			Prompt:         excerpt(e.Prompt),
			Response:       excerpt(e.Response),
			Success:        e.Success,
			ErrorMessage:   e.ErrorMessage,
			TopicID:        e.TopicID,
			AttemptID:      e.AttemptID,
			CreatedAt:      e.CreatedAt,
		})
	}
	return rows, total, nil
}
