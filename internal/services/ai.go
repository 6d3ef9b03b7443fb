package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkwell-edu/inkwell-backend/internal/data/repos"
	types "github.com/inkwell-edu/inkwell-backend/internal/domain"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/logger"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/openai"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/render"
)

// LogRefs links an audit row to the topic or attempt that caused the
// call.
type LogRefs struct {
	TopicID   *uuid.UUID
	AttemptID *uuid.UUID
}

// AIService is the audited gateway to the AI capability. Every call,
// success or failure, opens an audit row before the upstream request
// and finishes it exactly once afterward.
type AIService interface {
	GenerateImage(ctx context.Context, prompt string, refs LogRefs) ([]byte, error)
	GenerateText(ctx context.Context, prompt string, refs LogRefs) (string, error)
	// EvaluationText is GenerateText under the evaluator persona,
	// audited as an evaluation call.
	EvaluationText(ctx context.Context, prompt string, refs LogRefs) (string, error)
}

const (
	instructionSystemPrompt = "You are an educational assistant. Generate clear, friendly, step-by-step instructional text for students."
	evaluationSystemPrompt  = "You are an educational evaluator. Analyze student drawings and provide constructive feedback in JSON format."
)

type aiService struct {
	db          *gorm.DB
	log         *logger.Logger
	client      openai.Client
	logRepo     repos.AIGenerationLogRepo
	placeholder *render.PlaceholderRenderer
}

func NewAIService(
	db *gorm.DB,
	log *logger.Logger,
	client openai.Client,
	logRepo repos.AIGenerationLogRepo,
	placeholder *render.PlaceholderRenderer,
) AIService {
	return &aiService{
		db:          db,
		log:         log.With("service", "AIService"),
		client:      client,
		logRepo:     logRepo,
		placeholder: placeholder,
	}
}

// openLog writes the audit row before the upstream call. Audit writes
// never ride the caller's transaction: the row must survive a rollback.
func (s *aiService) openLog(ctx context.Context, genType types.GenerationType, prompt string, refs LogRefs) *types.AIGenerationLog {
	entry := &types.AIGenerationLog{
		ID:             uuid.New(),
		GenerationType: genType,
		Prompt:         prompt,
		TopicID:        refs.TopicID,
		AttemptID:      refs.AttemptID,
	}
	if _, err := s.logRepo.Create(ctx, nil, entry); err != nil {
		s.log.Error("Failed to open AI audit log entry", "type", genType, "error", err)
		return nil
	}
	return entry
}

func (s *aiService) closeLog(ctx context.Context, entry *types.AIGenerationLog, success bool, response string, callErr error) {
	if entry == nil {
		return
	}
	errMsg := ""
	if callErr != nil {
		errMsg = callErr.Error()
	}
	if err := s.logRepo.Finish(ctx, nil, entry.ID, success, response, errMsg); err != nil {
		s.log.Error("Failed to finish AI audit log entry", "id", entry.ID, "error", err)
	}
}

func (s *aiService) GenerateImage(ctx context.Context, prompt string, refs LogRefs) ([]byte, error) {
	entry := s.openLog(ctx, types.GenerationTypeImage, prompt, refs)

	if !s.client.ImageModelConfigured() && s.placeholder != nil {
		raw, err := s.placeholder.Render(prompt)
		if err != nil {
			s.closeLog(ctx, entry, false, "", err)
			return nil, fmt.Errorf("placeholder render: %w", err)
		}
		s.closeLog(ctx, entry, true, "local placeholder render", nil)
		return raw, nil
	}

	img, err := s.client.GenerateImage(ctx, prompt)
	if err != nil {
		s.closeLog(ctx, entry, false, "", err)
		return nil, err
	}
	s.closeLog(ctx, entry, true, fmt.Sprintf("%d bytes (%s)", len(img.Bytes), img.MimeType), nil)
	return img.Bytes, nil
}

func (s *aiService) GenerateText(ctx context.Context, prompt string, refs LogRefs) (string, error) {
	entry := s.openLog(ctx, types.GenerationTypeText, prompt, refs)

	text, err := s.client.GenerateText(ctx, instructionSystemPrompt, prompt)
	if err != nil {
		s.closeLog(ctx, entry, false, "", err)
		return "", err
	}
	s.closeLog(ctx, entry, true, text, nil)
	return text, nil
}

func (s *aiService) EvaluationText(ctx context.Context, prompt string, refs LogRefs) (string, error) {
	entry := s.openLog(ctx, types.GenerationTypeEvaluation, prompt, refs)

	text, err := s.client.GenerateText(ctx, evaluationSystemPrompt, prompt)
	if err != nil {
		s.closeLog(ctx, entry, false, "", err)
		return "", err
	}
	s.closeLog(ctx, entry, true, text, nil)
	return text, nil
}
