package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/inkwell-edu/inkwell-backend/internal/data/repos"
	types "github.com/inkwell-edu/inkwell-backend/internal/domain"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/apierr"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/logger"
)

// SubmitResult is what the submit endpoint returns to the student.
type SubmitResult struct {
	AttemptID           uuid.UUID `json:"attempt_id"`
	AttemptNumber       int       `json:"attempt_number"`
	Score               int       `json:"score"`
	IsCorrect           bool      `json:"is_correct"`
	Feedback            string    `json:"feedback"`
	UpdatedBackground   string    `json:"updated_background,omitempty"`
	UpdatedInstructions string    `json:"updated_instructions,omitempty"`
	Completed           bool      `json:"completed"`
}

// TopicContent is the image/text pair a student should currently see
// for a topic. After an incorrect attempt the corrected pair replaces
// the original.
type TopicContent struct {
	BackgroundImagePath string `json:"background_image"`
	InstructionalText   string `json:"instructional_text"`
}

// SubmissionService runs the attempt lifecycle: record the attempt
// durably, evaluate it, and attach feedback. The attempt row and
// progress counters commit before any AI call is made, so a failed
// or hung evaluation still consumes an attempt slot and remains
// visible as pending/failed durable state.
type SubmissionService interface {
	SubmitDrawing(ctx context.Context, userID, topicID uuid.UUID, canvasData string, timeSpent int) (*SubmitResult, error)
	ResolveTopicContent(ctx context.Context, userID uuid.UUID, topic *types.Topic) (TopicContent, error)
	StateFor(progress *types.UserTopicProgress, latest *types.Attempt) types.ProgressState
}

type submissionService struct {
	db           *gorm.DB
	log          *logger.Logger
	groupRepo    repos.GroupRepo
	topicRepo    repos.TopicRepo
	progressRepo repos.ProgressRepo
	attemptRepo  repos.AttemptRepo
	evaluator    EvaluationService
	feedback     FeedbackService
}

func NewSubmissionService(
	db *gorm.DB,
	log *logger.Logger,
	groupRepo repos.GroupRepo,
	topicRepo repos.TopicRepo,
	progressRepo repos.ProgressRepo,
	attemptRepo repos.AttemptRepo,
	evaluator EvaluationService,
	feedback FeedbackService,
) SubmissionService {
	return &submissionService{
		db:           db,
		log:          log.With("service", "SubmissionService"),
		groupRepo:    groupRepo,
		topicRepo:    topicRepo,
		progressRepo: progressRepo,
		attemptRepo:  attemptRepo,
		evaluator:    evaluator,
		feedback:     feedback,
	}
}

func (s *submissionService) SubmitDrawing(ctx context.Context, userID, topicID uuid.UUID, canvasData string, timeSpent int) (*SubmitResult, error) {
	topic, err := s.topicRepo.GetByID(ctx, nil, topicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(errors.New("topic not found"))
		}
		return nil, err
	}

	member, err := s.groupRepo.IsMember(ctx, nil, topic.GroupID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apierr.AccessDenied(errors.New("not a member of this topic's group"))
	}

	if canvasData == "" {
		return nil, apierr.InvalidInput(errors.New("canvas_data is required"))
	}
	if timeSpent < 0 {
		return nil, apierr.InvalidInput(errors.New("time_spent must be non-negative"))
	}

	now := time.Now().UTC()
	var (
		attempt  *types.Attempt
		progress *types.UserTopicProgress
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		progress, _, txErr = s.progressRepo.GetOrCreateLocked(ctx, tx, userID, topicID)
		if txErr != nil {
			return txErr
		}
		if progress.FirstAttemptAt == nil {
			progress.FirstAttemptAt = &now
		}

		attempt = &types.Attempt{
			ID:            uuid.New(),
			UserID:        userID,
			TopicID:       topicID,
			AttemptNumber: progress.TotalAttempts + 1,
			CanvasData:    canvasData,
			TimeSpent:     timeSpent,
			StartedAt:     now.Add(-time.Duration(timeSpent) * time.Second),
			SubmittedAt:   now,
		}
		if _, txErr = s.attemptRepo.Create(ctx, tx, []*types.Attempt{attempt}); txErr != nil {
			return txErr
		}

		progress.TotalAttempts++
		progress.TotalTimeSpent += timeSpent
		return s.progressRepo.Update(ctx, tx, progress)
	})
	if err != nil {
		return nil, err
	}

	// The attempt row is committed from here on. Evaluation failure
	// is recorded onto it, never rolled back.
	verdict, err := s.evaluator.Evaluate(ctx, topic, attempt)
	if err != nil {
		s.log.Error("Evaluation failed", "attempt_id", attempt.ID, "error", err)
		attempt.EvaluationError = err.Error()
		if saveErr := s.attemptRepo.Update(ctx, nil, attempt); saveErr != nil {
			s.log.Error("Failed to record evaluation error", "attempt_id", attempt.ID, "error", saveErr)
		}
		return nil, apierr.EvaluationFailed(errors.New("evaluation failed, please try again"))
	}

	score := verdict.Score
	attempt.Score = &score
	attempt.IsCorrect = verdict.IsCorrect
	attempt.Feedback = verdict.Feedback
	attempt.EvaluationCompleted = true
	if raw, marshalErr := json.Marshal(verdict); marshalErr == nil {
		attempt.VerdictRaw = datatypes.JSON(raw)
	}
	if err := s.attemptRepo.Update(ctx, nil, attempt); err != nil {
		return nil, err
	}

	if verdict.IsCorrect {
		if !progress.Completed {
			progress.Completed = true
			progress.FinalScore = &score
			completedAt := time.Now().UTC()
			progress.CompletedAt = &completedAt
			if err := s.progressRepo.Update(ctx, nil, progress); err != nil {
				return nil, err
			}
		}
	} else {
		corrected, fbErr := s.feedback.GenerateCorrectedContent(ctx, topic, attempt, verdict)
		attempt.UpdatedBackgroundImagePath = corrected.ImagePath
		attempt.UpdatedInstructionalText = corrected.Text
		if fbErr != nil {
			attempt.EvaluationError = fbErr.Error()
		}
		if err := s.attemptRepo.Update(ctx, nil, attempt); err != nil {
			return nil, err
		}
	}

	return &SubmitResult{
		AttemptID:           attempt.ID,
		AttemptNumber:       attempt.AttemptNumber,
		Score:               score,
		IsCorrect:           verdict.IsCorrect,
		Feedback:            verdict.Feedback,
		UpdatedBackground:   attempt.UpdatedBackgroundImagePath,
		UpdatedInstructions: attempt.UpdatedInstructionalText,
		Completed:           progress.Completed,
	}, nil
}

// ResolveTopicContent returns what the student should see now: the
// corrected pair from the latest incorrect attempt when present,
// otherwise the topic's original content.
func (s *submissionService) ResolveTopicContent(ctx context.Context, userID uuid.UUID, topic *types.Topic) (TopicContent, error) {
	content := TopicContent{
		BackgroundImagePath: topic.BackgroundImagePath,
		InstructionalText:   topic.InstructionalText,
	}

	latest, err := s.attemptRepo.Latest(ctx, nil, userID, topic.ID)
	if err != nil {
		return content, err
	}
	if latest == nil || latest.IsCorrect || !latest.EvaluationCompleted {
		return content, nil
	}
	if latest.UpdatedBackgroundImagePath != "" {
		content.BackgroundImagePath = latest.UpdatedBackgroundImagePath
	}
	if latest.UpdatedInstructionalText != "" {
		content.InstructionalText = latest.UpdatedInstructionalText
	}
	return content, nil
}

func (s *submissionService) StateFor(progress *types.UserTopicProgress, latest *types.Attempt) types.ProgressState {
	switch {
	case progress == nil:
		return types.StateNotStarted
	case progress.Completed:
		return types.StateCompleted
	case latest != nil && latest.EvaluationCompleted && !latest.IsCorrect:
		return types.StateAwaitingRetry
	default:
		return types.StateInProgress
	}
}
