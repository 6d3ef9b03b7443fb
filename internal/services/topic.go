package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkwell-edu/inkwell-backend/internal/data/repos"
	types "github.com/inkwell-edu/inkwell-backend/internal/domain"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/apierr"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/logger"
)

// TopicSummary is the list/display projection of a topic. Content
// fields are omitted; the student view resolves those per user.
type TopicSummary struct {
	ID               uuid.UUID `json:"id"`
	GroupID          uuid.UUID `json:"group_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Prompt           string    `json:"prompt"`
	ContentGenerated bool      `json:"content_generated"`
	GenerationError  string    `json:"generation_error,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// AttemptSummary is the student-visible projection of an attempt.
type AttemptSummary struct {
	ID                  uuid.UUID `json:"id"`
	AttemptNumber       int       `json:"attempt_number"`
	Score               *int      `json:"score"`
	IsCorrect           bool      `json:"is_correct"`
	Feedback            string    `json:"feedback"`
	TimeSpent           int       `json:"time_spent"`
	SubmittedAt         time.Time `json:"submitted_at"`
	EvaluationCompleted bool      `json:"evaluation_completed"`
	EvaluationError     string    `json:"evaluation_error,omitempty"`
}

// TopicView is the full student topic page: resolved content plus the
// caller's progress and attempt history.
type TopicView struct {
	Topic    TopicSummary        `json:"topic"`
	Content  TopicContent        `json:"content"`
	State    types.ProgressState `json:"state"`
	Progress *ProgressSummary    `json:"progress"`
	Attempts []AttemptSummary    `json:"attempts"`
}

// ProgressSummary is the student-visible projection of progress.
type ProgressSummary struct {
	Completed      bool       `json:"completed"`
	FinalScore     *int       `json:"final_score"`
	TotalAttempts  int        `json:"total_attempts"`
	TotalTimeSpent int        `json:"total_time_spent"`
	FirstAttemptAt *time.Time `json:"first_attempt_at"`
	CompletedAt    *time.Time `json:"completed_at"`
}

// CreateTopicInput is the admin payload for a new topic.
type CreateTopicInput struct {
	GroupID     uuid.UUID `json:"group_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Prompt      string    `json:"prompt"`
}

type TopicService interface {
	Create(ctx context.Context, in CreateTopicInput, createdBy uuid.UUID) (*types.Topic, error)
	RetryGeneration(ctx context.Context, topicID uuid.UUID) (*types.Topic, error)
	View(ctx context.Context, userID, topicID uuid.UUID) (*TopicView, error)
}

type topicService struct {
	db          *gorm.DB
	log         *logger.Logger
	topicRepo   repos.TopicRepo
	groupRepo   repos.GroupRepo
	attemptRepo repos.AttemptRepo
	progress    repos.ProgressRepo
	contentGen  ContentGenService
	submission  SubmissionService
}

func NewTopicService(
	db *gorm.DB,
	log *logger.Logger,
	topicRepo repos.TopicRepo,
	groupRepo repos.GroupRepo,
	attemptRepo repos.AttemptRepo,
	progress repos.ProgressRepo,
	contentGen ContentGenService,
	submission SubmissionService,
) TopicService {
	return &topicService{
		db:          db,
		log:         log.With("service", "TopicService"),
		topicRepo:   topicRepo,
		groupRepo:   groupRepo,
		attemptRepo: attemptRepo,
		progress:    progress,
		contentGen:  contentGen,
		submission:  submission,
	}
}

func summarizeTopic(t *types.Topic) TopicSummary {
	return TopicSummary{
		ID:               t.ID,
		GroupID:          t.GroupID,
		Title:            t.Title,
		Description:      t.Description,
		Prompt:           t.Prompt,
		ContentGenerated: t.ContentGenerated,
		GenerationError:  t.GenerationError,
		CreatedAt:        t.CreatedAt,
	}
}

func (s *topicService) Create(ctx context.Context, in CreateTopicInput, createdBy uuid.UUID) (*types.Topic, error) {
	if in.Title == "" || in.Prompt == "" {
		return nil, apierr.InvalidInput(errors.New("title and prompt are required"))
	}
	if _, err := s.groupRepo.GetByID(ctx, nil, in.GroupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(errors.New("group not found"))
		}
		return nil, err
	}

	topic := &types.Topic{
		ID:          uuid.New(),
		GroupID:     in.GroupID,
		Title:       in.Title,
		Description: in.Description,
		Prompt:      in.Prompt,
		CreatedByID: createdBy,
	}
	if _, err := s.topicRepo.Create(ctx, nil, []*types.Topic{topic}); err != nil {
		return nil, err
	}

	// Generation happens in-request, like the admin save action it
	// replaces. A failure leaves the topic with generation_error set
	// and the retry endpoint available.
	if err := s.contentGen.GenerateTopicContent(ctx, topic); err != nil {
		s.log.Warn("Initial content generation failed", "topic_id", topic.ID, "error", err)
	}
	return topic, nil
}

func (s *topicService) RetryGeneration(ctx context.Context, topicID uuid.UUID) (*types.Topic, error) {
	topic, err := s.topicRepo.GetByID(ctx, nil, topicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(errors.New("topic not found"))
		}
		return nil, err
	}
	if topic.ContentGenerated {
		return nil, apierr.InvalidInput(errors.New("topic content already generated"))
	}
	if err := s.contentGen.GenerateTopicContent(ctx, topic); err != nil {
		return nil, apierr.GenerationFailed(err)
	}
	return topic, nil
}

func (s *topicService) View(ctx context.Context, userID, topicID uuid.UUID) (*TopicView, error) {
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

	content, err := s.submission.ResolveTopicContent(ctx, userID, topic)
	if err != nil {
		return nil, err
	}

	var progressSummary *ProgressSummary
	progress, err := s.progress.Get(ctx, nil, userID, topicID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if progress != nil {
		progressSummary = &ProgressSummary{
			Completed:      progress.Completed,
			FinalScore:     progress.FinalScore,
			TotalAttempts:  progress.TotalAttempts,
			TotalTimeSpent: progress.TotalTimeSpent,
			FirstAttemptAt: progress.FirstAttemptAt,
			CompletedAt:    progress.CompletedAt,
		}
	}

	attempts, err := s.attemptRepo.ListForUserTopic(ctx, nil, userID, topicID)
	if err != nil {
		return nil, err
	}
	attemptSummaries := make([]AttemptSummary, 0, len(attempts))
	for _, a := range attempts {
		attemptSummaries = append(attemptSummaries, AttemptSummary{
			ID:                  a.ID,
			AttemptNumber:       a.AttemptNumber,
			Score:               a.Score,
			IsCorrect:           a.IsCorrect,
			Feedback:            a.Feedback,
			TimeSpent:           a.TimeSpent,
			SubmittedAt:         a.SubmittedAt,
			EvaluationCompleted: a.EvaluationCompleted,
			EvaluationError:     a.EvaluationError,
		})
	}

	var latest *types.Attempt
	if len(attempts) > 0 {
		latest = attempts[len(attempts)-1]
	}

	return &TopicView{
		Topic:    summarizeTopic(topic),
		Content:  content,
		State:    s.submission.StateFor(progress, latest),
		Progress: progressSummary,
		Attempts: attemptSummaries,
	}, nil
}
