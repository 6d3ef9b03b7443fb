package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/inkwell-edu/inkwell-backend/internal/data/repos"
	types "github.com/inkwell-edu/inkwell-backend/internal/domain"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/logger"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/media"
)

// ContentGenService produces the background image and instructional
// text for a topic. Success flips ContentGenerated; failure records
// GenerationError and leaves the content fields empty. Generation is
// never retried automatically — an admin re-runs it.
type ContentGenService interface {
	GenerateTopicContent(ctx context.Context, topic *types.Topic) error
}

type contentGenService struct {
	db         *gorm.DB
	log        *logger.Logger
	ai         AIService
	mediaStore media.Store
	topicRepo  repos.TopicRepo
}

func NewContentGenService(
	db *gorm.DB,
	log *logger.Logger,
	ai AIService,
	mediaStore media.Store,
	topicRepo repos.TopicRepo,
) ContentGenService {
	return &contentGenService{
		db:         db,
		log:        log.With("service", "ContentGenService"),
		ai:         ai,
		mediaStore: mediaStore,
		topicRepo:  topicRepo,
	}
}

func imagePrompt(topicPrompt string) string {
	return fmt.Sprintf(
		"Educational illustration: %s. Create a clear, simple diagram suitable for student interaction.",
		topicPrompt,
	)
}

func textPrompt(topicPrompt string) string {
	return fmt.Sprintf(`Create clear, step-by-step instructional text for students working on this topic:
%s

The instructions should:
1. Explain what the student needs to draw
2. Provide clear guidance on colors, directions, and elements
3. Be encouraging and educational
4. Be suitable for interactive canvas drawing`, topicPrompt)
}

func (s *contentGenService) GenerateTopicContent(ctx context.Context, topic *types.Topic) error {
	refs := LogRefs{TopicID: &topic.ID}

	var (
		imageData []byte
		instrText string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := s.ai.GenerateImage(gctx, imagePrompt(topic.Prompt), refs)
		if err != nil {
			return fmt.Errorf("image generation: %w", err)
		}
		imageData = raw
		return nil
	})
	g.Go(func() error {
		text, err := s.ai.GenerateText(gctx, textPrompt(topic.Prompt), refs)
		if err != nil {
			return fmt.Errorf("text generation: %w", err)
		}
		instrText = text
		return nil
	})

	if err := g.Wait(); err != nil {
		s.log.Error("Topic content generation failed", "topic_id", topic.ID, "error", err)
		topic.GenerationError = err.Error()
		topic.ContentGenerated = false
		if saveErr := s.topicRepo.Update(ctx, nil, topic); saveErr != nil {
			return fmt.Errorf("record generation error: %w", saveErr)
		}
		return err
	}

	imagePath, err := s.mediaStore.Save(
		media.CategoryTopicBackgrounds,
		fmt.Sprintf("topic_%s_background.png", topic.ID),
		imageData,
	)
	if err != nil {
		topic.GenerationError = err.Error()
		if saveErr := s.topicRepo.Update(ctx, nil, topic); saveErr != nil {
			return fmt.Errorf("record generation error: %w", saveErr)
		}
		return err
	}

	topic.BackgroundImagePath = imagePath
	topic.InstructionalText = instrText
	topic.ContentGenerated = true
	topic.GenerationError = ""
	if err := s.topicRepo.Update(ctx, nil, topic); err != nil {
		return fmt.Errorf("persist generated content: %w", err)
	}

	s.log.Info("Topic content generated", "topic_id", topic.ID)
	return nil
}
