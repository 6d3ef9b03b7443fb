package services

import (
	"context"
	"fmt"

	types "github.com/inkwell-edu/inkwell-backend/internal/domain"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/logger"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/media"
)

// CorrectedContent is the remedial image and text produced for an
// incorrect attempt. Either field may be empty when generation of
// that piece failed.
type CorrectedContent struct {
	ImagePath string
	Text      string
}

// FeedbackService generates corrected guidance for a failed attempt.
// It is best effort: partial or total failure is reported back but
// never blocks the attempt from resolving.
type FeedbackService interface {
	GenerateCorrectedContent(ctx context.Context, topic *types.Topic, attempt *types.Attempt, verdict Verdict) (CorrectedContent, error)
}

type feedbackService struct {
	log        *logger.Logger
	ai         AIService
	mediaStore media.Store
}

func NewFeedbackService(log *logger.Logger, ai AIService, mediaStore media.Store) FeedbackService {
	return &feedbackService{
		log:        log.With("service", "FeedbackService"),
		ai:         ai,
		mediaStore: mediaStore,
	}
}

func correctedImagePrompt(topic *types.Topic, verdict Verdict) string {
	return fmt.Sprintf(
		"Educational illustration: %s. Highlight the elements the student drew correctly and clearly show these corrections: %s. Create a clear, simple diagram suitable for student interaction.",
		topic.Prompt, verdict.CorrectionsNeeded,
	)
}

func correctedTextPrompt(topic *types.Topic, verdict Verdict) string {
	return fmt.Sprintf(`A student attempted this drawing topic and needs guidance for a retry.

Topic: %s
Original instructions: %s
Evaluation feedback: %s
Corrections needed: %s

Write revised step-by-step instructions that:
1. Acknowledge what the student got right
2. Explain clearly how to fix each issue
3. Encourage the student to try again`,
		topic.Prompt, topic.InstructionalText, verdict.Feedback, verdict.CorrectionsNeeded)
}

func (s *feedbackService) GenerateCorrectedContent(ctx context.Context, topic *types.Topic, attempt *types.Attempt, verdict Verdict) (CorrectedContent, error) {
	refs := LogRefs{TopicID: &topic.ID, AttemptID: &attempt.ID}
	var out CorrectedContent

	imageData, imgErr := s.ai.GenerateImage(ctx, correctedImagePrompt(topic, verdict), refs)
	if imgErr == nil {
		path, saveErr := s.mediaStore.Save(
			media.CategoryAttemptCorrections,
			fmt.Sprintf("attempt_%s_corrected.png", attempt.ID),
			imageData,
		)
		if saveErr != nil {
			imgErr = saveErr
		} else {
			out.ImagePath = path
		}
	}
	if imgErr != nil {
		s.log.Warn("Corrected image generation failed", "attempt_id", attempt.ID, "error", imgErr)
	}

	text, textErr := s.ai.GenerateText(ctx, correctedTextPrompt(topic, verdict), refs)
	if textErr == nil {
		out.Text = text
	} else {
		s.log.Warn("Corrected text generation failed", "attempt_id", attempt.ID, "error", textErr)
	}

	if imgErr != nil && textErr != nil {
		return out, fmt.Errorf("corrected content generation failed: image: %v; text: %v", imgErr, textErr)
	}
	return out, nil
}
