package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	types "github.com/inkwell-edu/inkwell-backend/internal/domain"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/logger"
)

const (
	fallbackScore       = 10
	fallbackCorrections = "Please review your drawing and try again."
	canvasExcerptLen    = 100
)

// Verdict is the structured result of evaluating a drawing attempt.
// Raw keeps the model's full response text; it is serialized alongside
// the parsed fields so operators can inspect the original payload.
type Verdict struct {
	Score             int    `json:"score"`
	IsCorrect         bool   `json:"is_correct"`
	Feedback          string `json:"feedback"`
	CorrectionsNeeded string `json:"corrections_needed"`
	Raw               string `json:"raw,omitempty"`
}

// EvaluationService scores a student's canvas submission against the
// topic's prompt and instructions. A response that cannot be parsed
// as a verdict degrades to a fixed incorrect verdict carrying the
// raw text as feedback, so the attempt still resolves.
type EvaluationService interface {
	Evaluate(ctx context.Context, topic *types.Topic, attempt *types.Attempt) (Verdict, error)
}

type evaluationService struct {
	log *logger.Logger
	ai  AIService
}

func NewEvaluationService(log *logger.Logger, ai AIService) EvaluationService {
	return &evaluationService{
		log: log.With("service", "EvaluationService"),
		ai:  ai,
	}
}

func evaluationPrompt(topic *types.Topic, attempt *types.Attempt) string {
	excerpt := attempt.CanvasData
	if len(excerpt) > canvasExcerptLen {
		excerpt = excerpt[:canvasExcerptLen]
	}
	return fmt.Sprintf(`Evaluate this student drawing submission.

Topic: %s
Instructions given to the student: %s
Background description: Background image for topic: %s
Student canvas data (truncated): %s...

Score the drawing from 0 to 20 based on how well it follows the instructions.
Respond ONLY with a JSON object in this exact format:
{"score": <0-20>, "is_correct": <true if score >= 15>, "feedback": "<constructive feedback>", "corrections_needed": "<what to fix, empty if correct>"}`,
		topic.Prompt, topic.InstructionalText, topic.Title, excerpt)
}

func (s *evaluationService) Evaluate(ctx context.Context, topic *types.Topic, attempt *types.Attempt) (Verdict, error) {
	refs := LogRefs{TopicID: &topic.ID, AttemptID: &attempt.ID}
	raw, err := s.ai.EvaluationText(ctx, evaluationPrompt(topic, attempt), refs)
	if err != nil {
		return Verdict{}, err
	}

	verdict, ok := parseVerdict(raw)
	if !ok {
		s.log.Warn("Unparseable evaluation response, using fallback verdict",
			"topic_id", topic.ID, "attempt_id", attempt.ID)
	}
	return verdict, nil
}

// parseVerdict accepts a bare JSON object, a fenced code block, or an
// object embedded in surrounding prose. Anything else yields the
// fallback verdict with ok=false.
func parseVerdict(raw string) (Verdict, bool) {
	candidate := strings.TrimSpace(raw)
	if strings.HasPrefix(candidate, "```") {
		candidate = strings.TrimPrefix(candidate, "```json")
		candidate = strings.TrimPrefix(candidate, "```")
		if idx := strings.LastIndex(candidate, "```"); idx >= 0 {
			candidate = candidate[:idx]
		}
		candidate = strings.TrimSpace(candidate)
	}

	if v, ok := decodeVerdict(candidate, raw); ok {
		return v, true
	}

	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start >= 0 && end > start {
		if v, ok := decodeVerdict(candidate[start:end+1], raw); ok {
			return v, true
		}
	}

	return Verdict{
		Score:             fallbackScore,
		IsCorrect:         false,
		Feedback:          raw,
		CorrectionsNeeded: fallbackCorrections,
		Raw:               raw,
	}, false
}

func decodeVerdict(candidate, raw string) (Verdict, bool) {
	var v Verdict
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		return Verdict{}, false
	}
	if v.Score < 0 {
		v.Score = 0
	}
	if v.Score > 20 {
		v.Score = 20
	}
	v.Raw = raw
	return v, true
}
