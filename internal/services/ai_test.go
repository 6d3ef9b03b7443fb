package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/inkwell-edu/inkwell-backend/internal/data/repos"
	"github.com/inkwell-edu/inkwell-backend/internal/data/repos/testutil"
	types "github.com/inkwell-edu/inkwell-backend/internal/domain"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/openai"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/render"
)

type stubOpenAI struct {
	text       string
	textErr    error
	image      openai.ImageGeneration
	imageErr   error
	imageModel bool

	systems []string
}

func (s *stubOpenAI) GenerateText(ctx context.Context, system, user string) (string, error) {
	s.systems = append(s.systems, system)
	return s.text, s.textErr
}

func (s *stubOpenAI) GenerateImage(ctx context.Context, prompt string) (openai.ImageGeneration, error) {
	return s.image, s.imageErr
}

func (s *stubOpenAI) ImageModelConfigured() bool { return s.imageModel }

type aiFixture struct {
	tx    *gorm.DB
	svc   AIService
	store repos.AIGenerationLogRepo
	stub  *stubOpenAI
}

func newAIFixture(t *testing.T, stub *stubOpenAI) *aiFixture {
	t.Helper()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)

	placeholder, err := render.NewPlaceholderRenderer()
	if err != nil {
		t.Fatalf("placeholder renderer: %v", err)
	}
	logRepo := repos.NewAIGenerationLogRepo(tx, log)
	return &aiFixture{
		tx:    tx,
		svc:   NewAIService(tx, log, stub, logRepo, placeholder),
		store: logRepo,
		stub:  stub,
	}
}

func (fx *aiFixture) logRows(t *testing.T, generationType types.GenerationType) []*types.AIGenerationLog {
	t.Helper()
	rows, _, err := fx.store.List(context.Background(), fx.tx, generationType, 0, 100)
	if err != nil {
		t.Fatalf("list audit rows: %v", err)
	}
	return rows
}

func TestEvaluationTextAuditsSuccess(t *testing.T) {
	ctx := context.Background()
	raw := "The drawing looks incomplete, please keep trying."
	fx := newAIFixture(t, &stubOpenAI{text: raw})

	got, err := fx.svc.EvaluationText(ctx, "evaluate this drawing", LogRefs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != raw {
		t.Fatalf("unexpected response: %q", got)
	}

	rows := fx.logRows(t, types.GenerationTypeEvaluation)
	if len(rows) != 1 {
		t.Fatalf("expected exactly one audit row, got %d", len(rows))
	}
	entry := rows[0]
	if !entry.Success {
		t.Fatalf("a returned response must audit as success even when unstructured: %+v", entry)
	}
	if entry.Response != raw {
		t.Fatalf("audit row must carry the raw response, got %q", entry.Response)
	}
	if entry.Prompt != "evaluate this drawing" || entry.ErrorMessage != "" {
		t.Fatalf("unexpected audit row: %+v", entry)
	}
	if len(fx.stub.systems) != 1 || fx.stub.systems[0] != evaluationSystemPrompt {
		t.Fatalf("evaluation must use the evaluator system prompt, got %v", fx.stub.systems)
	}
}

func TestEvaluationTextAuditsFailure(t *testing.T) {
	ctx := context.Background()
	fx := newAIFixture(t, &stubOpenAI{textErr: errors.New("upstream unreachable")})

	if _, err := fx.svc.EvaluationText(ctx, "evaluate this drawing", LogRefs{}); err == nil {
		t.Fatalf("expected error")
	}

	rows := fx.logRows(t, types.GenerationTypeEvaluation)
	if len(rows) != 1 {
		t.Fatalf("a failed call must still leave exactly one audit row, got %d", len(rows))
	}
	entry := rows[0]
	if entry.Success {
		t.Fatalf("failure must audit as success=false: %+v", entry)
	}
	if entry.ErrorMessage == "" {
		t.Fatalf("failure must record the error message")
	}
	if entry.Response != "" {
		t.Fatalf("failed call must not record a response: %+v", entry)
	}
}

func TestGenerateTextAuditsOnePerCall(t *testing.T) {
	ctx := context.Background()
	fx := newAIFixture(t, &stubOpenAI{text: "step 1: draw the sun"})

	for i := 0; i < 3; i++ {
		if _, err := fx.svc.GenerateText(ctx, "write instructions", LogRefs{}); err != nil {
			t.Fatalf("call %d: %v", i+1, err)
		}
	}

	rows := fx.logRows(t, types.GenerationTypeText)
	if len(rows) != 3 {
		t.Fatalf("expected one audit row per call, got %d for 3 calls", len(rows))
	}
	for _, entry := range rows {
		if !entry.Success || entry.Response != "step 1: draw the sun" {
			t.Fatalf("unexpected audit row: %+v", entry)
		}
	}
	if fx.stub.systems[0] != instructionSystemPrompt {
		t.Fatalf("text generation must use the instruction system prompt, got %q", fx.stub.systems[0])
	}
}

func TestGenerateImagePlaceholderPathAudits(t *testing.T) {
	ctx := context.Background()
	fx := newAIFixture(t, &stubOpenAI{imageModel: false})

	raw, err := fx.svc.GenerateImage(ctx, "draw a water cycle diagram", LogRefs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(raw) == 0 {
		t.Fatalf("placeholder render returned no bytes")
	}

	rows := fx.logRows(t, types.GenerationTypeImage)
	if len(rows) != 1 {
		t.Fatalf("expected exactly one audit row, got %d", len(rows))
	}
	if !rows[0].Success {
		t.Fatalf("placeholder render must audit as success: %+v", rows[0])
	}
}

func TestGenerateImageUpstreamAudits(t *testing.T) {
	ctx := context.Background()
	fx := newAIFixture(t, &stubOpenAI{
		imageModel: true,
		image:      openai.ImageGeneration{Bytes: []byte("png-bytes"), MimeType: "image/png"},
	})

	raw, err := fx.svc.GenerateImage(ctx, "draw a water cycle diagram", LogRefs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != "png-bytes" {
		t.Fatalf("unexpected image bytes: %q", raw)
	}

	rows := fx.logRows(t, types.GenerationTypeImage)
	if len(rows) != 1 {
		t.Fatalf("expected exactly one audit row, got %d", len(rows))
	}
	if !rows[0].Success {
		t.Fatalf("upstream success must audit as success: %+v", rows[0])
	}

	fx.stub.imageErr = errors.New("image model unavailable")
	if _, err := fx.svc.GenerateImage(ctx, "draw it again", LogRefs{}); err == nil {
		t.Fatalf("expected error")
	}
	rows = fx.logRows(t, types.GenerationTypeImage)
	if len(rows) != 2 {
		t.Fatalf("failed call must still append one audit row, got %d", len(rows))
	}
	var failed *types.AIGenerationLog
	for _, entry := range rows {
		if !entry.Success {
			failed = entry
		}
	}
	if failed == nil || failed.ErrorMessage == "" {
		t.Fatalf("failure row missing or without error message: %+v", rows)
	}
}
