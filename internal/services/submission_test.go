package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/inkwell-edu/inkwell-backend/internal/data/repos"
	"github.com/inkwell-edu/inkwell-backend/internal/data/repos/testutil"
	types "github.com/inkwell-edu/inkwell-backend/internal/domain"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/apierr"
)

type fakeEvaluator struct {
	verdict Verdict
	err     error
	calls   int
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, topic *types.Topic, attempt *types.Attempt) (Verdict, error) {
	f.calls++
	return f.verdict, f.err
}

type fakeFeedback struct {
	content CorrectedContent
	err     error
	calls   int
}

func (f *fakeFeedback) GenerateCorrectedContent(ctx context.Context, topic *types.Topic, attempt *types.Attempt, verdict Verdict) (CorrectedContent, error) {
	f.calls++
	return f.content, f.err
}

type submissionFixture struct {
	tx           *gorm.DB
	svc          SubmissionService
	evaluator    *fakeEvaluator
	feedback     *fakeFeedback
	progressRepo repos.ProgressRepo
	attemptRepo  repos.AttemptRepo
	student      *types.User
	topic        *types.Topic
}

func newSubmissionFixture(t *testing.T, email string) *submissionFixture {
	t.Helper()
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)

	admin := testutil.SeedAdmin(t, ctx, tx, "teacher+"+email)
	student := testutil.SeedUser(t, ctx, tx, email)
	group := testutil.SeedGroup(t, ctx, tx, admin.ID, "group for "+email)
	testutil.SeedMembership(t, ctx, tx, group.ID, student.ID)
	topic := testutil.SeedTopic(t, ctx, tx, group.ID, admin.ID, "topic for "+email)

	groupRepo := repos.NewGroupRepo(tx, log)
	topicRepo := repos.NewTopicRepo(tx, log)
	progressRepo := repos.NewProgressRepo(tx, log)
	attemptRepo := repos.NewAttemptRepo(tx, log)
	evaluator := &fakeEvaluator{}
	feedback := &fakeFeedback{}

	svc := NewSubmissionService(tx, log, groupRepo, topicRepo, progressRepo, attemptRepo, evaluator, feedback)
	return &submissionFixture{
		tx:           tx,
		svc:          svc,
		evaluator:    evaluator,
		feedback:     feedback,
		progressRepo: progressRepo,
		attemptRepo:  attemptRepo,
		student:      student,
		topic:        topic,
	}
}

func TestSubmitDrawingCorrectCompletesProgress(t *testing.T) {
	ctx := context.Background()
	fx := newSubmissionFixture(t, "correct@example.com")
	fx.evaluator.verdict = Verdict{Score: 18, IsCorrect: true, Feedback: "great"}

	result, err := fx.svc.SubmitDrawing(ctx, fx.student.ID, fx.topic.ID, "data:image/png;base64,AAAA", 120)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AttemptNumber != 1 || !result.IsCorrect || result.Score != 18 || !result.Completed {
		t.Fatalf("unexpected result: %+v", result)
	}

	progress, err := fx.progressRepo.Get(ctx, nil, fx.student.ID, fx.topic.ID)
	if err != nil {
		t.Fatalf("progress missing: %v", err)
	}
	if !progress.Completed || progress.FinalScore == nil || *progress.FinalScore != 18 {
		t.Fatalf("progress not frozen: %+v", progress)
	}
	if progress.TotalAttempts != 1 || progress.TotalTimeSpent != 120 {
		t.Fatalf("unexpected totals: %+v", progress)
	}
	if progress.FirstAttemptAt == nil || progress.CompletedAt == nil {
		t.Fatalf("missing timestamps: %+v", progress)
	}
	if fx.feedback.calls != 0 {
		t.Fatalf("feedback should not run for a correct attempt")
	}
}

func TestSubmitDrawingIncorrectAttachesCorrections(t *testing.T) {
	ctx := context.Background()
	fx := newSubmissionFixture(t, "incorrect@example.com")
	fx.evaluator.verdict = Verdict{Score: 9, IsCorrect: false, Feedback: "missing arrows", CorrectionsNeeded: "add the normal force"}
	fx.feedback.content = CorrectedContent{ImagePath: "/media/attempt_corrections/x.png", Text: "try adding the blue arrow"}

	result, err := fx.svc.SubmitDrawing(ctx, fx.student.ID, fx.topic.ID, "data:image/png;base64,AAAA", 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsCorrect || result.Completed {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.UpdatedBackground == "" || result.UpdatedInstructions == "" {
		t.Fatalf("corrected content missing from result: %+v", result)
	}

	latest, err := fx.attemptRepo.Latest(ctx, nil, fx.student.ID, fx.topic.ID)
	if err != nil {
		t.Fatalf("latest attempt: %v", err)
	}
	if !latest.EvaluationCompleted || latest.Score == nil || *latest.Score != 9 {
		t.Fatalf("verdict fields not persisted: %+v", latest)
	}
	if latest.UpdatedBackgroundImagePath != fx.feedback.content.ImagePath {
		t.Fatalf("corrected image not persisted: %+v", latest)
	}

	content, err := fx.svc.ResolveTopicContent(ctx, fx.student.ID, fx.topic)
	if err != nil {
		t.Fatalf("resolve content: %v", err)
	}
	if content.BackgroundImagePath != fx.feedback.content.ImagePath || content.InstructionalText != fx.feedback.content.Text {
		t.Fatalf("corrected content should supersede original: %+v", content)
	}
}

func TestSubmitDrawingPersistsRawVerdict(t *testing.T) {
	ctx := context.Background()
	fx := newSubmissionFixture(t, "rawverdict@example.com")
	raw := "The drawing looks incomplete, please keep trying."
	fx.evaluator.verdict = Verdict{
		Score:             10,
		IsCorrect:         false,
		Feedback:          raw,
		CorrectionsNeeded: "Please review your drawing and try again.",
		Raw:               raw,
	}

	if _, err := fx.svc.SubmitDrawing(ctx, fx.student.ID, fx.topic.ID, "data:image/png;base64,AAAA", 15); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	latest, err := fx.attemptRepo.Latest(ctx, nil, fx.student.ID, fx.topic.ID)
	if err != nil {
		t.Fatalf("latest attempt: %v", err)
	}
	var stored Verdict
	if err := json.Unmarshal(latest.VerdictRaw, &stored); err != nil {
		t.Fatalf("stored verdict is not valid JSON: %v", err)
	}
	if stored.Raw != raw {
		t.Fatalf("stored verdict must carry the original model payload, got %q", stored.Raw)
	}
	if stored.Score != 10 || stored.IsCorrect {
		t.Fatalf("parsed fields missing from stored verdict: %+v", stored)
	}
}

func TestSubmitDrawingFeedbackFailureKeepsScore(t *testing.T) {
	ctx := context.Background()
	fx := newSubmissionFixture(t, "feedbackfail@example.com")
	fx.evaluator.verdict = Verdict{Score: 7, IsCorrect: false, Feedback: "needs work"}
	fx.feedback.err = errors.New("image model unavailable")

	result, err := fx.svc.SubmitDrawing(ctx, fx.student.ID, fx.topic.ID, "data:image/png;base64,AAAA", 30)
	if err != nil {
		t.Fatalf("feedback failure must not fail the submission: %v", err)
	}
	if result.Score != 7 || result.Feedback != "needs work" {
		t.Fatalf("score/feedback lost: %+v", result)
	}

	latest, err := fx.attemptRepo.Latest(ctx, nil, fx.student.ID, fx.topic.ID)
	if err != nil {
		t.Fatalf("latest attempt: %v", err)
	}
	if latest.EvaluationError == "" {
		t.Fatalf("feedback failure should be recorded on the attempt")
	}
	if !latest.EvaluationCompleted || latest.Score == nil || *latest.Score != 7 {
		t.Fatalf("verdict fields must survive feedback failure: %+v", latest)
	}
}

func TestSubmitDrawingEvaluationFailureConsumesSlot(t *testing.T) {
	ctx := context.Background()
	fx := newSubmissionFixture(t, "evalfail@example.com")
	fx.evaluator.err = errors.New("upstream unreachable")

	_, err := fx.svc.SubmitDrawing(ctx, fx.student.ID, fx.topic.ID, "data:image/png;base64,AAAA", 45)
	if !apierr.Is(err, apierr.CodeEvaluationFailed) {
		t.Fatalf("expected evaluation_failed, got %v", err)
	}

	progress, err := fx.progressRepo.Get(ctx, nil, fx.student.ID, fx.topic.ID)
	if err != nil {
		t.Fatalf("progress should exist: %v", err)
	}
	if progress.TotalAttempts != 1 {
		t.Fatalf("failed evaluation must still consume an attempt slot: %+v", progress)
	}

	latest, err := fx.attemptRepo.Latest(ctx, nil, fx.student.ID, fx.topic.ID)
	if err != nil {
		t.Fatalf("latest attempt: %v", err)
	}
	if latest.EvaluationCompleted {
		t.Fatalf("attempt must stay unevaluated: %+v", latest)
	}
	if latest.EvaluationError == "" {
		t.Fatalf("evaluation error must be recorded")
	}

	// A resubmission takes the next slot, it does not retry the first.
	fx.evaluator.err = nil
	fx.evaluator.verdict = Verdict{Score: 16, IsCorrect: true, Feedback: "ok"}
	result, err := fx.svc.SubmitDrawing(ctx, fx.student.ID, fx.topic.ID, "data:image/png;base64,AAAA", 45)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AttemptNumber != 2 {
		t.Fatalf("expected attempt number 2, got %d", result.AttemptNumber)
	}
}

func TestSubmitDrawingNonMemberHasNoSideEffects(t *testing.T) {
	ctx := context.Background()
	fx := newSubmissionFixture(t, "member@example.com")
	outsider := testutil.SeedUser(t, ctx, fx.tx, "outsider@example.com")

	_, err := fx.svc.SubmitDrawing(ctx, outsider.ID, fx.topic.ID, "data:image/png;base64,AAAA", 10)
	if !apierr.Is(err, apierr.CodeAccessDenied) {
		t.Fatalf("expected access_denied, got %v", err)
	}
	if _, err := fx.progressRepo.Get(ctx, nil, outsider.ID, fx.topic.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("no progress row should exist, got %v", err)
	}
	if fx.evaluator.calls != 0 {
		t.Fatalf("evaluator must not run for denied submissions")
	}
}

func TestSubmitDrawingEmptyCanvasRejected(t *testing.T) {
	ctx := context.Background()
	fx := newSubmissionFixture(t, "emptycanvas@example.com")

	_, err := fx.svc.SubmitDrawing(ctx, fx.student.ID, fx.topic.ID, "", 10)
	if !apierr.Is(err, apierr.CodeInvalidInput) {
		t.Fatalf("expected invalid_input, got %v", err)
	}
	if _, err := fx.progressRepo.Get(ctx, nil, fx.student.ID, fx.topic.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("no progress row should exist, got %v", err)
	}
}

func TestSubmitDrawingSequentialAttemptNumbers(t *testing.T) {
	ctx := context.Background()
	fx := newSubmissionFixture(t, "sequence@example.com")
	fx.evaluator.verdict = Verdict{Score: 5, IsCorrect: false, Feedback: "keep going"}

	for want := 1; want <= 3; want++ {
		result, err := fx.svc.SubmitDrawing(ctx, fx.student.ID, fx.topic.ID, "data:image/png;base64,AAAA", 100)
		if err != nil {
			t.Fatalf("submission %d: %v", want, err)
		}
		if result.AttemptNumber != want {
			t.Fatalf("expected attempt number %d, got %d", want, result.AttemptNumber)
		}
	}

	progress, err := fx.progressRepo.Get(ctx, nil, fx.student.ID, fx.topic.ID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if progress.TotalAttempts != 3 || progress.TotalTimeSpent != 300 {
		t.Fatalf("unexpected totals: %+v", progress)
	}

	attempts, err := fx.attemptRepo.ListForUserTopic(ctx, nil, fx.student.ID, fx.topic.ID)
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(attempts) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(attempts))
	}
	for i, a := range attempts {
		if a.AttemptNumber != i+1 {
			t.Fatalf("attempt numbers out of order: %+v", attempts)
		}
	}
}

func TestStateFor(t *testing.T) {
	fx := newSubmissionFixture(t, "states@example.com")

	if got := fx.svc.StateFor(nil, nil); got != types.StateNotStarted {
		t.Fatalf("expected not_started, got %s", got)
	}
	progress := &types.UserTopicProgress{TotalAttempts: 1}
	if got := fx.svc.StateFor(progress, nil); got != types.StateInProgress {
		t.Fatalf("expected in_progress, got %s", got)
	}
	latest := &types.Attempt{EvaluationCompleted: true, IsCorrect: false}
	if got := fx.svc.StateFor(progress, latest); got != types.StateAwaitingRetry {
		t.Fatalf("expected awaiting_retry, got %s", got)
	}
	progress.Completed = true
	if got := fx.svc.StateFor(progress, latest); got != types.StateCompleted {
		t.Fatalf("expected completed, got %s", got)
	}
	pending := &types.Attempt{EvaluationCompleted: false}
	progress.Completed = false
	if got := fx.svc.StateFor(progress, pending); got != types.StateInProgress {
		t.Fatalf("pending evaluation should read as in_progress, got %s", got)
	}
}
