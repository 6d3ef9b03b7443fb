package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/inkwell-edu/inkwell-backend/internal/domain"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/apierr"
	"github.com/inkwell-edu/inkwell-backend/internal/services"
)

type fakeSubmissionService struct {
	result *services.SubmitResult
	err    error
}

func (f *fakeSubmissionService) SubmitDrawing(ctx context.Context, userID, topicID uuid.UUID, canvasData string, timeSpent int) (*services.SubmitResult, error) {
	return f.result, f.err
}

func (f *fakeSubmissionService) ResolveTopicContent(ctx context.Context, userID uuid.UUID, topic *types.Topic) (services.TopicContent, error) {
	return services.TopicContent{}, nil
}

func (f *fakeSubmissionService) StateFor(progress *types.UserTopicProgress, latest *types.Attempt) types.ProgressState {
	return types.StateNotStarted
}

type fakeTopicService struct {
	view *services.TopicView
	err  error
}

func (f *fakeTopicService) Create(ctx context.Context, in services.CreateTopicInput, createdBy uuid.UUID) (*types.Topic, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeTopicService) RetryGeneration(ctx context.Context, topicID uuid.UUID) (*types.Topic, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeTopicService) View(ctx context.Context, userID, topicID uuid.UUID) (*services.TopicView, error) {
	return f.view, f.err
}

func submitRequest(t *testing.T, handler *TopicHandler, topicID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/topics/:id/submit", func(c *gin.Context) {
		c.Set("currentUser", &types.User{ID: uuid.New()})
		handler.SubmitDrawing(c)
	})

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/topics/"+topicID+"/submit", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitDrawingHandlerSuccess(t *testing.T) {
	submission := &fakeSubmissionService{result: &services.SubmitResult{
		AttemptID:     uuid.New(),
		AttemptNumber: 1,
		Score:         18,
		IsCorrect:     true,
		Feedback:      "great",
		Completed:     true,
	}}
	handler := NewTopicHandler(&fakeTopicService{}, submission)

	w := submitRequest(t, handler, uuid.NewString(), gin.H{"canvas_data": "data:image/png;base64,AAAA", "time_spent": 120})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp["success"] != true || resp["is_correct"] != true || resp["completed"] != true {
		t.Fatalf("unexpected payload: %v", resp)
	}
	if resp["score"] != float64(18) {
		t.Fatalf("unexpected score: %v", resp["score"])
	}
}

func TestSubmitDrawingHandlerEvaluationFailure(t *testing.T) {
	submission := &fakeSubmissionService{err: apierr.EvaluationFailed(errors.New("evaluation failed, please try again"))}
	handler := NewTopicHandler(&fakeTopicService{}, submission)

	w := submitRequest(t, handler, uuid.NewString(), gin.H{"canvas_data": "data:image/png;base64,AAAA", "time_spent": 5})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Error.Code != apierr.CodeEvaluationFailed {
		t.Fatalf("unexpected error code: %q", resp.Error.Code)
	}
}

func TestSubmitDrawingHandlerBadTopicID(t *testing.T) {
	handler := NewTopicHandler(&fakeTopicService{}, &fakeSubmissionService{})

	w := submitRequest(t, handler, "not-a-uuid", gin.H{"canvas_data": "x", "time_spent": 1})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
