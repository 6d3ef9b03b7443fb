package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/inkwell-edu/inkwell-backend/internal/http/middleware"
	"github.com/inkwell-edu/inkwell-backend/internal/http/response"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/apierr"
	"github.com/inkwell-edu/inkwell-backend/internal/services"
)

type TopicHandler struct {
	topicService      services.TopicService
	submissionService services.SubmissionService
}

func NewTopicHandler(topicService services.TopicService, submissionService services.SubmissionService) *TopicHandler {
	return &TopicHandler{
		topicService:      topicService,
		submissionService: submissionService,
	}
}

func (th *TopicHandler) GetTopic(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.RespondError(c, http.StatusUnauthorized, apierr.CodeUnauthorized, errors.New("not authenticated"))
		return
	}
	topicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidInput, errors.New("invalid topic id"))
		return
	}
	view, err := th.topicService.View(c.Request.Context(), user.ID, topicID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}

func (th *TopicHandler) SubmitDrawing(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.RespondError(c, http.StatusUnauthorized, apierr.CodeUnauthorized, errors.New("not authenticated"))
		return
	}
	topicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidInput, errors.New("invalid topic id"))
		return
	}

	var req struct {
		CanvasData string `json:"canvas_data"`
		TimeSpent  int    `json:"time_spent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidInput, err)
		return
	}

	result, err := th.submissionService.SubmitDrawing(c.Request.Context(), user.ID, topicID, req.CanvasData, req.TimeSpent)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"success":              true,
		"attempt_id":           result.AttemptID,
		"attempt_number":       result.AttemptNumber,
		"score":                result.Score,
		"is_correct":           result.IsCorrect,
		"feedback":             result.Feedback,
		"updated_background":   result.UpdatedBackground,
		"updated_instructions": result.UpdatedInstructions,
		"completed":            result.Completed,
	})
}
