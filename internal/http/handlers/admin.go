package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/inkwell-edu/inkwell-backend/internal/domain"
	"github.com/inkwell-edu/inkwell-backend/internal/http/middleware"
	"github.com/inkwell-edu/inkwell-backend/internal/http/response"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/apierr"
	"github.com/inkwell-edu/inkwell-backend/internal/services"
)

type AdminHandler struct {
	authService  services.AuthService
	groupService services.GroupService
	topicService services.TopicService
	auditService services.AuditService
}

func NewAdminHandler(
	authService services.AuthService,
	groupService services.GroupService,
	topicService services.TopicService,
	auditService services.AuditService,
) *AdminHandler {
	return &AdminHandler{
		authService:  authService,
		groupService: groupService,
		topicService: topicService,
		auditService: auditService,
	}
}

func (ah *AdminHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidInput, err)
		return
	}
	user, err := ah.authService.CreateUser(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"full_name": user.FullName(),
		"is_admin":  user.IsAdmin,
	})
}

func (ah *AdminHandler) CreateGroup(c *gin.Context) {
	admin := middleware.CurrentUser(c)
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidInput, err)
		return
	}
	group, err := ah.groupService.Create(c.Request.Context(), req.Name, req.Description, admin.ID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"id":          group.ID,
		"name":        group.Name,
		"description": group.Description,
	})
}

func (ah *AdminHandler) AddGroupMembers(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidInput, errors.New("invalid group id"))
		return
	}
	var req struct {
		UserIDs []uuid.UUID `json:"user_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidInput, err)
		return
	}
	if err := ah.groupService.AddMembers(c.Request.Context(), groupID, req.UserIDs); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (ah *AdminHandler) ListGroups(c *gin.Context) {
	offset, limit := pagination(c)
	groups, total, err := ah.groupService.List(c.Request.Context(), offset, limit)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"groups": groups, "total": total})
}

func (ah *AdminHandler) GroupProgress(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidInput, errors.New("invalid group id"))
		return
	}
	detail, err := ah.groupService.ProgressDetail(c.Request.Context(), groupID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, detail)
}

func (ah *AdminHandler) CreateTopic(c *gin.Context) {
	admin := middleware.CurrentUser(c)
	var req services.CreateTopicInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidInput, err)
		return
	}
	topic, err := ah.topicService.Create(c.Request.Context(), req, admin.ID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"id":                topic.ID,
		"title":             topic.Title,
		"content_generated": topic.ContentGenerated,
		"generation_error":  topic.GenerationError,
	})
}

func (ah *AdminHandler) RetryTopicGeneration(c *gin.Context) {
	topicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidInput, errors.New("invalid topic id"))
		return
	}
	topic, err := ah.topicService.RetryGeneration(c.Request.Context(), topicID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"id":                topic.ID,
		"content_generated": topic.ContentGenerated,
		"generation_error":  topic.GenerationError,
	})
}

func (ah *AdminHandler) ListAILogs(c *gin.Context) {
	offset, limit := pagination(c)
	generationType := types.GenerationType(c.Query("type"))
	rows, total, err := ah.auditService.ListAILogs(c.Request.Context(), generationType, offset, limit)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"logs": rows, "total": total})
}

func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return offset, limit
}
