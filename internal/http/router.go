package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/inkwell-edu/inkwell-backend/internal/http/handlers"
	httpMW "github.com/inkwell-edu/inkwell-backend/internal/http/middleware"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler *httpH.HealthHandler
	AuthHandler   *httpH.AuthHandler
	HomeHandler   *httpH.HomeHandler
	TopicHandler  *httpH.TopicHandler
	AdminHandler  *httpH.AdminHandler

	MediaRoot string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	if cfg.MediaRoot != "" {
		r.Static("/media", cfg.MediaRoot)
	}

	api := r.Group("/api")
	{
		if cfg.AuthHandler != nil {
			api.POST("/auth/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.GET("/me", cfg.AuthHandler.GetMe)
		}
		if cfg.HomeHandler != nil {
			protected.GET("/home", cfg.HomeHandler.GetHome)
		}
		if cfg.TopicHandler != nil {
			protected.GET("/topics/:id", cfg.TopicHandler.GetTopic)
			protected.POST("/topics/:id/submit", cfg.TopicHandler.SubmitDrawing)
		}
	}

	admin := protected.Group("/admin")
	{
		if cfg.AuthMiddleware != nil {
			admin.Use(cfg.AuthMiddleware.RequireAdmin())
		}

		if cfg.AdminHandler != nil {
			admin.POST("/users", cfg.AdminHandler.CreateUser)
			admin.POST("/groups", cfg.AdminHandler.CreateGroup)
			admin.GET("/groups", cfg.AdminHandler.ListGroups)
			admin.POST("/groups/:id/members", cfg.AdminHandler.AddGroupMembers)
			admin.GET("/groups/:id/progress", cfg.AdminHandler.GroupProgress)
			admin.POST("/topics", cfg.AdminHandler.CreateTopic)
			admin.POST("/topics/:id/generate", cfg.AdminHandler.RetryTopicGeneration)
			admin.GET("/ai-logs", cfg.AdminHandler.ListAILogs)
		}
	}

	return r
}
