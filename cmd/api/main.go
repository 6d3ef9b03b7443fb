package main

import (
	"fmt"
	"os"

	"github.com/inkwell-edu/inkwell-backend/internal/data/db"
	"github.com/inkwell-edu/inkwell-backend/internal/data/repos"
	inkhttp "github.com/inkwell-edu/inkwell-backend/internal/http"
	"github.com/inkwell-edu/inkwell-backend/internal/http/handlers"
	"github.com/inkwell-edu/inkwell-backend/internal/http/middleware"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/envutil"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/logger"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/media"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/openai"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/render"
	"github.com/inkwell-edu/inkwell-backend/internal/services"
)

func main() {
	// Logger
	log, err := logger.New(envutil.Get("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Database
	dbService, err := db.New(log)
	if err != nil {
		log.Fatal("Database init failed", "error", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Fatal("Database migration failed", "error", err)
	}
	gdb := dbService.DB()

	// Repos
	userRepo := repos.NewUserRepo(gdb, log)
	groupRepo := repos.NewGroupRepo(gdb, log)
	topicRepo := repos.NewTopicRepo(gdb, log)
	progressRepo := repos.NewProgressRepo(gdb, log)
	attemptRepo := repos.NewAttemptRepo(gdb, log)
	genLogRepo := repos.NewAIGenerationLogRepo(gdb, log)

	// Platform
	mediaStore, err := media.NewStore(log)
	if err != nil {
		log.Fatal("Media store init failed", "error", err)
	}
	openaiClient, err := openai.NewClient(log)
	if err != nil {
		log.Fatal("OpenAI client init failed", "error", err)
	}
	placeholder, err := render.NewPlaceholderRenderer()
	if err != nil {
		log.Fatal("Placeholder renderer init failed", "error", err)
	}

	// Services
	aiService := services.NewAIService(gdb, log, openaiClient, genLogRepo, placeholder)
	contentGenService := services.NewContentGenService(gdb, log, aiService, mediaStore, topicRepo)
	evaluationService := services.NewEvaluationService(log, aiService)
	feedbackService := services.NewFeedbackService(log, aiService, mediaStore)
	submissionService := services.NewSubmissionService(gdb, log, groupRepo, topicRepo, progressRepo, attemptRepo, evaluationService, feedbackService)
	authService := services.NewAuthService(gdb, log, userRepo)
	groupService := services.NewGroupService(gdb, log, groupRepo, topicRepo, userRepo, progressRepo)
	topicService := services.NewTopicService(gdb, log, topicRepo, groupRepo, attemptRepo, progressRepo, contentGenService, submissionService)
	homeService := services.NewHomeService(gdb, log, groupRepo, topicRepo, progressRepo, attemptRepo, submissionService)
	auditService := services.NewAuditService(gdb, log, genLogRepo)

	// HTTP
	authMiddleware := middleware.NewAuthMiddleware(log, authService)
	server := inkhttp.NewServer(inkhttp.RouterConfig{
		Log:            log,
		AuthMiddleware: authMiddleware,
		HealthHandler:  handlers.NewHealthHandler(),
		AuthHandler:    handlers.NewAuthHandler(authService),
		HomeHandler:    handlers.NewHomeHandler(homeService),
		TopicHandler:   handlers.NewTopicHandler(topicService, submissionService),
		AdminHandler:   handlers.NewAdminHandler(authService, groupService, topicService, auditService),
		MediaRoot:      mediaStore.Root(),
	})

	address := ":" + envutil.Get("PORT", "8080")
	log.Info("Starting server", "address", address)
	if err := server.Run(address); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
