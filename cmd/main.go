package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edusloth/edusloth-backend/internal/clients/gemini"
	"github.com/edusloth/edusloth-backend/internal/clients/openai"
	"github.com/edusloth/edusloth-backend/internal/config"
	"github.com/edusloth/edusloth-backend/internal/db"
	"github.com/edusloth/edusloth-backend/internal/generation"
	"github.com/edusloth/edusloth-backend/internal/handlers"
	"github.com/edusloth/edusloth-backend/internal/jobs"
	"github.com/edusloth/edusloth-backend/internal/logger"
	"github.com/edusloth/edusloth-backend/internal/middleware"
	"github.com/edusloth/edusloth-backend/internal/observability"
	"github.com/edusloth/edusloth-backend/internal/repos"
	"github.com/edusloth/edusloth-backend/internal/server"
	"github.com/edusloth/edusloth-backend/internal/services"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading configuration from main...")
	cfg := config.Load(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	if otelShutdown := observability.InitTracing(ctx, cfg.Otel, log); otelShutdown != nil {
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := otelShutdown(flushCtx); err != nil {
				log.Warn("Tracer shutdown failed", "error", err)
			}
		}()
	}

	// Mongo
	mongoService, err := db.NewMongoService(cfg.Mongo, log)
	if err != nil {
		log.Fatal("Mongo init failed", "error", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoService.Close(closeCtx); err != nil {
			log.Warn("Mongo disconnect failed", "error", err)
		}
	}()
	if err := mongoService.EnsureIndexes(ctx); err != nil {
		log.Fatal("Mongo index creation failed", "error", err)
	}
	theDB := mongoService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(theDB, log)
	contentRepo := repos.NewContentRepo(theDB, log)
	transcriptionRepo := repos.NewTranscriptionRepo(theDB, log)
	artifactRepo := repos.NewArtifactRepo(theDB, log)
	reminderRepo := repos.NewReminderRepo(theDB, log)

	// Storage
	bucketService, err := services.NewBucketService(cfg.S3, log)
	if err != nil {
		log.Fatal("S3 init failed", "error", err)
	}

	// Generation providers
	log.Info("Setting up AI clients from main...")
	var openaiClient *openai.Client
	if cfg.OpenAI.APIKey != "" {
		openaiClient, err = openai.NewClient(cfg.OpenAI, log)
		if err != nil {
			log.Fatal("OpenAI client init failed", "error", err)
		}
	}
	var geminiClient *gemini.Client
	if cfg.Gemini.APIKey != "" {
		geminiClient, err = gemini.NewClient(ctx, cfg.Gemini, log)
		if err != nil {
			log.Fatal("Gemini client init failed", "error", err)
		}
	}

	var primary, secondary generation.Provider
	switch {
	case cfg.PrimaryProvider == "gemini" && geminiClient != nil:
		primary = geminiClient
		if openaiClient != nil {
			secondary = openaiClient
		}
	case openaiClient != nil:
		primary = openaiClient
		if geminiClient != nil {
			secondary = geminiClient
		}
	case geminiClient != nil:
		primary = geminiClient
	default:
		log.Fatal("No AI provider configured: set OPENAI_API_KEY or GOOGLE_API_KEY")
	}

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(log, userRepo, cfg.JWTSecretKey, cfg.AccessTokenTTL)
	userService := services.NewUserService(log, userRepo)
	contentService := services.NewContentService(log, contentRepo, transcriptionRepo, artifactRepo, bucketService)
	reminderService := services.NewReminderService(reminderRepo, log)

	var transcriptionService services.TranscriptionService
	if openaiClient != nil {
		transcriptionService = services.NewTranscriptionService(contentRepo, transcriptionRepo, bucketService, openaiClient, log)
	} else {
		log.Warn("Transcription disabled: no OPENAI_API_KEY configured")
		transcriptionService = services.NewTranscriptionService(contentRepo, transcriptionRepo, bucketService, nil, log)
	}

	pipeline := generation.NewPipeline(contentRepo, transcriptionRepo, artifactRepo, bucketService, primary, secondary, log)

	// Workers
	pool := jobs.NewPool(log, cfg.Workers.Count, cfg.Workers.QueueSize)
	pool.Start(ctx)
	defer pool.Shutdown()

	// Handlers
	log.Info("Setting up Handlers from main...")
	routerCfg := server.RouterConfig{
		ServiceName:          cfg.Otel.ServiceName,
		AuthMiddleware:       middleware.NewAuthMiddleware(log, authService),
		HealthcheckHandler:   handlers.NewHealthcheckHandler(),
		AuthHandler:          handlers.NewAuthHandler(authService),
		UserHandler:          handlers.NewUserHandler(userService),
		ContentHandler:       handlers.NewContentHandler(contentService, reminderService),
		TranscriptionHandler: handlers.NewTranscriptionHandler(transcriptionService, pool),
		AIHandler:            handlers.NewAIHandler(pipeline, pool, contentRepo, artifactRepo),
		ReminderHandler:      handlers.NewReminderHandler(reminderService),
	}
	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}
	go func() {
		log.Info("Server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("Server shutdown failed", "error", err)
	}
}
