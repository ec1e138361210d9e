package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/maya-ai/engine/internal/aiclient"
	"github.com/maya-ai/engine/internal/api"
	"github.com/maya-ai/engine/internal/api/handlers"
	"github.com/maya-ai/engine/internal/api/validators"
	"github.com/maya-ai/engine/internal/imageurl"
	"github.com/maya-ai/engine/internal/repository"
	"github.com/maya-ai/engine/internal/services"
	"github.com/maya-ai/engine/pkg/config"
	"github.com/maya-ai/engine/pkg/database"
	"github.com/maya-ai/engine/pkg/logger"
)

// @title           Maya Engine API
// @version         1.0
// @description     Architectural design platform with AI-generated floor plans, interiors and exteriors

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg := config.MustLoad()

	// Initialize logger
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("Starting Maya Engine",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
	)

	// Connect to database
	ctx := context.Background()
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	floorRepo := repository.NewFloorRepository(db)
	interiorRepo := repository.NewInteriorRepository(db)
	exteriorRepo := repository.NewExteriorRepository(db)
	chatRepo := repository.NewChatRepository(db)
	exportRepo := repository.NewExportRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	jwtSecret := []byte(cfg.JWTSecret)
	if len(jwtSecret) == 0 {
		log.Warn("JWT_SECRET not set, using default (INSECURE for production)")
		jwtSecret = []byte("change-me-in-production-please")
	}

	// Outbound generation client. The unauthorized strategy only clears the
	// shared token; a fresh one comes from config on restart or rotation.
	urls := imageurl.New(cfg.AIAPIBase, cfg.PublicBaseURL)
	tokens := aiclient.NewMemoryTokenSource(cfg.AIAPIToken)
	ai := aiclient.New(cfg.AIAPIBase, tokens, log,
		aiclient.WithOnUnauthorized(func() {
			log.Warn("generation service rejected credentials")
		}),
	)

	// Task queue producer
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer asynqClient.Close()

	// Services
	authSvc := services.NewAuthService(userRepo, jwtSecret)
	projectSvc := services.NewProjectService(projectRepo)
	workspaceSvc := services.NewWorkspaceService(projectRepo, floorRepo, interiorRepo, exteriorRepo, ai, urls)
	chatSvc := services.NewChatService(chatRepo, ai, urls)
	exportSvc := services.NewExportService(projectRepo, exportRepo, asynqClient)
	adminSvc := services.NewAdminService(userRepo, projectRepo, chatRepo, exteriorRepo, settingRepo)

	// Handlers
	v := validators.New()
	router := api.NewRouter(api.Dependencies{
		HMACSecret:       jwtSecret,
		AuthHandler:      handlers.NewAuthHandler(authSvc, v),
		ProjectsHandler:  handlers.NewProjectsHandler(projectSvc, workspaceSvc, exportSvc, v),
		FloorsHandler:    handlers.NewFloorsHandler(floorRepo, projectRepo, workspaceSvc, v),
		InteriorsHandler: handlers.NewInteriorsHandler(interiorRepo, projectRepo, workspaceSvc, v),
		ExteriorsHandler: handlers.NewExteriorsHandler(workspaceSvc, v),
		ChatsHandler:     handlers.NewChatsHandler(chatSvc, v),
		AdminHandler:     handlers.NewAdminHandler(adminSvc, v),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}
