package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/maya-ai/engine/pkg/config"
	"github.com/maya-ai/engine/pkg/database"
	"github.com/maya-ai/engine/pkg/logger"

	"github.com/maya-ai/engine/internal/aiclient"
	"github.com/maya-ai/engine/internal/imageurl"
	"github.com/maya-ai/engine/internal/queue/tasks"
	"github.com/maya-ai/engine/internal/repository"
	"github.com/maya-ai/engine/internal/services"
)

func main() {
	cfg := config.MustLoad()
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		},
		asynq.Config{
			Concurrency: cfg.AsynqConcurrency,
		},
	)

	mux := asynq.NewServeMux()
	// Initialize DB and repositories for task handlers
	ctx := context.Background()
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.L().Fatal("failed to open database", zap.Error(err))
	}

	projectRepo := repository.NewProjectRepository(db)
	interiorRepo := repository.NewInteriorRepository(db)
	exteriorRepo := repository.NewExteriorRepository(db)
	exportRepo := repository.NewExportRepository(db)

	// Determine where archives land. EXPORT_DIR can point at a mounted
	// volume; default to the system temp dir for local runs.
	exportDir := cfg.ExportDir
	if exportDir == "" {
		exportDir = os.TempDir()
	} else {
		if err := os.MkdirAll(exportDir, 0o755); err != nil {
			logger.L().Fatal("failed to create export dir", zap.Error(err))
		}
	}

	urls := imageurl.New(cfg.AIAPIBase, cfg.PublicBaseURL)
	tokens := aiclient.NewMemoryTokenSource(cfg.AIAPIToken)
	ai := aiclient.New(cfg.AIAPIBase, tokens, log)

	handler := tasks.NewExportTaskHandler(exportRepo, projectRepo, interiorRepo, exteriorRepo, ai, urls, exportDir)
	mux.HandleFunc(services.TaskTypeExport, handler.HandleExport)

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("asynq worker starting", zap.Int("concurrency", cfg.AsynqConcurrency))
		if err := srv.Run(mux); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.L().Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.L().Error("worker stopped with error", zap.Error(err))
	}

	// Allow in-flight tasks to finish gracefully
	srv.Shutdown()
}
