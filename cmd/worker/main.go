package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/recipe-api/internal/database"
	"github.com/hugh/recipe-api/internal/storage"
	"github.com/hugh/recipe-api/internal/tasks"
	"github.com/hugh/recipe-api/pkg/config"
	"github.com/hugh/recipe-api/pkg/queue"
	"github.com/hugh/recipe-api/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting recipe image worker", "storage", cfg.Storage.Backend)

	if err := util.ValidateCronExpr(cfg.Worker.SweepCron); err != nil {
		logger.Error("invalid sweep schedule", "cron", cfg.Worker.SweepCron, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	store, err := storage.NewImageStore(ctx, &cfg.Storage)
	if err != nil {
		logger.Error("failed to open image storage", "error", err)
		os.Exit(1)
	}

	srv := queue.NewServer(&cfg.Redis, cfg.Worker.Concurrency, logger)
	scheduler := queue.NewScheduler(&cfg.Redis, logger)

	entryID, err := scheduler.Register(cfg.Worker.SweepCron, tasks.NewImageSweepTask())
	if err != nil {
		logger.Error("failed to schedule image sweep", "error", err)
		os.Exit(1)
	}
	if next, err := util.NextCronTime(cfg.Worker.SweepCron, time.Now().UTC()); err == nil {
		logger.Info("image sweep scheduled", "entry", entryID, "cron", cfg.Worker.SweepCron, "next_run", next)
	}

	handler := tasks.NewHandler(db, store, logger, cfg.Worker.OrphanGrace())

	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	if err := srv.Start(mux); err != nil {
		logger.Error("worker error", "error", err)
		scheduler.Shutdown()
		os.Exit(1)
	}

	logger.Info("worker started, waiting for tasks...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker...")
	scheduler.Shutdown()
	srv.Shutdown()

	if closer, ok := store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	if err := database.Close(db); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("worker stopped")
}
