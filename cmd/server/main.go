package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/recipe-api/internal/api"
	"github.com/hugh/recipe-api/internal/auth"
	"github.com/hugh/recipe-api/internal/database"
	"github.com/hugh/recipe-api/internal/recipe"
	"github.com/hugh/recipe-api/internal/storage"
	"github.com/hugh/recipe-api/internal/tasks"
	"github.com/hugh/recipe-api/pkg/config"
	"github.com/hugh/recipe-api/pkg/queue"
	"github.com/hugh/recipe-api/pkg/util"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
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

	logger.Info("starting recipe API server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
		"storage", cfg.Storage.Backend,
	)

	ctx := context.Background()

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Development databases are brought up to date on start; elsewhere
	// cmd/migrate owns the schema.
	if cfg.Server.IsDevelopment() {
		if err := database.Migrate(ctx, db); err != nil {
			logger.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewImageStore(ctx, &cfg.Storage)
	if err != nil {
		logger.Error("failed to open image storage", "error", err)
		os.Exit(1)
	}

	// Redis is optional: without it failed image removals are only logged.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("failed to connect to Redis", "error", err)
		_ = redisClient.Close()
		redisClient = nil
	}

	var asynqClient *asynq.Client
	if redisClient != nil {
		asynqClient = queue.NewClient(&cfg.Redis)
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(db, jwtService)

	recipeService := recipe.NewService(db, store, logger).
		WithMaxUploadBytes(cfg.Storage.MaxUploadBytes)
	if asynqClient != nil {
		recipeService.WithCleanupQueue(tasks.NewEnqueuer(asynqClient))
	}

	router := api.NewRouter(api.RouterConfig{
		DB:             db,
		Redis:          redisClient,
		Logger:         logger,
		JWTService:     jwtService,
		AuthService:    authService,
		RecipeService:  recipeService,
		Store:          store,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RateLimitReqs:  cfg.RateLimit.Requests,
		RateLimitSecs:  cfg.RateLimit.WindowSeconds,
		UploadLimit:    cfg.RateLimit.Uploads,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	router.Close()

	if asynqClient != nil {
		_ = asynqClient.Close()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	if err := database.Close(db); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("server stopped")
}
