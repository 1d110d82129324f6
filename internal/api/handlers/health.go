package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/hugh/recipe-api/internal/storage"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// storageProbeKey never exists; asking for it proves the backend answers.
const storageProbeKey = storage.RecipeImagePrefix + ".health-probe"

type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
	store storage.ImageStore
}

func NewHealthHandler(db *gorm.DB, redis *redis.Client, store storage.ImageStore) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, store: store}
}

type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	services := make(map[string]string)
	status := "healthy"

	check := func(name string, err error) {
		if err != nil {
			services[name] = "unhealthy"
			status = "unhealthy"
			return
		}
		services[name] = "healthy"
	}

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	check("database", err)

	// Redis only backs the cleanup queue, so it is reported when configured.
	if h.redis != nil {
		check("redis", h.redis.Ping(ctx).Err())
	}

	if h.store != nil {
		_, err := h.store.Exists(ctx, storageProbeKey)
		check("storage", err)
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, HealthResponse{
		Status:   status,
		Services: services,
	})
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
