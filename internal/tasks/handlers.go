package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/recipe-api/internal/database/models"
	"github.com/hugh/recipe-api/internal/storage"
	"gorm.io/gorm"
)

// DefaultOrphanGrace keeps fresh uploads out of the sweep while their
// request may still be writing the recipe row.
const DefaultOrphanGrace = time.Hour

type Handler struct {
	db     *gorm.DB
	store  storage.ImageStore
	logger *slog.Logger
	grace  time.Duration
	now    func() time.Time
}

func NewHandler(db *gorm.DB, store storage.ImageStore, logger *slog.Logger, grace time.Duration) *Handler {
	if grace <= 0 {
		grace = DefaultOrphanGrace
	}
	return &Handler{
		db:     db,
		store:  store,
		logger: logger,
		grace:  grace,
		now:    time.Now,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeImageDelete, h.HandleImageDelete)
	mux.HandleFunc(TypeImageSweep, h.HandleImageSweep)
}

func (h *Handler) HandleImageDelete(ctx context.Context, t *asynq.Task) error {
	var payload ImageDeletePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := storage.ValidateKey(payload.Key); err != nil {
		// retrying cannot fix a bad key
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	// A recipe may have been pointed at this key again since the task was
	// queued; leave the file alone in that case.
	referenced, err := h.isReferenced(ctx, payload.Key)
	if err != nil {
		return err
	}
	if referenced {
		h.logger.Info("image still referenced, skipping delete", "key", payload.Key)
		return nil
	}

	if err := h.store.Delete(ctx, payload.Key); err != nil {
		h.logger.Error("image delete failed", "key", payload.Key, "error", err)
		return fmt.Errorf("deleting %s: %w", payload.Key, err)
	}

	h.logger.Info("deleted image", "key", payload.Key)
	return nil
}

// HandleImageSweep removes recipe images that no recipe references and
// that are older than the grace period.
func (h *Handler) HandleImageSweep(ctx context.Context, t *asynq.Task) error {
	objects, err := h.store.List(ctx, storage.RecipeImagePrefix)
	if err != nil {
		return fmt.Errorf("listing images: %w", err)
	}

	var keys []string
	if err := h.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Where("image <> ''").
		Pluck("image", &keys).Error; err != nil {
		return fmt.Errorf("loading referenced images: %w", err)
	}
	referenced := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		referenced[k] = struct{}{}
	}

	cutoff := h.now().Add(-h.grace)
	removed, failed := 0, 0
	for _, obj := range objects {
		if _, ok := referenced[obj.Key]; ok {
			continue
		}
		if obj.ModTime.After(cutoff) {
			continue
		}
		if err := h.store.Delete(ctx, obj.Key); err != nil {
			h.logger.Error("sweep delete failed", "key", obj.Key, "error", err)
			failed++
			continue
		}
		removed++
	}

	h.logger.Info("completed image sweep",
		"scanned", len(objects),
		"removed", removed,
		"failed", failed,
	)

	if failed > 0 {
		return fmt.Errorf("sweep left %d orphaned images", failed)
	}
	return nil
}

func (h *Handler) isReferenced(ctx context.Context, key string) (bool, error) {
	var count int64
	if err := h.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Where("image = ?", key).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking image references: %w", err)
	}
	return count > 0, nil
}
