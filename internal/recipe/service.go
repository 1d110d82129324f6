// Package recipe manages the owner-scoped recipe records: tags,
// ingredients, recipes and their images. Every query takes the owner id
// explicitly; a record owned by someone else behaves exactly like a
// missing one.
package recipe

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hugh/recipe-api/internal/apperr"
	"github.com/hugh/recipe-api/internal/storage"
	"gorm.io/gorm"
)

var ErrRecipeNotFound = fmt.Errorf("recipe %w", apperr.ErrNotFound)

// CleanupQueue takes over removal of image files that could not be
// deleted while serving a request.
type CleanupQueue interface {
	EnqueueImageDelete(ctx context.Context, key string) error
}

type Service struct {
	db             *gorm.DB
	store          storage.ImageStore
	logger         *slog.Logger
	cleanup        CleanupQueue
	maxUploadBytes int64
}

func NewService(db *gorm.DB, store storage.ImageStore, logger *slog.Logger) *Service {
	return &Service{
		db:     db,
		store:  store,
		logger: logger,
	}
}

// WithCleanupQueue sets the queue used for failed image removals. Without
// one, such failures are only logged.
func (s *Service) WithCleanupQueue(q CleanupQueue) *Service {
	s.cleanup = q
	return s
}

// WithMaxUploadBytes caps the size of attached images. Zero disables the
// check.
func (s *Service) WithMaxUploadBytes(n int64) *Service {
	s.maxUploadBytes = n
	return s
}

// ImageURL returns the public URL for a stored image key.
func (s *Service) ImageURL(key string) string {
	if key == "" {
		return ""
	}
	return s.store.URL(key)
}

// removeImage deletes key from the store. A failure is logged and the key
// is handed to the cleanup queue.
func (s *Service) removeImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	err := s.store.Delete(ctx, key)
	if err == nil {
		return
	}

	s.logger.Error("failed to remove image", "key", key, "error", err)
	if s.cleanup == nil {
		return
	}
	if qerr := s.cleanup.EnqueueImageDelete(context.WithoutCancel(ctx), key); qerr != nil {
		s.logger.Error("failed to enqueue image cleanup", "key", key, "error", qerr)
	}
}
