package recipe

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hugh/recipe-api/internal/apperr"
	"github.com/hugh/recipe-api/internal/database/models"
	"github.com/hugh/recipe-api/internal/storage"
	"gorm.io/gorm"
)

// ImageUpload is an uploaded file. Content must be seekable so it can be
// validated before it is stored.
type ImageUpload struct {
	Filename string
	Content  io.ReadSeeker
}

// AttachImage validates the upload, stores it under a fresh key and points
// the recipe at it. The image it replaced, if any, is removed once the row
// update has committed.
func (s *Service) AttachImage(ctx context.Context, ownerID, id uint, upload ImageUpload) (*models.Recipe, error) {
	recipe, err := s.GetRecipe(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if upload.Content == nil {
		return nil, apperr.Invalid("image", "No file was submitted.")
	}
	info, err := storage.ValidateImage(upload.Content, s.maxUploadBytes)
	if err != nil {
		return nil, err
	}

	key := storage.NewImageKey(upload.Filename, info.Ext)
	if err := s.store.Put(ctx, key, upload.Content, info.MIME); err != nil {
		return nil, fmt.Errorf("storing image: %w", err)
	}

	old, err := s.swapImage(ctx, ownerID, id, recipe.Image, key)
	if err != nil {
		if delErr := s.store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			s.logger.Error("failed to remove orphaned upload", "key", key, "error", delErr)
		}
		if errors.Is(err, ErrRecipeNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("saving image: %w", err)
	}

	if old != "" && old != key {
		s.removeImage(ctx, old)
	}

	s.logger.Info("attached recipe image",
		"id", id,
		"key", key,
		"mime", info.MIME,
		"size", info.Size,
	)

	recipe.Image = key
	return recipe, nil
}

// maxSwapAttempts bounds retries when concurrent uploads keep replacing
// the image between read and write.
const maxSwapAttempts = 5

// swapImage points the recipe at key only if its image is still expected,
// and returns the key it replaced. When another upload got there first the
// current value is re-read, so the file removed is always the one this
// write displaced.
func (s *Service) swapImage(ctx context.Context, ownerID, id uint, expected, key string) (string, error) {
	db := s.db.WithContext(ctx)
	for attempt := 0; attempt < maxSwapAttempts; attempt++ {
		result := db.Model(&models.Recipe{}).
			Where("id = ? AND user_id = ? AND image = ?", id, ownerID, expected).
			Update("image", key)
		if result.Error != nil {
			return "", result.Error
		}
		if result.RowsAffected == 1 {
			return expected, nil
		}

		var current models.Recipe
		err := db.Select("image").Where("id = ? AND user_id = ?", id, ownerID).First(&current).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrRecipeNotFound
			}
			return "", err
		}
		expected = current.Image
	}
	return "", fmt.Errorf("image of recipe %d changed concurrently %d times", id, maxSwapAttempts)
}
