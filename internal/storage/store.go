// Package storage keeps uploaded recipe images. Keys are slash-separated
// paths such as "uploads/recipe/<uuid>.png"; every backend stores the file
// under exactly that key.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/recipe-api/pkg/config"
)

// RecipeImagePrefix is the key prefix of every recipe image.
const RecipeImagePrefix = "uploads/recipe/"

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidKey     = errors.New("invalid storage key")
)

// Object describes a stored file.
type Object struct {
	Key     string
	ModTime time.Time
}

// ImageStore is the file collaborator behind recipe images.
type ImageStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes key; a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]Object, error)
	URL(key string) string
}

// imageExts maps each accepted image extension to its canonical form.
var imageExts = map[string]string{".png": ".png", ".jpg": ".jpg", ".jpeg": ".jpg", ".gif": ".gif"}

// NewImageKey returns a fresh key for an uploaded image. detectedExt is the
// extension of the sniffed content type (e.g. ".jpg"). The filename's
// extension is kept only when it names the same type; otherwise the
// detected one is used, so the key always matches what is stored.
func NewImageKey(filename, detectedExt string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	detectedExt = strings.ToLower(detectedExt)

	canonical, isImage := imageExts[ext]
	switch {
	case detectedExt == "" && isImage:
	case isImage && canonical == imageExts[detectedExt]:
	default:
		ext = detectedExt
	}
	return RecipeImagePrefix + uuid.NewString() + ext
}

// ValidateKey rejects keys that would escape the store root.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if path.Clean(key) != key {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}

// NewImageStore builds the backend named in cfg.Backend.
func NewImageStore(ctx context.Context, cfg *config.StorageConfig) (ImageStore, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStore(cfg.MediaRoot)
	case "s3":
		return NewS3Store(ctx, cfg)
	case "gcs":
		return NewGCSStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
