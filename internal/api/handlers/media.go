package handlers

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/recipe-api/internal/api/dto"
	"github.com/hugh/recipe-api/internal/storage"
)

// MediaHandler serves stored images for backends without public URLs of
// their own (the local store).
type MediaHandler struct {
	store  storage.ImageStore
	logger *slog.Logger
}

func NewMediaHandler(store storage.ImageStore, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{store: store, logger: logger}
}

func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if !strings.HasPrefix(key, storage.RecipeImagePrefix) || storage.ValidateKey(key) != nil {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Not found."})
		return
	}

	rc, err := h.store.Open(r.Context(), key)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("media copy interrupted", "key", key, "error", err)
	}
}
