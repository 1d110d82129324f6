package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/hugh/recipe-api/internal/api/dto"
	"github.com/hugh/recipe-api/internal/apperr"
	"github.com/hugh/recipe-api/internal/auth"
	"github.com/hugh/recipe-api/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeValidation(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: fields})
}

// decodeJSON reads a JSON body into v. An empty body decodes to the zero
// value so required-field validation can report what is missing.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
	return false
}

// writeError maps service errors to responses. Anything unrecognised is
// logged and reported as a 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if ve, ok := apperr.AsValidation(err); ok {
		writeValidation(w, ve.Fields)
		return
	}

	switch {
	case errors.Is(err, auth.ErrUserExists):
		writeValidation(w, map[string]string{"email": "user with this email already exists."})
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Unable to authenticate with provided credentials.",
			Details: map[string]string{"non_field_errors": "Unable to authenticate with provided credentials."},
		})
	case errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, storage.ErrObjectNotFound),
		errors.Is(err, storage.ErrInvalidKey):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Not found."})
	default:
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
	}
}
