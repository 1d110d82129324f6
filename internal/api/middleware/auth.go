package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/hugh/recipe-api/internal/api/dto"
	"github.com/hugh/recipe-api/internal/apperr"
	"github.com/hugh/recipe-api/internal/auth"
	"github.com/hugh/recipe-api/internal/database/models"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// UserLookup resolves the account behind a valid token.
type UserLookup interface {
	ActiveUser(ctx context.Context, userID uint) (*models.User, error)
}

// tokenFromHeader accepts "Bearer <jwt>" and the "Token <jwt>" form older
// clients send.
func tokenFromHeader(header string) string {
	for _, scheme := range []string{"Bearer ", "Token "} {
		if len(header) > len(scheme) && strings.EqualFold(header[:len(scheme)], scheme) {
			return strings.TrimSpace(header[len(scheme):])
		}
	}
	return ""
}

// Auth accepts a request only when its token is valid and the account it
// names still exists and is active.
func Auth(jwtService auth.TokenService, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromHeader(r.Header.Get("Authorization"))
			if token == "" {
				unauthorized(w, "Authentication credentials were not provided.")
				return
			}

			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				msg := "Invalid token."
				if errors.Is(err, auth.ErrExpiredToken) {
					msg = "Token has expired."
				}
				unauthorized(w, msg)
				return
			}

			user, err := users.ActiveUser(r.Context(), claims.UserID)
			switch {
			case err == nil:
			case errors.Is(err, auth.ErrInactiveAccount), errors.Is(err, apperr.ErrNotFound):
				unauthorized(w, "User inactive or deleted.")
				return
			default:
				writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GetUserID returns the authenticated user's id, or 0 outside Auth.
func GetUserID(ctx context.Context) uint {
	if id, ok := ctx.Value(UserIDKey).(uint); ok {
		return id
	}
	return 0
}
