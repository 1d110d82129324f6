package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hugh/recipe-api/internal/auth"
	"github.com/hugh/recipe-api/internal/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// stubUsers answers ActiveUser from a fixed set of accounts.
type stubUsers map[uint]*models.User

func (s stubUsers) ActiveUser(ctx context.Context, userID uint) (*models.User, error) {
	user, ok := s[userID]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	if !user.IsActive {
		return nil, auth.ErrInactiveAccount
	}
	return user, nil
}

type failingUsers struct{}

func (failingUsers) ActiveUser(ctx context.Context, userID uint) (*models.User, error) {
	return nil, errors.New("connection refused")
}

func testUsers() stubUsers {
	return stubUsers{
		17: {Base: models.Base{ID: 17}, Email: "test@example.com", IsActive: true},
		18: {Base: models.Base{ID: 18}, Email: "sleepy@example.com", IsActive: false},
	}
}

func TestAuth_ValidToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 24*time.Hour)

	token, err := jwtService.GenerateToken(17, "test@example.com")
	require.NoError(t, err)

	for _, header := range []string{"Bearer " + token, "Token " + token, "bearer " + token} {
		t.Run(header[:6], func(t *testing.T) {
			handler := Auth(jwtService, testUsers())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, uint(17), GetUserID(r.Context()))
				okHandler(w, r)
			}))

			req := httptest.NewRequest("GET", "/recipe/tags", nil)
			req.Header.Set("Authorization", header)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "OK", rec.Body.String())
		})
	}
}

func TestAuth_Rejections(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 24*time.Hour)
	expired := auth.NewJWTService("test-secret", -time.Minute)
	stale, err := expired.GenerateToken(17, "test@example.com")
	require.NoError(t, err)
	inactive, err := jwtService.GenerateToken(18, "sleepy@example.com")
	require.NoError(t, err)
	deleted, err := jwtService.GenerateToken(99, "gone@example.com")
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"no header", "", "Authentication credentials were not provided."},
		{"basic scheme", "Basic dXNlcjpwYXNz", "Authentication credentials were not provided."},
		{"garbage token", "Bearer not-a-jwt", "Invalid token."},
		{"expired token", "Bearer " + stale, "Token has expired."},
		{"deactivated account", "Bearer " + inactive, "User inactive or deleted."},
		{"deleted account", "Bearer " + deleted, "User inactive or deleted."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Auth(jwtService, testUsers())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler must not run")
			}))

			req := httptest.NewRequest("GET", "/user/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.message)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestAuth_LookupFailure(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 24*time.Hour)
	token, err := jwtService.GenerateToken(17, "test@example.com")
	require.NoError(t, err)

	handler := Auth(jwtService, failingUsers{})(http.HandlerFunc(okHandler))
	req := httptest.NewRequest("GET", "/user/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestContextHelpers_Empty(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.Zero(t, GetUserID(req.Context()))
}
