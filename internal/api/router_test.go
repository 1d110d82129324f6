package api

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/hugh/recipe-api/internal/auth"
	"github.com/hugh/recipe-api/internal/recipe"
	"github.com/hugh/recipe-api/internal/storage"
	"github.com/hugh/recipe-api/internal/testutil"
	"github.com/hugh/recipe-api/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, rateLimit int) (*Router, *testutil.TestSetup) {
	tc := testutil.NewTestContext(t)
	t.Cleanup(tc.Cleanup)

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	logger := util.NewNopLogger()

	router := NewRouter(RouterConfig{
		DB:             tc.DB,
		Logger:         logger,
		JWTService:     tc.JWTService,
		AuthService:    auth.NewService(tc.DB, tc.JWTService),
		RecipeService:  recipe.NewService(tc.DB, store, logger),
		Store:          store,
		AllowedOrigins: []string{"https://app.example.com"},
		RateLimitReqs:  rateLimit,
		RateLimitSecs:  60,
		MaxUploadBytes: 1 << 20,
	})
	t.Cleanup(router.Close)
	return router, tc
}

func TestRouter_Routes(t *testing.T) {
	router, tc := newTestRouter(t, 0)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{"health", "GET", "/health", "", http.StatusOK},
		{"ready", "GET", "/ready", "", http.StatusOK},
		{"me requires token", "GET", "/user/me", "", http.StatusUnauthorized},
		{"me", "GET", "/user/me", tc.Token, http.StatusOK},
		{"tags", "GET", "/recipe/tags", tc.Token, http.StatusOK},
		{"trailing slash", "GET", "/recipe/tags/", tc.Token, http.StatusOK},
		{"ingredients", "GET", "/recipe/ingredients", tc.Token, http.StatusOK},
		{"recipes", "GET", "/recipe/recipes", tc.Token, http.StatusOK},
		{"recipes require token", "GET", "/recipe/recipes", "", http.StatusUnauthorized},
		{"unknown path", "GET", "/nope", "", http.StatusNotFound},
		{"token is post only", "GET", "/user/token", "", http.StatusMethodNotAllowed},
		{"create is post only", "DELETE", "/user/create", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.AuthenticatedRequest(t, tt.method, tt.path, nil, tt.token)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			testutil.AssertStatus(t, rr, tt.wantStatus)
		})
	}
}

func TestRouter_MethodNotAllowedBody(t *testing.T) {
	router, _ := newTestRouter(t, 0)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/user/create", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), `not allowed`)
}

func TestRouter_CORS(t *testing.T) {
	router, _ := newTestRouter(t, 0)

	req := httptest.NewRequest("OPTIONS", "/recipe/recipes", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RateLimit(t *testing.T) {
	router, _ := newTestRouter(t, 2)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest("GET", "/ready", nil))
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRouter_UploadLimitPerUser(t *testing.T) {
	tc := testutil.NewTestContext(t)
	t.Cleanup(tc.Cleanup)

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	logger := util.NewNopLogger()

	router := NewRouter(RouterConfig{
		DB:             tc.DB,
		Logger:         logger,
		JWTService:     tc.JWTService,
		AuthService:    auth.NewService(tc.DB, tc.JWTService),
		RecipeService:  recipe.NewService(tc.DB, store, logger),
		Store:          store,
		RateLimitSecs:  60,
		UploadLimit:    1,
		MaxUploadBytes: 1 << 20,
	})
	t.Cleanup(router.Close)

	dish := testutil.CreateTestRecipe(t, tc.DB, tc.User.ID, "Sample recipe")
	path := "/recipe/recipes/" + strconv.FormatUint(uint64(dish.ID), 10) + "/upload-image"
	_, otherToken := tc.OtherUser(t)

	upload := func(token string) int {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, testutil.MultipartRequest(t, path, "image", "dish.png", testutil.PNG(t), token))
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, upload(tc.Token))
	assert.Equal(t, http.StatusTooManyRequests, upload(tc.Token))
	// another account has its own bucket; the recipe is not theirs
	assert.Equal(t, http.StatusNotFound, upload(otherToken))
}
