package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hugh/recipe-api/internal/api/dto"
	"github.com/hugh/recipe-api/internal/api/handlers"
	"github.com/hugh/recipe-api/internal/api/middleware"
	"github.com/hugh/recipe-api/internal/auth"
	"github.com/hugh/recipe-api/internal/recipe"
	"github.com/hugh/recipe-api/internal/storage"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
	limiter       *middleware.RateLimiter
	uploadLimiter *middleware.RateLimiter
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	JWTService     auth.TokenService
	AuthService    auth.Accounts
	RecipeService  *recipe.Service
	Store          storage.ImageStore
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
	UploadLimit    int      // Image uploads per user per window
	MaxUploadBytes int64
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()
	router := &Router{Router: r}

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(chimw.StripSlashes)

	if cfg.RateLimitReqs > 0 {
		router.limiter = middleware.NewRateLimiter(cfg.RateLimitReqs, cfg.RateLimitSecs)
		r.Use(middleware.RateLimit(router.limiter))
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Not found."})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, dto.ErrorResponse{
			Error: fmt.Sprintf("Method %q not allowed.", r.Method),
		})
	})

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis, cfg.Store)
	userHandler := handlers.NewUserHandler(cfg.AuthService, cfg.Logger)
	recipeHandler := handlers.NewRecipeHandler(cfg.RecipeService, cfg.Logger, cfg.MaxUploadBytes)
	mediaHandler := handlers.NewMediaHandler(cfg.Store, cfg.Logger)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	r.Get("/media/*", mediaHandler.Serve)

	r.Route("/user", func(r chi.Router) {
		r.Post("/create", userHandler.Create)
		r.Post("/token", userHandler.Token)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService, cfg.AuthService))
			r.Get("/me", userHandler.Me)
			r.Patch("/me", userHandler.UpdateMe)
			r.Put("/me", userHandler.ReplaceMe)
		})
	})

	r.Route("/recipe", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTService, cfg.AuthService))

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", recipeHandler.ListTags)
			r.Post("/", recipeHandler.CreateTag)
		})

		r.Route("/ingredients", func(r chi.Router) {
			r.Get("/", recipeHandler.ListIngredients)
			r.Post("/", recipeHandler.CreateIngredient)
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", recipeHandler.List)
			r.Post("/", recipeHandler.Create)
			r.Get("/{id}", recipeHandler.Get)
			r.Patch("/{id}", recipeHandler.Update)
			r.Put("/{id}", recipeHandler.Replace)
			r.Delete("/{id}", recipeHandler.Delete)
			upload := r.With()
			if cfg.UploadLimit > 0 {
				router.uploadLimiter = middleware.NewRateLimiter(cfg.UploadLimit, cfg.RateLimitSecs)
				upload = r.With(middleware.RateLimitByUser(router.uploadLimiter))
			}
			upload.Post("/{id}/upload-image", recipeHandler.UploadImage)
		})
	})

	return router
}

// Close stops background work owned by the router.
func (r *Router) Close() {
	if r.limiter != nil {
		r.limiter.Stop()
	}
	if r.uploadLimiter != nil {
		r.uploadLimiter.Stop()
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
