package auth

import (
	"context"

	"github.com/hugh/recipe-api/internal/database/models"
)

// Accounts defines the account operations the API layer depends on.
type Accounts interface {
	CreateAccount(ctx context.Context, input CreateAccountInput) (*models.User, error)
	CreateAdminAccount(ctx context.Context, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
	GetProfile(ctx context.Context, userID uint) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uint, input UpdateProfileInput) (*models.User, error)
	ActiveUser(ctx context.Context, userID uint) (*models.User, error)
}

// TokenService defines the interface for JWT token operations.
type TokenService interface {
	GenerateToken(userID uint, email string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Compile-time interface satisfaction checks
var (
	_ Accounts     = (*Service)(nil)
	_ TokenService = (*JWTService)(nil)
)
