package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hugh/recipe-api/internal/apperr"
	"github.com/hugh/recipe-api/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = fmt.Errorf("user %w", apperr.ErrNotFound)
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account is inactive")
)

type Service struct {
	db  *gorm.DB
	jwt *JWTService
}

func NewService(db *gorm.DB, jwt *JWTService) *Service {
	return &Service{db: db, jwt: jwt}
}

type CreateAccountInput struct {
	Email    string
	Password string
	Name     string
}

// UpdateProfileInput carries the mutable profile fields. Nil means
// "leave unchanged".
type UpdateProfileInput struct {
	Name     *string
	Password *string
}

func validatePassword(password string) string {
	if password == "" {
		return "Password is required"
	}
	if len(password) < MinPasswordLength {
		return fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)
	}
	return ""
}

func (s *Service) CreateAccount(ctx context.Context, input CreateAccountInput) (*models.User, error) {
	return s.createUser(ctx, input, false)
}

// CreateAdminAccount creates an account with the staff and superuser flags
// set.
func (s *Service) CreateAdminAccount(ctx context.Context, email, password string) (*models.User, error) {
	return s.createUser(ctx, CreateAccountInput{Email: email, Password: password}, true)
}

func (s *Service) createUser(ctx context.Context, input CreateAccountInput, admin bool) (*models.User, error) {
	email := models.NormalizeEmail(input.Email)

	fields := make(map[string]string)
	if email == "" {
		fields["email"] = "Email is required"
	}
	if msg := validatePassword(input.Password); msg != "" {
		fields["password"] = msg
	}
	if err := apperr.FromFields(fields); err != nil {
		return nil, err
	}

	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("checking existing user: %w", err)
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(input.Name),
		IsActive:     true,
		IsStaff:      admin,
		IsSuperuser:  admin,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return &user, nil
}

// Authenticate checks credentials and returns a signed token for the
// account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, error) {
	email = models.NormalizeEmail(email)

	fields := make(map[string]string)
	if email == "" {
		fields["email"] = "Email is required"
	}
	if password == "" {
		fields["password"] = "Password is required"
	}
	if err := apperr.FromFields(fields); err != nil {
		return "", err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("loading user: %w", err)
	}

	// Inactive accounts get the same answer as a wrong password.
	if !user.IsActive || !CheckPassword(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	return s.jwt.GenerateToken(user.ID, user.Email)
}

func (s *Service) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return &user, nil
}

// ActiveUser loads the account behind a token. Accounts deactivated after
// the token was issued get ErrInactiveAccount.
func (s *Service) ActiveUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactiveAccount
	}
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uint, input UpdateProfileInput) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Password != nil {
		if msg := validatePassword(*input.Password); msg != "" {
			return nil, apperr.Invalid("password", msg)
		}
		hash, err := HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		updates["password_hash"] = hash
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	return s.GetProfile(ctx, userID)
}
