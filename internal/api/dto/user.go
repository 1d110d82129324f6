package dto

import (
	"fmt"
	"strings"

	"github.com/hugh/recipe-api/internal/api/validation"
	"github.com/hugh/recipe-api/internal/auth"
	"github.com/hugh/recipe-api/internal/database/models"
)

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (r CreateUserRequest) Validate() map[string]string {
	errors := make(map[string]string)

	email := strings.TrimSpace(r.Email)
	if email == "" {
		errors["email"] = "This field is required."
	} else if !validation.IsValidEmail(email) {
		errors["email"] = "Enter a valid email address."
	}
	if r.Password == "" {
		errors["password"] = "This field is required."
	} else if len(r.Password) < auth.MinPasswordLength {
		errors["password"] = fmt.Sprintf("Ensure this field has at least %d characters.", auth.MinPasswordLength)
	}
	if len(r.Name) > 255 {
		errors["name"] = "Ensure this field has no more than 255 characters."
	}

	return errors
}

type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r TokenRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(r.Email) == "" {
		errors["email"] = "This field is required."
	}
	if r.Password == "" {
		errors["password"] = "This field is required."
	}

	return errors
}

type TokenResponse struct {
	Token string `json:"token"`
}

// UpdateUserRequest carries the editable profile fields. Email is
// accepted for symmetry with the profile body but never changed.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Name     *string `json:"name,omitempty"`
}

// Validate checks the request. With partial false (PUT) the name must be
// present.
func (r UpdateUserRequest) Validate(partial bool) map[string]string {
	errors := make(map[string]string)

	if r.Password != nil && len(*r.Password) < auth.MinPasswordLength {
		errors["password"] = fmt.Sprintf("Ensure this field has at least %d characters.", auth.MinPasswordLength)
	}
	if r.Name != nil && len(*r.Name) > 255 {
		errors["name"] = "Ensure this field has no more than 255 characters."
	}
	if !partial && r.Name == nil {
		errors["name"] = "This field is required."
	}

	return errors
}

func (r UpdateUserRequest) Input() auth.UpdateProfileInput {
	input := auth.UpdateProfileInput{Password: r.Password}
	if r.Name != nil {
		name := validation.SanitizeString(*r.Name)
		input.Name = &name
	}
	return input
}

type UserResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}
