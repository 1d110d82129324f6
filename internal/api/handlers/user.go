package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hugh/recipe-api/internal/api/dto"
	"github.com/hugh/recipe-api/internal/api/middleware"
	"github.com/hugh/recipe-api/internal/auth"
)

type UserHandler struct {
	accounts auth.Accounts
	logger   *slog.Logger
}

func NewUserHandler(accounts auth.Accounts, logger *slog.Logger) *UserHandler {
	return &UserHandler{accounts: accounts, logger: logger}
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeValidation(w, errors)
		return
	}

	user, err := h.accounts.CreateAccount(r.Context(), auth.CreateAccountInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Info("account created", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, dto.NewUserResponse(user))
}

func (h *UserHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeValidation(w, errors)
		return
	}

	token, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenResponse{Token: token})
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.GetProfile(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewUserResponse(user))
}

// UpdateMe handles PATCH; ReplaceMe handles PUT, which requires the name.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *UserHandler) ReplaceMe(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request, partial bool) {
	var req dto.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errors := req.Validate(partial); len(errors) > 0 {
		writeValidation(w, errors)
		return
	}

	user, err := h.accounts.UpdateProfile(r.Context(), middleware.GetUserID(r.Context()), req.Input())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewUserResponse(user))
}
