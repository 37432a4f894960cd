package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/garimpo/backend/internal/domain/users"
	"github.com/garimpo/backend/pkg/apierror"
	"github.com/garimpo/backend/pkg/auth"
)

// UserService is the account surface the auth handler depends on.
type UserService interface {
	Register(ctx context.Context, cmd users.RegisterCommand) (*users.User, error)
	Login(ctx context.Context, username, password string) (*users.User, string, time.Time, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*users.User, error)
}

// AuthHandler handles registration, login and profile requests.
type AuthHandler struct {
	users  UserService
	logger *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(users UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, logger: logger}
}

// RegisterRequest is the request body for account creation.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token and the signed-in account.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.BadRequest("invalid request body").Write(w)
		return
	}
	defer r.Body.Close()

	user, err := h.users.Register(r.Context(), users.RegisterCommand{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.BadRequest("invalid request body").Write(w)
		return
	}
	defer r.Body.Close()

	user, token, expiry, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiry,
		User:      toUserResponse(user),
	})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		apierror.Unauthorized("").Write(w)
		return
	}

	user, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}
