package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garimpo/backend/pkg/auth"
)

var (
	ErrUserAlreadyExists  = errors.New("username or email already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidInput       = errors.New("invalid input")
)

// RegisterCommand represents the command to create a new account
type RegisterCommand struct {
	Username string
	Email    string
	Password string
	FullName string
}

type Service struct {
	repo   Repository
	signer *auth.Signer
}

func NewService(repo Repository, signer *auth.Signer) *Service {
	return &Service{repo: repo, signer: signer}
}

// Register creates a new account with an Argon2id password hash.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*User, error) {
	if err := validateRegistration(cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	existing, err := s.repo.GetUserByUsername(ctx, cmd.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	existing, err = s.repo.GetUserByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	hash, err := auth.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Username:     cmd.Username,
		Email:        cmd.Email,
		PasswordHash: hash,
		FullName:     cmd.FullName,
		CreatedAt:    time.Now(),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and issues a signed access token.
func (s *Service) Login(ctx context.Context, username, password string) (*User, string, time.Time, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiry, err := s.signer.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, expiry, nil
}

// GetProfile returns the account behind an authenticated caller.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func validateRegistration(cmd RegisterCommand) error {
	if cmd.Username == "" {
		return errors.New("username is required")
	}
	if len(cmd.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if !strings.Contains(cmd.Email, "@") {
		return errors.New("email is invalid")
	}
	return nil
}
