package users

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateUser(ctx context.Context, user *User) error

	// GetUserByID returns nil without error when no user matches.
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetUserByUsername returns nil without error when no user matches.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// GetUserByEmail returns nil without error when no user matches.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}
