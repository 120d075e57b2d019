// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/taskhub/internal/model"
)

// UserRepository provides access to accounts and their credentials.
type UserRepository interface {
	// Create inserts a new user and fills its ID and timestamps.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// GetByEmail loads a user by normalised email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// ExistsByEmail reports whether the email is already registered.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// TokenRepository persists records of issued access tokens.
type TokenRepository interface {
	// Create stores a token record and fills its ID and creation time.
	Create(ctx context.Context, t *model.AccessToken) error
}
