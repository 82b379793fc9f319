package repository

import (
	"context"

	"docrepo/internal/model"
)

// UserRepository defines data access for user accounts.
type UserRepository interface {
	// Create inserts a new user row and returns the stored record.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by id.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail returns a user by email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// RefreshTokenRepository defines data access for refresh tokens.
type RefreshTokenRepository interface {
	// Create inserts a new refresh token row.
	Create(ctx context.Context, t *model.RefreshToken) error

	// Find returns a refresh token row by its token value.
	Find(ctx context.Context, token string) (*model.RefreshToken, error)

	// Revoke marks a token revoked. Revoking an unknown token is a no-op.
	Revoke(ctx context.Context, token string) error
}
