package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"docrepo/internal/model"
	"docrepo/internal/repository"
)

// RefreshTokenPostgres is a PostgreSQL implementation of repository.RefreshTokenRepository.
type RefreshTokenPostgres struct {
	db *sql.DB
}

// NewRefreshTokenPostgres creates a new RefreshTokenPostgres repository.
func NewRefreshTokenPostgres(db *sql.DB) *RefreshTokenPostgres {
	return &RefreshTokenPostgres{db: db}
}

var _ repository.RefreshTokenRepository = (*RefreshTokenPostgres)(nil)

// Create inserts a new refresh token row.
func (r *RefreshTokenPostgres) Create(ctx context.Context, t *model.RefreshToken) error {
	const q = `
		INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at, revoked)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, q,
		t.ID, t.UserID, t.Token, t.ExpiresAt, t.CreatedAt, t.Revoked,
	); err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// Find returns a refresh token row by its token value.
func (r *RefreshTokenPostgres) Find(ctx context.Context, token string) (*model.RefreshToken, error) {
	const q = `
		SELECT id, user_id, token, expires_at, created_at, revoked
		FROM refresh_tokens
		WHERE token = $1
	`
	var t model.RefreshToken
	if err := r.db.QueryRowContext(ctx, q, token).Scan(
		&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.CreatedAt, &t.Revoked,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

// Revoke marks a token revoked. Unknown tokens are ignored.
func (r *RefreshTokenPostgres) Revoke(ctx context.Context, token string) error {
	const q = `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`
	res, err := r.db.ExecContext(ctx, q, token)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	_, _ = res.RowsAffected()
	return nil
}
