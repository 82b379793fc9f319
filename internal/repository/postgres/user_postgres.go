package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"docrepo/internal/model"
	"docrepo/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userSelect = `
	SELECT id, email, password_hash, first_name, last_name, department_id,
	       role, is_active, created_at, updated_at
	FROM users
`

// Create inserts a new user row and returns the stored record.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, email, password_hash, first_name, last_name,
		                   department_id, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if _, err := r.db.ExecContext(ctx, q,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName,
		u.DepartmentID, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	out := *u
	return &out, nil
}

// FindByID fetches a user by id.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, userSelect+` WHERE id = $1`, id))
}

// FindByEmail fetches a user by email.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, userSelect+` WHERE email = $1`, email))
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	var departmentID sql.NullString
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&departmentID,
		&u.Role,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if departmentID.Valid {
		u.DepartmentID = &departmentID.String
	}
	return &u, nil
}
