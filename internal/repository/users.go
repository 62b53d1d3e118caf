// Package repository provides PostgreSQL persistence for the dashboard's
// aggregates. Every repository tolerates construction without a database
// handle: operations then fail with apperr.ErrUnavailable so handlers can
// answer 503 uniformly in the degraded no-store mode.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/corpdesk/corpdesk/internal/apperr"
	"github.com/corpdesk/corpdesk/internal/models"
)

// uniqueViolation is the Postgres error code for duplicate unique keys.
const uniqueViolation = "23505"

// PostgresUserRepository implements user persistence against PostgreSQL.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries. May be nil in
	// degraded mode.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the
// given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

const userColumns = `id, name, email, password_hash, role, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var hash string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &hash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.PasswordHash = []byte(hash)
	return &u, nil
}

// GetByEmail fetches a user by unique email.
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if r.DB == nil {
		return nil, apperr.ErrUnavailable
	}
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if r.DB == nil {
		return nil, apperr.ErrUnavailable
	}
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// Create inserts a new user. A duplicate email maps to apperr.ErrConflict.
func (r *PostgresUserRepository) Create(ctx context.Context, u *models.User) error {
	if r.DB == nil {
		return apperr.ErrUnavailable
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Name, u.Email, string(u.PasswordHash), u.Role, u.CreatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: email %s", apperr.ErrConflict, u.Email)
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Update replaces name, email and role for an existing user.
func (r *PostgresUserRepository) Update(ctx context.Context, u *models.User) error {
	if r.DB == nil {
		return apperr.ErrUnavailable
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET name = $2, email = $3, role = $4 WHERE id = $1
	`, u.ID, u.Name, u.Email, u.Role)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: email %s", apperr.ErrConflict, u.Email)
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireRow(res)
}

// UpdatePassword stores a new password hash for the user.
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id string, hash []byte) error {
	if r.DB == nil {
		return apperr.ErrUnavailable
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1`, id, string(hash))
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireRow(res)
}

// Delete removes a user. Hard delete only.
func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	if r.DB == nil {
		return apperr.ErrUnavailable
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireRow(res)
}

// CountAdmins returns the number of admin users, used for first-run seeding.
func (r *PostgresUserRepository) CountAdmins(ctx context.Context) (int, error) {
	if r.DB == nil {
		return 0, apperr.ErrUnavailable
	}
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1`, models.RoleAdmin).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

// requireRow converts a zero-row update/delete into apperr.ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
