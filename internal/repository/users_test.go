package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/corpdesk/corpdesk/internal/apperr"
	"github.com/corpdesk/corpdesk/internal/models"
)

func setupUserMock(t *testing.T) (*PostgresUserRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresUserRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func userRows(u *models.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at"}).
		AddRow(u.ID, u.Name, u.Email, string(u.PasswordHash), string(u.Role), u.CreatedAt)
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	want := &models.User{ID: "u1", Name: "Alice", Email: "alice@example.com",
		PasswordHash: []byte("hash"), Role: models.RoleCustomer, CreatedAt: time.Now()}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, email, password_hash, role, created_at FROM users WHERE email = $1`)).
		WithArgs(want.Email).
		WillReturnRows(userRows(want))

	got, err := repo.GetByEmail(context.Background(), want.Email)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != want.ID || got.Email != want.Email || string(got.PasswordHash) != "hash" {
		t.Errorf("got %+v; want %+v", got, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, email, password_hash, role, created_at FROM users WHERE email = $1`)).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at"}))

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (id, name, email, password_hash, role, created_at)`)).
		WithArgs("u1", "Bob", "bob@example.com", "hash", "customer", sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: uniqueViolation})

	err := repo.Create(context.Background(), &models.User{
		ID: "u1", Name: "Bob", Email: "bob@example.com",
		PasswordHash: []byte("hash"), Role: models.RoleCustomer,
	})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreateUser_Success(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (id, name, email, password_hash, role, created_at)`)).
		WithArgs("u2", "Carol", "carol@example.com", "hash", "admin", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), &models.User{
		ID: "u2", Name: "Carol", Email: "carol@example.com",
		PasswordHash: []byte("hash"), Role: models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdatePassword_NotFound(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET password_hash = $2 WHERE id = $1`)).
		WithArgs("missing", "newhash").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePassword(context.Background(), "missing", []byte("newhash"))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUsers_DegradedMode(t *testing.T) {
	repo := NewPostgresUserRepository(nil)
	ctx := context.Background()

	if _, err := repo.GetByEmail(ctx, "a@b.c"); !errors.Is(err, apperr.ErrUnavailable) {
		t.Errorf("GetByEmail: expected ErrUnavailable, got %v", err)
	}
	if err := repo.Create(ctx, &models.User{}); !errors.Is(err, apperr.ErrUnavailable) {
		t.Errorf("Create: expected ErrUnavailable, got %v", err)
	}
	if _, err := repo.CountAdmins(ctx); !errors.Is(err, apperr.ErrUnavailable) {
		t.Errorf("CountAdmins: expected ErrUnavailable, got %v", err)
	}
}
