package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/corpdesk/corpdesk/internal/apperr"
	"github.com/corpdesk/corpdesk/internal/models"
)

func setupSettingsMock(t *testing.T) (*PostgresSettingsRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresSettingsRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func TestSettingsGet(t *testing.T) {
	repo, mock, cleanup := setupSettingsMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "title", "description", "logo_url", "favicon_url", "primary_color", "secondary_color"}).
		AddRow(models.SettingsID, "CorpDesk", "Company incorporation", "", "", "#112233", "#445566")
	mock.ExpectQuery(`SELECT id, title, description`).
		WithArgs(models.SettingsID).
		WillReturnRows(rows)

	s, err := repo.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Title != "CorpDesk" || s.PrimaryColor != "#112233" {
		t.Errorf("unexpected settings: %+v", s)
	}
}

func TestSettingsGet_NeverWritten(t *testing.T) {
	repo, mock, cleanup := setupSettingsMock(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT id, title, description`).
		WithArgs(models.SettingsID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.Get(context.Background()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSettingsUpsert(t *testing.T) {
	repo, mock, cleanup := setupSettingsMock(t)
	defer cleanup()

	mock.ExpectExec(`INSERT INTO settings`).
		WithArgs(models.SettingsID, "CorpDesk", "desc", "", "", "#112233", "#445566").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), &models.Settings{
		Title: "CorpDesk", Description: "desc",
		PrimaryColor: "#112233", SecondaryColor: "#445566",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSettings_DegradedMode(t *testing.T) {
	repo := NewPostgresSettingsRepository(nil)
	ctx := context.Background()

	if _, err := repo.Get(ctx); !errors.Is(err, apperr.ErrUnavailable) {
		t.Errorf("Get: expected ErrUnavailable, got %v", err)
	}
	if err := repo.Upsert(ctx, &models.Settings{}); !errors.Is(err, apperr.ErrUnavailable) {
		t.Errorf("Upsert: expected ErrUnavailable, got %v", err)
	}
}
