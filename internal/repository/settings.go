package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/corpdesk/corpdesk/internal/apperr"
	"github.com/corpdesk/corpdesk/internal/models"
)

// PostgresSettingsRepository persists the singleton site settings row.
type PostgresSettingsRepository struct {
	// DB is the database handle for executing queries. May be nil in
	// degraded mode.
	DB *sql.DB
}

// NewPostgresSettingsRepository creates a new repository using the
// provided *sql.DB.
func NewPostgresSettingsRepository(db *sql.DB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{DB: db}
}

// Get returns the settings row, or apperr.ErrNotFound when it has never
// been written.
func (r *PostgresSettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	if r.DB == nil {
		return nil, apperr.ErrUnavailable
	}
	var s models.Settings
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, title, description, logo_url, favicon_url, primary_color, secondary_color
		  FROM settings WHERE id = $1
	`, models.SettingsID).Scan(&s.ID, &s.Title, &s.Description,
		&s.LogoURL, &s.FaviconURL, &s.PrimaryColor, &s.SecondaryColor)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &s, nil
}

// Upsert writes the settings row, inserting it on first use.
func (r *PostgresSettingsRepository) Upsert(ctx context.Context, s *models.Settings) error {
	if r.DB == nil {
		return apperr.ErrUnavailable
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO settings (id, title, description, logo_url, favicon_url, primary_color, secondary_color)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			logo_url = EXCLUDED.logo_url,
			favicon_url = EXCLUDED.favicon_url,
			primary_color = EXCLUDED.primary_color,
			secondary_color = EXCLUDED.secondary_color
	`, models.SettingsID, s.Title, s.Description, s.LogoURL, s.FaviconURL,
		s.PrimaryColor, s.SecondaryColor)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}
