package service

import (
	"context"
	"errors"

	"github.com/corpdesk/corpdesk/internal/apperr"
	"github.com/corpdesk/corpdesk/internal/models"
)

// SettingsRepository defines the persistence operations required by the
// settings service.
type SettingsRepository interface {
	Get(ctx context.Context) (*models.Settings, error)
	Upsert(ctx context.Context, s *models.Settings) error
}

// SettingsService manages the singleton site settings record.
type SettingsService struct {
	repo SettingsRepository
}

// NewSettingsService constructs a SettingsService using the provided
// repository.
func NewSettingsService(repo SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

// Get returns the settings row. Before the first write it returns an
// empty record with the fixed id rather than 404, so the dashboard always
// has something to render.
func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	settings, err := s.repo.Get(ctx)
	if errors.Is(err, apperr.ErrNotFound) {
		return &models.Settings{ID: models.SettingsID}, nil
	}
	return settings, err
}

// Update upserts the settings row.
func (s *SettingsService) Update(ctx context.Context, settings *models.Settings) (*models.Settings, error) {
	settings.ID = models.SettingsID
	if err := s.repo.Upsert(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
