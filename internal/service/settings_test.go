package service

import (
	"context"
	"errors"
	"testing"

	"github.com/corpdesk/corpdesk/internal/apperr"
	"github.com/corpdesk/corpdesk/internal/models"
)

type fakeSettingsRepo struct {
	stored *models.Settings
	err    error
}

func (f *fakeSettingsRepo) Get(ctx context.Context) (*models.Settings, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.stored == nil {
		return nil, apperr.ErrNotFound
	}
	return f.stored, nil
}

func (f *fakeSettingsRepo) Upsert(ctx context.Context, s *models.Settings) error {
	if f.err != nil {
		return f.err
	}
	f.stored = s
	return nil
}

func TestSettingsGet_BeforeFirstWrite(t *testing.T) {
	svc := NewSettingsService(&fakeSettingsRepo{})

	// The singleton always exists from the dashboard's point of view: an
	// empty record with the fixed id, never a 404.
	s, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ID != models.SettingsID {
		t.Errorf("id = %q; want %q", s.ID, models.SettingsID)
	}
	if s.Title != "" || s.PrimaryColor != "" {
		t.Errorf("expected empty record, got %+v", s)
	}
}

func TestSettingsUpdate_ThenGet(t *testing.T) {
	repo := &fakeSettingsRepo{}
	svc := NewSettingsService(repo)
	ctx := context.Background()

	saved, err := svc.Update(ctx, &models.Settings{ID: "spoofed", Title: "CorpDesk"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if saved.ID != models.SettingsID {
		t.Errorf("id = %q; want the fixed singleton id", saved.ID)
	}

	got, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "CorpDesk" {
		t.Errorf("title = %q; want CorpDesk", got.Title)
	}
}

func TestSettings_DegradedStore(t *testing.T) {
	svc := NewSettingsService(&fakeSettingsRepo{err: apperr.ErrUnavailable})

	if _, err := svc.Get(context.Background()); !errors.Is(err, apperr.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
