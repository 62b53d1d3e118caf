package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/corpdesk/corpdesk/internal/apperr"
	"github.com/corpdesk/corpdesk/internal/models"
)

// CatalogRepository defines the persistence operations required by the
// catalog service.
type CatalogRepository interface {
	ListPackages(ctx context.Context) ([]models.Package, error)
	GetPackage(ctx context.Context, id string) (*models.Package, error)
	ReplacePackages(ctx context.Context, pkgs []models.Package) error
	ListBankDetails(ctx context.Context) ([]models.BankDetail, error)
	ReplaceBankDetails(ctx context.Context, details []models.BankDetail) error
}

// CatalogService validates and persists the package offerings and bank
// payment instructions shown to customers.
type CatalogService struct {
	repo CatalogRepository
}

// NewCatalogService constructs a CatalogService using the provided
// repository.
func NewCatalogService(repo CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// ListPackages returns the active package offerings.
func (s *CatalogService) ListPackages(ctx context.Context) ([]models.Package, error) {
	return s.repo.ListPackages(ctx)
}

// GetPackage fetches one package by id.
func (s *CatalogService) GetPackage(ctx context.Context, id string) (*models.Package, error) {
	return s.repo.GetPackage(ctx, id)
}

// ReplacePackages swaps the active package set. After the call GET returns
// exactly the given set regardless of what existed before.
func (s *CatalogService) ReplacePackages(ctx context.Context, pkgs []models.Package) ([]models.Package, error) {
	for i := range pkgs {
		if strings.TrimSpace(pkgs[i].Name) == "" {
			return nil, apperr.Validationf("package name is required")
		}
		if pkgs[i].ID == "" {
			pkgs[i].ID = uuid.NewString()
		}
		pkgs[i].IsActive = true
	}
	if err := s.repo.ReplacePackages(ctx, pkgs); err != nil {
		return nil, err
	}
	return pkgs, nil
}

// ListBankDetails returns the active bank payment instructions.
func (s *CatalogService) ListBankDetails(ctx context.Context) ([]models.BankDetail, error) {
	return s.repo.ListBankDetails(ctx)
}

// ReplaceBankDetails swaps the active bank detail set.
func (s *CatalogService) ReplaceBankDetails(ctx context.Context, details []models.BankDetail) ([]models.BankDetail, error) {
	for i := range details {
		if strings.TrimSpace(details[i].BankName) == "" {
			return nil, apperr.Validationf("bankName is required")
		}
		if details[i].ID == "" {
			details[i].ID = uuid.NewString()
		}
		details[i].IsActive = true
	}
	if err := s.repo.ReplaceBankDetails(ctx, details); err != nil {
		return nil, err
	}
	return details, nil
}
