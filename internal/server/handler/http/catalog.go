package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/corpdesk/corpdesk/internal/apperr"
	"github.com/corpdesk/corpdesk/internal/models"
)

// CatalogService defines the interface for catalog operations required by
// the CatalogHandler.
type CatalogService interface {
	ListPackages(ctx context.Context) ([]models.Package, error)
	GetPackage(ctx context.Context, id string) (*models.Package, error)
	ReplacePackages(ctx context.Context, pkgs []models.Package) ([]models.Package, error)
	ListBankDetails(ctx context.Context) ([]models.BankDetail, error)
	ReplaceBankDetails(ctx context.Context, details []models.BankDetail) ([]models.BankDetail, error)
}

// CatalogHandler handles HTTP requests for packages and bank details.
type CatalogHandler struct {
	Catalog CatalogService
	Log     *zap.Logger
}

// ListPackages handles GET /api/packages. Returns a bare array.
func (h *CatalogHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	pkgs, err := h.Catalog.ListPackages(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if pkgs == nil {
		pkgs = []models.Package{}
	}
	writeJSON(w, http.StatusOK, pkgs)
}

// GetPackage handles GET /api/packages/{id}.
func (h *CatalogHandler) GetPackage(w http.ResponseWriter, r *http.Request) {
	pkg, err := h.Catalog.GetPackage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, pkg)
}

// ReplacePackages handles POST and PUT /api/packages: the request body is
// the full new active set, replacing whatever existed.
func (h *CatalogHandler) ReplacePackages(w http.ResponseWriter, r *http.Request) {
	var pkgs []models.Package
	if err := json.NewDecoder(r.Body).Decode(&pkgs); err != nil {
		writeError(w, h.Log, apperr.Validationf("malformed body"))
		return
	}
	saved, err := h.Catalog.ReplacePackages(r.Context(), pkgs)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "packages": saved})
}

// ListBankDetails handles GET /api/bank-details. Returns a bare array.
func (h *CatalogHandler) ListBankDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.Catalog.ListBankDetails(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if details == nil {
		details = []models.BankDetail{}
	}
	writeJSON(w, http.StatusOK, details)
}

// ReplaceBankDetails handles POST and PUT /api/bank-details.
func (h *CatalogHandler) ReplaceBankDetails(w http.ResponseWriter, r *http.Request) {
	var details []models.BankDetail
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		writeError(w, h.Log, apperr.Validationf("malformed body"))
		return
	}
	saved, err := h.Catalog.ReplaceBankDetails(r.Context(), details)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "bankDetails": saved})
}
