package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/corpdesk/corpdesk/internal/apperr"
	"github.com/corpdesk/corpdesk/internal/middleware"
	"github.com/corpdesk/corpdesk/internal/models"
	"github.com/corpdesk/corpdesk/internal/service"
	"github.com/corpdesk/corpdesk/internal/workflow"
)

// RegistrationService defines the interface for registration operations
// required by the RegistrationHandler.
type RegistrationService interface {
	List(ctx context.Context, caller service.Caller) ([]models.Registration, error)
	Get(ctx context.Context, caller service.Caller, id string) (*models.Registration, error)
	Create(ctx context.Context, caller service.Caller, reg *models.Registration) (*models.Registration, error)
	Update(ctx context.Context, caller service.Caller, id string, reg *models.Registration) (*models.Registration, error)
	ApplyAction(ctx context.Context, caller service.Caller, id string, action workflow.Action) (*models.Registration, error)
	UpdateBalancePayment(ctx context.Context, caller service.Caller, id string, receipt *models.FileReference) (*models.Registration, error)
	UpdateCustomerDocuments(ctx context.Context, caller service.Caller, id string, docs *models.DocumentSet) (*models.Registration, error)
	Delete(ctx context.Context, caller service.Caller, id string) error
}

// RegistrationHandler handles HTTP requests for incorporation cases.
type RegistrationHandler struct {
	Registrations RegistrationService
	Log           *zap.Logger
}

func callerFrom(r *http.Request) service.Caller {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		return service.Caller{}
	}
	return service.Caller{UserID: claims.Subject, Role: claims.Role}
}

// List handles GET /api/registrations. Returns a bare array: all cases for
// admins, the caller's own for customers.
func (h *RegistrationHandler) List(w http.ResponseWriter, r *http.Request) {
	regs, err := h.Registrations.List(r.Context(), callerFrom(r))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if regs == nil {
		regs = []models.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// Get handles GET /api/registrations/{id}.
func (h *RegistrationHandler) Get(w http.ResponseWriter, r *http.Request) {
	reg, err := h.Registrations.Get(r.Context(), callerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// Create handles POST /api/registrations.
func (h *RegistrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeError(w, h.Log, apperr.Validationf("malformed body"))
		return
	}
	created, err := h.Registrations.Create(r.Context(), callerFrom(r), &reg)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": created.ID, "registration": created})
}

// Update handles PUT /api/registrations/{id}.
func (h *RegistrationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeError(w, h.Log, apperr.Validationf("malformed body"))
		return
	}
	updated, err := h.Registrations.Update(r.Context(), callerFrom(r), chi.URLParam(r, "id"), &reg)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "registration": updated})
}

// Action handles POST /api/registrations/{id}/actions, advancing the case
// through the workflow transition table.
func (h *RegistrationHandler) Action(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action workflow.Action `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Action == "" {
		writeError(w, h.Log, apperr.Validationf("action is required"))
		return
	}
	updated, err := h.Registrations.ApplyAction(r.Context(), callerFrom(r), chi.URLParam(r, "id"), req.Action)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "registration": updated})
}

// BalancePayment handles PUT /api/registrations/{id}/balance-payment.
func (h *RegistrationHandler) BalancePayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BalancePaymentReceipt *models.FileReference `json:"balancePaymentReceipt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.Log, apperr.Validationf("malformed body"))
		return
	}
	updated, err := h.Registrations.UpdateBalancePayment(r.Context(), callerFrom(r), chi.URLParam(r, "id"), req.BalancePaymentReceipt)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "registration": updated})
}

// CustomerDocuments handles PUT /api/registrations/{id}/customer-documents.
func (h *RegistrationHandler) CustomerDocuments(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerDocuments *models.DocumentSet `json:"customerDocuments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.Log, apperr.Validationf("malformed body"))
		return
	}
	updated, err := h.Registrations.UpdateCustomerDocuments(r.Context(), callerFrom(r), chi.URLParam(r, "id"), req.CustomerDocuments)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "registration": updated})
}

// Delete handles DELETE /api/registrations/{id}.
func (h *RegistrationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Registrations.Delete(r.Context(), callerFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
