package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corpdesk/corpdesk/internal/apperr"
	"github.com/corpdesk/corpdesk/internal/models"
	"github.com/corpdesk/corpdesk/internal/workflow"
)

// RegistrationRepository defines the persistence operations required by
// the registration service.
type RegistrationRepository interface {
	List(ctx context.Context) ([]models.Registration, error)
	ListByOwner(ctx context.Context, userID string) ([]models.Registration, error)
	GetByID(ctx context.Context, id string) (*models.Registration, error)
	Create(ctx context.Context, reg *models.Registration) error
	Update(ctx context.Context, reg *models.Registration) error
	UpdateBalancePayment(ctx context.Context, id string, receipt *models.FileReference) error
	UpdateCustomerDocuments(ctx context.Context, id string, docs *models.DocumentSet) error
	Delete(ctx context.Context, id string) error
}

// FileRemover is the slice of the file store the registration service
// needs for cascade cleanup.
type FileRemover interface {
	Delete(ctx context.Context, id string) error
}

// Caller identifies the authenticated user performing an operation.
type Caller struct {
	UserID string
	Role   models.Role
}

// Admin reports whether the caller holds the admin role.
func (c Caller) Admin() bool { return c.Role == models.RoleAdmin }

// RegistrationService owns the registration lifecycle. Every status or
// step change passes through the workflow transition table before it is
// persisted.
type RegistrationService struct {
	repo  RegistrationRepository
	files FileRemover
	log   *zap.Logger
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(repo RegistrationRepository, files FileRemover, log *zap.Logger) *RegistrationService {
	return &RegistrationService{repo: repo, files: files, log: log}
}

// List returns the registrations visible to the caller: all of them for
// admins, only their own for customers.
func (s *RegistrationService) List(ctx context.Context, caller Caller) ([]models.Registration, error) {
	if caller.Admin() {
		return s.repo.List(ctx)
	}
	return s.repo.ListByOwner(ctx, caller.UserID)
}

// Get fetches one registration, enforcing ownership for customers.
func (s *RegistrationService) Get(ctx context.Context, caller Caller, id string) (*models.Registration, error) {
	reg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Admin() && reg.CreatedBy != caller.UserID {
		return nil, apperr.ErrForbidden
	}
	return reg, nil
}

// Create opens a new incorporation case. The client may supply an id;
// step and status always start at the beginning of the lifecycle.
func (s *RegistrationService) Create(ctx context.Context, caller Caller, reg *models.Registration) (*models.Registration, error) {
	if strings.TrimSpace(reg.CompanyName) == "" {
		return nil, apperr.Validationf("companyName is required")
	}
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	reg.CurrentStep = models.StepContactDetails
	reg.Status = models.StatusPaymentProcessing
	reg.PaymentApproved = false
	reg.DetailsApproved = false
	reg.DocumentsApproved = false
	reg.DocumentsPublished = false
	reg.DocumentsAcknowledged = false
	reg.CreatedBy = caller.UserID
	now := time.Now()
	reg.CreatedAt = now
	reg.UpdatedAt = now
	if err := s.repo.Create(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// Update replaces a registration's content fields. Step changes must move
// forward through the wizard; status changes are reserved for workflow
// actions and rejected here.
func (s *RegistrationService) Update(ctx context.Context, caller Caller, id string, incoming *models.Registration) (*models.Registration, error) {
	existing, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if incoming.CurrentStep != "" && incoming.CurrentStep != existing.CurrentStep {
		if !workflow.ValidStepChange(existing.CurrentStep, incoming.CurrentStep) {
			return nil, apperr.Validationf("cannot move step from %q to %q",
				existing.CurrentStep, incoming.CurrentStep)
		}
		existing.CurrentStep = incoming.CurrentStep
	}
	if incoming.Status != "" && incoming.Status != existing.Status {
		return nil, apperr.Validationf("status changes require a workflow action")
	}

	existing.CompanyName = incoming.CompanyName
	existing.CompanyNameEnglish = incoming.CompanyNameEnglish
	existing.CompanyNameSinhala = incoming.CompanyNameSinhala
	existing.CompanyAddress = incoming.CompanyAddress
	existing.ContactPerson = incoming.ContactPerson
	existing.Shareholders = incoming.Shareholders
	existing.Directors = incoming.Directors
	existing.PackageID = incoming.PackageID
	existing.PaymentMethod = incoming.PaymentMethod
	existing.PaymentReceipt = incoming.PaymentReceipt
	existing.CompanyDocuments = incoming.CompanyDocuments
	existing.IncorporationCertificate = incoming.IncorporationCertificate
	existing.AdditionalDocuments = incoming.AdditionalDocuments
	existing.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// ApplyAction runs a workflow action against a registration. Customer
// actions are limited to wizard submissions; review decisions require the
// admin role.
func (s *RegistrationService) ApplyAction(ctx context.Context, caller Caller, id string, action workflow.Action) (*models.Registration, error) {
	reg, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if adminOnlyActions[action] && !caller.Admin() {
		return nil, apperr.ErrForbidden
	}
	if err := workflow.Apply(reg, action); err != nil {
		return nil, err
	}
	reg.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

var adminOnlyActions = map[workflow.Action]bool{
	workflow.ActionApprovePayment:        true,
	workflow.ActionRejectPayment:         true,
	workflow.ActionApproveDetails:        true,
	workflow.ActionApproveDocuments:      true,
	workflow.ActionPublishDocuments:      true,
	workflow.ActionRejectBalancePayment:  true,
	workflow.ActionCompleteIncorporation: true,
}

// UpdateBalancePayment stores the balance payment receipt. A rejected
// receipt moves the case back to the documentation step; that conditional
// update happens in one statement at the repository.
func (s *RegistrationService) UpdateBalancePayment(ctx context.Context, caller Caller, id string, receipt *models.FileReference) (*models.Registration, error) {
	if receipt == nil {
		return nil, apperr.Validationf("balancePaymentReceipt is required")
	}
	if _, err := s.Get(ctx, caller, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateBalancePayment(ctx, id, receipt); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// UpdateCustomerDocuments stores the customer-signed document set.
func (s *RegistrationService) UpdateCustomerDocuments(ctx context.Context, caller Caller, id string, docs *models.DocumentSet) (*models.Registration, error) {
	if docs == nil {
		return nil, apperr.Validationf("customerDocuments is required")
	}
	if _, err := s.Get(ctx, caller, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateCustomerDocuments(ctx, id, docs); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Delete cancels a registration. Customers may only cancel their own
// payment-rejected cases; admins may delete any. Referenced files are
// cleaned up best-effort: a failed file delete logs a warning and never
// blocks removal of the case itself.
func (s *RegistrationService) Delete(ctx context.Context, caller Caller, id string) error {
	reg, err := s.Get(ctx, caller, id)
	if err != nil {
		return err
	}
	if !caller.Admin() && reg.Status != models.StatusPaymentRejected {
		return fmt.Errorf("%w: only rejected registrations can be cancelled", apperr.ErrForbidden)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	for _, ref := range reg.FileReferences() {
		if ref.ID == "" {
			continue
		}
		if err := s.files.Delete(ctx, ref.ID); err != nil {
			s.log.Warn("failed to delete attachment during cascade",
				zap.String("registration", id),
				zap.String("file", ref.ID),
				zap.Error(err))
		}
	}
	return nil
}
