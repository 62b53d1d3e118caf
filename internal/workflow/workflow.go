// Package workflow models the registration lifecycle as an explicit
// transition table. Every mutating endpoint runs the requested action
// through Apply before anything is persisted, so an illegal jump
// (e.g. completed back to contact-details) is rejected server-side.
package workflow

import (
	"fmt"

	"github.com/corpdesk/corpdesk/internal/apperr"
	"github.com/corpdesk/corpdesk/internal/models"
)

// Action is a lifecycle event triggered by a customer wizard submission or
// an administrator review decision.
type Action string

const (
	// Customer wizard steps.
	ActionCompleteContactDetails Action = "complete-contact-details"
	ActionCompleteCompanyDetails Action = "complete-company-details"
	ActionCompleteDocumentation  Action = "complete-documentation"

	// Administrator review decisions.
	ActionApprovePayment        Action = "approve-payment"
	ActionRejectPayment         Action = "reject-payment"
	ActionApproveDetails        Action = "approve-details"
	ActionApproveDocuments      Action = "approve-documents"
	ActionPublishDocuments      Action = "publish-documents"
	ActionAcknowledgeDocuments  Action = "acknowledge-documents"
	ActionRejectBalancePayment  Action = "reject-balance-payment"
	ActionCompleteIncorporation Action = "complete-incorporation"
)

// transition describes one row of the table: the states an action is legal
// in, and the resulting status/step/gate changes. A nil newStatus or
// newStep leaves the field unchanged.
type transition struct {
	fromStatus []models.Status
	fromStep   []models.Step
	newStatus  models.Status
	newStep    models.Step
	apply      func(r *models.Registration)
}

var transitions = map[Action]transition{
	ActionCompleteContactDetails: {
		fromStatus: []models.Status{models.StatusPaymentProcessing, models.StatusDocumentationProcessing},
		fromStep:   []models.Step{models.StepContactDetails},
		newStep:    models.StepCompanyDetails,
	},
	ActionCompleteCompanyDetails: {
		fromStatus: []models.Status{models.StatusPaymentProcessing, models.StatusDocumentationProcessing},
		fromStep:   []models.Step{models.StepCompanyDetails},
		newStep:    models.StepDocumentation,
	},
	ActionCompleteDocumentation: {
		fromStatus: []models.Status{models.StatusDocumentationProcessing},
		fromStep:   []models.Step{models.StepDocumentation},
		newStatus:  models.StatusIncorporationProcessing,
		newStep:    models.StepIncorporate,
	},
	ActionApprovePayment: {
		fromStatus: []models.Status{models.StatusPaymentProcessing},
		newStatus:  models.StatusDocumentationProcessing,
		apply:      func(r *models.Registration) { r.PaymentApproved = true },
	},
	ActionRejectPayment: {
		fromStatus: []models.Status{models.StatusPaymentProcessing},
		newStatus:  models.StatusPaymentRejected,
	},
	ActionApproveDetails: {
		fromStatus: []models.Status{models.StatusDocumentationProcessing},
		apply:      func(r *models.Registration) { r.DetailsApproved = true },
	},
	ActionApproveDocuments: {
		fromStatus: []models.Status{models.StatusDocumentationProcessing, models.StatusIncorporationProcessing},
		apply:      func(r *models.Registration) { r.DocumentsApproved = true },
	},
	ActionPublishDocuments: {
		fromStatus: []models.Status{models.StatusIncorporationProcessing},
		apply:      func(r *models.Registration) { r.DocumentsPublished = true },
	},
	ActionAcknowledgeDocuments: {
		fromStatus: []models.Status{models.StatusIncorporationProcessing},
		apply:      func(r *models.Registration) { r.DocumentsAcknowledged = true },
	},
	ActionRejectBalancePayment: {
		fromStatus: []models.Status{models.StatusIncorporationProcessing},
		newStatus:  models.StatusDocumentationProcessing,
		newStep:    models.StepDocumentation,
	},
	ActionCompleteIncorporation: {
		fromStatus: []models.Status{models.StatusIncorporationProcessing},
		newStatus:  models.StatusCompleted,
	},
}

// Apply validates action against the registration's current status and
// step, and mutates the registration on success. payment-rejected and
// completed are terminal: no action is legal in them (deletion of a
// rejected case is a separate operation, not a transition).
func Apply(r *models.Registration, action Action) error {
	t, ok := transitions[action]
	if !ok {
		return apperr.Validationf("unknown action %q", action)
	}
	if r.Status == models.StatusPaymentRejected || r.Status == models.StatusCompleted {
		return invalid(r, action)
	}
	if !contains(t.fromStatus, r.Status) {
		return invalid(r, action)
	}
	if len(t.fromStep) > 0 && !containsStep(t.fromStep, r.CurrentStep) {
		return invalid(r, action)
	}
	if t.newStatus != "" {
		r.Status = t.newStatus
	}
	if t.newStep != "" {
		r.CurrentStep = t.newStep
	}
	if t.apply != nil {
		t.apply(r)
	}
	return nil
}

// ValidStepChange reports whether a direct update may move the wizard from
// oldStep to newStep. Steps only advance forward, one stage at a time;
// staying put is always allowed.
func ValidStepChange(oldStep, newStep models.Step) bool {
	oi, ni := models.StepIndex(oldStep), models.StepIndex(newStep)
	if oi < 0 || ni < 0 {
		return false
	}
	return ni == oi || ni == oi+1
}

func invalid(r *models.Registration, action Action) error {
	return fmt.Errorf("%w: action %q not allowed in status %q step %q",
		apperr.ErrValidation, action, r.Status, r.CurrentStep)
}

func contains(list []models.Status, s models.Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsStep(list []models.Step, s models.Step) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
