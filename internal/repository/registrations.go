package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/corpdesk/corpdesk/internal/apperr"
	"github.com/corpdesk/corpdesk/internal/models"
)

// PostgresRegistrationRepository implements registration persistence
// against PostgreSQL. Nested list-of-record fields are stored as JSON text
// and safe-parsed on read.
type PostgresRegistrationRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresRegistrationRepository creates a new repository using the
// provided *sql.DB.
func NewPostgresRegistrationRepository(db *sql.DB) *PostgresRegistrationRepository {
	return &PostgresRegistrationRepository{DB: db}
}

const registrationColumns = `id, current_step, status,
	payment_approved, details_approved, documents_approved, documents_published, documents_acknowledged,
	company_name, company_name_english, company_name_sinhala, company_address,
	contact_person, shareholders, directors,
	package_id, payment_method,
	payment_receipt, balance_payment_receipt, company_documents, customer_documents, incorporation_certificate,
	additional_documents, created_by, created_at, updated_at`

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (*models.Registration, error) {
	var reg models.Registration
	var contactPerson, shareholders, directors string
	var paymentReceipt, balanceReceipt, companyDocs, customerDocs, certificate, additionalDocs string
	err := row.Scan(
		&reg.ID, &reg.CurrentStep, &reg.Status,
		&reg.PaymentApproved, &reg.DetailsApproved, &reg.DocumentsApproved,
		&reg.DocumentsPublished, &reg.DocumentsAcknowledged,
		&reg.CompanyName, &reg.CompanyNameEnglish, &reg.CompanyNameSinhala, &reg.CompanyAddress,
		&contactPerson, &shareholders, &directors,
		&reg.PackageID, &reg.PaymentMethod,
		&paymentReceipt, &balanceReceipt, &companyDocs, &customerDocs, &certificate,
		&additionalDocs, &reg.CreatedBy, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan registration: %w", err)
	}
	reg.ContactPerson = models.ParseJSON[*models.ContactPerson](contactPerson)
	reg.Shareholders = models.ParseJSON[[]models.Shareholder](shareholders)
	reg.Directors = models.ParseJSON[[]models.Director](directors)
	reg.PaymentReceipt = models.ParseJSON[*models.FileReference](paymentReceipt)
	reg.BalancePaymentReceipt = models.ParseJSON[*models.FileReference](balanceReceipt)
	reg.CompanyDocuments = models.ParseJSON[*models.DocumentSet](companyDocs)
	reg.CustomerDocuments = models.ParseJSON[*models.DocumentSet](customerDocs)
	reg.IncorporationCertificate = models.ParseJSON[*models.FileReference](certificate)
	reg.AdditionalDocuments = models.ParseJSON[map[string][]models.FileReference](additionalDocs)
	return &reg, nil
}

// List returns all registrations, newest first.
func (r *PostgresRegistrationRepository) List(ctx context.Context) ([]models.Registration, error) {
	return r.list(ctx, `SELECT `+registrationColumns+` FROM registrations ORDER BY created_at DESC`)
}

// ListByOwner returns the registrations created by the given user.
func (r *PostgresRegistrationRepository) ListByOwner(ctx context.Context, userID string) ([]models.Registration, error) {
	return r.list(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE created_by = $1 ORDER BY created_at DESC`,
		userID)
}

func (r *PostgresRegistrationRepository) list(ctx context.Context, query string, args ...any) ([]models.Registration, error) {
	if r.DB == nil {
		return nil, apperr.ErrUnavailable
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

// GetByID fetches a single registration.
func (r *PostgresRegistrationRepository) GetByID(ctx context.Context, id string) (*models.Registration, error) {
	if r.DB == nil {
		return nil, apperr.ErrUnavailable
	}
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, id)
	return scanRegistration(row)
}

// Create inserts a new registration row.
func (r *PostgresRegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	if r.DB == nil {
		return apperr.ErrUnavailable
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO registrations (
			id, current_step, status,
			payment_approved, details_approved, documents_approved, documents_published, documents_acknowledged,
			company_name, company_name_english, company_name_sinhala, company_address,
			contact_person, shareholders, directors,
			package_id, payment_method,
			payment_receipt, balance_payment_receipt, company_documents, customer_documents, incorporation_certificate,
			additional_documents, created_by, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26
		)
	`, registrationArgs(reg)...)
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

// Update replaces the full row for an existing registration.
func (r *PostgresRegistrationRepository) Update(ctx context.Context, reg *models.Registration) error {
	if r.DB == nil {
		return apperr.ErrUnavailable
	}
	// created_by and created_at are immutable, so the insert arg list is
	// truncated before them and updated_at re-appended as $24.
	args := append(registrationArgs(reg)[:23], reg.UpdatedAt)
	res, err := r.DB.ExecContext(ctx, `
		UPDATE registrations SET
			current_step = $2, status = $3,
			payment_approved = $4, details_approved = $5, documents_approved = $6,
			documents_published = $7, documents_acknowledged = $8,
			company_name = $9, company_name_english = $10, company_name_sinhala = $11, company_address = $12,
			contact_person = $13, shareholders = $14, directors = $15,
			package_id = $16, payment_method = $17,
			payment_receipt = $18, balance_payment_receipt = $19,
			company_documents = $20, customer_documents = $21, incorporation_certificate = $22,
			additional_documents = $23, updated_at = $24
		WHERE id = $1
	`, args...)
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	return requireRow(res)
}

// UpdateBalancePayment stores the balance payment receipt. A rejected
// receipt also moves the case back to the documentation step.
func (r *PostgresRegistrationRepository) UpdateBalancePayment(ctx context.Context, id string, receipt *models.FileReference) error {
	if r.DB == nil {
		return apperr.ErrUnavailable
	}
	var res sql.Result
	var err error
	if receipt != nil && receipt.Status == "rejected" {
		res, err = r.DB.ExecContext(ctx, `
			UPDATE registrations
			   SET balance_payment_receipt = $2,
			       current_step = $3,
			       status = $4,
			       updated_at = $5
			 WHERE id = $1
		`, id, models.MarshalJSONField(receipt),
			models.StepDocumentation, models.StatusDocumentationProcessing, time.Now())
	} else {
		res, err = r.DB.ExecContext(ctx, `
			UPDATE registrations
			   SET balance_payment_receipt = $2,
			       updated_at = $3
			 WHERE id = $1
		`, id, models.MarshalJSONField(receipt), time.Now())
	}
	if err != nil {
		return fmt.Errorf("update balance payment: %w", err)
	}
	return requireRow(res)
}

// UpdateCustomerDocuments stores the customer-signed document set.
func (r *PostgresRegistrationRepository) UpdateCustomerDocuments(ctx context.Context, id string, docs *models.DocumentSet) error {
	if r.DB == nil {
		return apperr.ErrUnavailable
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE registrations SET customer_documents = $2, updated_at = $3 WHERE id = $1
	`, id, models.MarshalJSONField(docs), time.Now())
	if err != nil {
		return fmt.Errorf("update customer documents: %w", err)
	}
	return requireRow(res)
}

// Delete removes a registration row.
func (r *PostgresRegistrationRepository) Delete(ctx context.Context, id string) error {
	if r.DB == nil {
		return apperr.ErrUnavailable
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	return requireRow(res)
}

func registrationArgs(reg *models.Registration) []any {
	return []any{
		reg.ID, reg.CurrentStep, reg.Status,
		reg.PaymentApproved, reg.DetailsApproved, reg.DocumentsApproved,
		reg.DocumentsPublished, reg.DocumentsAcknowledged,
		reg.CompanyName, reg.CompanyNameEnglish, reg.CompanyNameSinhala, reg.CompanyAddress,
		models.MarshalJSONField(reg.ContactPerson),
		models.MarshalJSONField(reg.Shareholders),
		models.MarshalJSONField(reg.Directors),
		reg.PackageID, reg.PaymentMethod,
		models.MarshalJSONField(reg.PaymentReceipt),
		models.MarshalJSONField(reg.BalancePaymentReceipt),
		models.MarshalJSONField(reg.CompanyDocuments),
		models.MarshalJSONField(reg.CustomerDocuments),
		models.MarshalJSONField(reg.IncorporationCertificate),
		models.MarshalJSONField(reg.AdditionalDocuments),
		reg.CreatedBy, reg.CreatedAt, reg.UpdatedAt,
	}
}
