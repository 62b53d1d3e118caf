package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/corpdesk/corpdesk/internal/apperr"
	"github.com/corpdesk/corpdesk/internal/models"
)

func setupRegistrationMock(t *testing.T) (*PostgresRegistrationRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresRegistrationRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

var registrationCols = []string{
	"id", "current_step", "status",
	"payment_approved", "details_approved", "documents_approved", "documents_published", "documents_acknowledged",
	"company_name", "company_name_english", "company_name_sinhala", "company_address",
	"contact_person", "shareholders", "directors",
	"package_id", "payment_method",
	"payment_receipt", "balance_payment_receipt", "company_documents", "customer_documents", "incorporation_certificate",
	"additional_documents", "created_by", "created_at", "updated_at",
}

func sampleRegistration() *models.Registration {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &models.Registration{
		ID:          "r1",
		CurrentStep: models.StepContactDetails,
		Status:      models.StatusPaymentProcessing,
		CompanyName: "Acme Lanka (Pvt) Ltd",
		ContactPerson: &models.ContactPerson{
			Name: "Nimal Perera", Email: "nimal@acme.lk", Phone: "0771234567",
		},
		Shareholders: []models.Shareholder{
			{Name: "Nimal Perera", NIC: "851234567V", Shares: 100},
		},
		Directors: []models.Director{
			{Name: "Kamala Silva", NIC: "907654321V"},
		},
		PaymentReceipt: &models.FileReference{
			ID: "f1", Name: "receipt.pdf", Type: "application/pdf", Size: 1024,
			URL: "/uploads/documents/f1.pdf",
		},
		CreatedBy: "u1",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func registrationRow(reg *models.Registration) *sqlmock.Rows {
	return sqlmock.NewRows(registrationCols).AddRow(
		reg.ID, string(reg.CurrentStep), string(reg.Status),
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
	)
}

func TestRegistrationGetByID_RoundTrip(t *testing.T) {
	repo, mock, cleanup := setupRegistrationMock(t)
	defer cleanup()

	want := sampleRegistration()
	mock.ExpectQuery(`SELECT id, current_step, status`).
		WithArgs("r1").
		WillReturnRows(registrationRow(want))

	got, err := repo.GetByID(context.Background(), "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CompanyName != want.CompanyName {
		t.Errorf("companyName = %q; want %q", got.CompanyName, want.CompanyName)
	}
	if got.ContactPerson == nil || got.ContactPerson.Name != "Nimal Perera" {
		t.Errorf("contactPerson not round-tripped: %+v", got.ContactPerson)
	}
	if len(got.Shareholders) != 1 || got.Shareholders[0].Shares != 100 {
		t.Errorf("shareholders not round-tripped: %+v", got.Shareholders)
	}
	if len(got.Directors) != 1 || got.Directors[0].NIC != "907654321V" {
		t.Errorf("directors not round-tripped: %+v", got.Directors)
	}
	if got.PaymentReceipt == nil || got.PaymentReceipt.ID != "f1" || got.PaymentReceipt.Size != 1024 {
		t.Errorf("paymentReceipt not round-tripped: %+v", got.PaymentReceipt)
	}
	if got.BalancePaymentReceipt != nil || got.CompanyDocuments != nil {
		t.Errorf("unset fields should stay nil: %+v %+v", got.BalancePaymentReceipt, got.CompanyDocuments)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestRegistrationGetByID_SurvivesDoubleSerializedRows(t *testing.T) {
	repo, mock, cleanup := setupRegistrationMock(t)
	defer cleanup()

	reg := sampleRegistration()
	rows := sqlmock.NewRows(registrationCols).AddRow(
		reg.ID, string(reg.CurrentStep), string(reg.Status),
		false, false, false, false, false,
		reg.CompanyName, "", "", "",
		"[object Object]", "[object Array]", "not json at all",
		"", "", "", "", "", "", "", "",
		reg.CreatedBy, reg.CreatedAt, reg.UpdatedAt,
	)
	mock.ExpectQuery(`SELECT id, current_step, status`).
		WithArgs("r1").
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ContactPerson != nil || got.Shareholders != nil || got.Directors != nil {
		t.Errorf("corrupt nested fields must decode to nil, got %+v", got)
	}
}

func TestRegistrationGetByID_NotFound(t *testing.T) {
	repo, mock, cleanup := setupRegistrationMock(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT id, current_step, status`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(registrationCols))

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRegistrationCreate(t *testing.T) {
	repo, mock, cleanup := setupRegistrationMock(t)
	defer cleanup()

	reg := sampleRegistration()
	mock.ExpectExec(`INSERT INTO registrations`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), reg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestRegistrationUpdate(t *testing.T) {
	repo, mock, cleanup := setupRegistrationMock(t)
	defer cleanup()

	reg := sampleRegistration()
	reg.CurrentStep = models.StepCompanyDetails
	reg.DetailsApproved = true

	// Every bound parameter must be referenced in the statement: created_by
	// and created_at never change, so the arg list ends at updated_at ($24).
	mock.ExpectExec(`(?s)UPDATE registrations SET.*additional_documents = \$23, updated_at = \$24\s+WHERE id = \$1`).
		WithArgs(
			reg.ID, string(reg.CurrentStep), string(reg.Status),
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
			reg.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Update(context.Background(), reg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestRegistrationUpdate_NotFound(t *testing.T) {
	repo, mock, cleanup := setupRegistrationMock(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE registrations SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Update(context.Background(), sampleRegistration()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateBalancePayment_Rejected(t *testing.T) {
	repo, mock, cleanup := setupRegistrationMock(t)
	defer cleanup()

	receipt := &models.FileReference{ID: "f9", Name: "balance.pdf", Status: "rejected"}
	mock.ExpectExec(`UPDATE registrations`).
		WithArgs("r1", models.MarshalJSONField(receipt),
			string(models.StepDocumentation), string(models.StatusDocumentationProcessing), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateBalancePayment(context.Background(), "r1", receipt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpdateBalancePayment_Pending(t *testing.T) {
	repo, mock, cleanup := setupRegistrationMock(t)
	defer cleanup()

	receipt := &models.FileReference{ID: "f9", Name: "balance.pdf"}
	mock.ExpectExec(`UPDATE registrations`).
		WithArgs("r1", models.MarshalJSONField(receipt), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateBalancePayment(context.Background(), "r1", receipt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegistrationDelete_NotFound(t *testing.T) {
	repo, mock, cleanup := setupRegistrationMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM registrations WHERE id = $1`)).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRegistrations_DegradedMode(t *testing.T) {
	repo := NewPostgresRegistrationRepository(nil)
	ctx := context.Background()

	if _, err := repo.List(ctx); !errors.Is(err, apperr.ErrUnavailable) {
		t.Errorf("List: expected ErrUnavailable, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "r1"); !errors.Is(err, apperr.ErrUnavailable) {
		t.Errorf("GetByID: expected ErrUnavailable, got %v", err)
	}
	if err := repo.Create(ctx, sampleRegistration()); !errors.Is(err, apperr.ErrUnavailable) {
		t.Errorf("Create: expected ErrUnavailable, got %v", err)
	}
}
