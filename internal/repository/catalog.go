package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/corpdesk/corpdesk/internal/apperr"
	"github.com/corpdesk/corpdesk/internal/models"
)

// PostgresCatalogRepository persists the priced package offerings and the
// static bank payment instructions. Replacing the active set runs inside a
// single transaction: deactivate everything, then upsert the new rows, so a
// crash mid-sequence cannot leave a half-replaced catalog.
type PostgresCatalogRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresCatalogRepository creates a new repository using the provided
// *sql.DB.
func NewPostgresCatalogRepository(db *sql.DB) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{DB: db}
}

// ListPackages returns the active packages.
func (r *PostgresCatalogRepository) ListPackages(ctx context.Context) ([]models.Package, error) {
	if r.DB == nil {
		return nil, apperr.ErrUnavailable
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, description, price, advance_amount, balance_amount, features, is_active
		  FROM packages WHERE is_active = true ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()

	var pkgs []models.Package
	for rows.Next() {
		var p models.Package
		var features string
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price,
			&p.AdvanceAmount, &p.BalanceAmount, &features, &p.IsActive); err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		p.Features = models.ParseJSON[[]string](features)
		pkgs = append(pkgs, p)
	}
	return pkgs, rows.Err()
}

// GetPackage fetches a single package by id, active or not.
func (r *PostgresCatalogRepository) GetPackage(ctx context.Context, id string) (*models.Package, error) {
	if r.DB == nil {
		return nil, apperr.ErrUnavailable
	}
	var p models.Package
	var features string
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, name, description, price, advance_amount, balance_amount, features, is_active
		  FROM packages WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Description, &p.Price,
		&p.AdvanceAmount, &p.BalanceAmount, &features, &p.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get package: %w", err)
	}
	p.Features = models.ParseJSON[[]string](features)
	return &p, nil
}

// ReplacePackages deactivates every package and upserts the new active set
// within a transaction.
func (r *PostgresCatalogRepository) ReplacePackages(ctx context.Context, pkgs []models.Package) error {
	if r.DB == nil {
		return apperr.ErrUnavailable
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE packages SET is_active = false`); err != nil {
		return fmt.Errorf("deactivate packages: %w", err)
	}
	for _, p := range pkgs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO packages (id, name, description, price, advance_amount, balance_amount, features, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, true)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				price = EXCLUDED.price,
				advance_amount = EXCLUDED.advance_amount,
				balance_amount = EXCLUDED.balance_amount,
				features = EXCLUDED.features,
				is_active = true
		`, p.ID, p.Name, p.Description, p.Price, p.AdvanceAmount, p.BalanceAmount,
			models.MarshalJSONField(p.Features))
		if err != nil {
			return fmt.Errorf("upsert package: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListBankDetails returns the active bank payment instructions.
func (r *PostgresCatalogRepository) ListBankDetails(ctx context.Context) ([]models.BankDetail, error) {
	if r.DB == nil {
		return nil, apperr.ErrUnavailable
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, bank_name, account_name, account_number, branch, swift_code, additional_instructions, is_active
		  FROM bank_details WHERE is_active = true ORDER BY bank_name
	`)
	if err != nil {
		return nil, fmt.Errorf("list bank details: %w", err)
	}
	defer rows.Close()

	var details []models.BankDetail
	for rows.Next() {
		var d models.BankDetail
		if err := rows.Scan(&d.ID, &d.BankName, &d.AccountName, &d.AccountNumber,
			&d.Branch, &d.SwiftCode, &d.AdditionalInstructions, &d.IsActive); err != nil {
			return nil, fmt.Errorf("scan bank detail: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// ReplaceBankDetails deactivates every bank detail and upserts the new
// active set within a transaction.
func (r *PostgresCatalogRepository) ReplaceBankDetails(ctx context.Context, details []models.BankDetail) error {
	if r.DB == nil {
		return apperr.ErrUnavailable
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE bank_details SET is_active = false`); err != nil {
		return fmt.Errorf("deactivate bank details: %w", err)
	}
	for _, d := range details {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO bank_details (id, bank_name, account_name, account_number, branch, swift_code, additional_instructions, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, true)
			ON CONFLICT (id) DO UPDATE SET
				bank_name = EXCLUDED.bank_name,
				account_name = EXCLUDED.account_name,
				account_number = EXCLUDED.account_number,
				branch = EXCLUDED.branch,
				swift_code = EXCLUDED.swift_code,
				additional_instructions = EXCLUDED.additional_instructions,
				is_active = true
		`, d.ID, d.BankName, d.AccountName, d.AccountNumber, d.Branch, d.SwiftCode, d.AdditionalInstructions)
		if err != nil {
			return fmt.Errorf("upsert bank detail: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
