package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS registrations (
    id TEXT PRIMARY KEY,
    current_step TEXT NOT NULL,
    status TEXT NOT NULL,
    payment_approved BOOLEAN NOT NULL DEFAULT FALSE,
    details_approved BOOLEAN NOT NULL DEFAULT FALSE,
    documents_approved BOOLEAN NOT NULL DEFAULT FALSE,
    documents_published BOOLEAN NOT NULL DEFAULT FALSE,
    documents_acknowledged BOOLEAN NOT NULL DEFAULT FALSE,
    company_name TEXT NOT NULL DEFAULT '',
    company_name_english TEXT NOT NULL DEFAULT '',
    company_name_sinhala TEXT NOT NULL DEFAULT '',
    company_address TEXT NOT NULL DEFAULT '',
    contact_person TEXT NOT NULL DEFAULT '',
    shareholders TEXT NOT NULL DEFAULT '',
    directors TEXT NOT NULL DEFAULT '',
    package_id TEXT NOT NULL DEFAULT '',
    payment_method TEXT NOT NULL DEFAULT '',
    payment_receipt TEXT NOT NULL DEFAULT '',
    balance_payment_receipt TEXT NOT NULL DEFAULT '',
    company_documents TEXT NOT NULL DEFAULT '',
    customer_documents TEXT NOT NULL DEFAULT '',
    incorporation_certificate TEXT NOT NULL DEFAULT '',
    additional_documents TEXT NOT NULL DEFAULT '',
    created_by TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS packages (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    price DOUBLE PRECISION NOT NULL DEFAULT 0,
    advance_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
    balance_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
    features TEXT NOT NULL DEFAULT '',
    is_active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS bank_details (
    id TEXT PRIMARY KEY,
    bank_name TEXT NOT NULL,
    account_name TEXT NOT NULL DEFAULT '',
    account_number TEXT NOT NULL DEFAULT '',
    branch TEXT NOT NULL DEFAULT '',
    swift_code TEXT NOT NULL DEFAULT '',
    additional_instructions TEXT NOT NULL DEFAULT '',
    is_active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS settings (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    logo_url TEXT NOT NULL DEFAULT '',
    favicon_url TEXT NOT NULL DEFAULT '',
    primary_color TEXT NOT NULL DEFAULT '',
    secondary_color TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS files (
    id TEXT PRIMARY KEY,
    original_name TEXT NOT NULL,
    stored_file_name TEXT NOT NULL,
    file_path TEXT NOT NULL,
    mime_type TEXT NOT NULL,
    size BIGINT NOT NULL,
    category TEXT NOT NULL,
    url TEXT NOT NULL,
    uploaded_by TEXT NOT NULL DEFAULT '',
    uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}
