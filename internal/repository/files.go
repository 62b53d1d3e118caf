package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/corpdesk/corpdesk/internal/apperr"
	"github.com/corpdesk/corpdesk/internal/models"
)

// PostgresFileRepository holds uploaded-file metadata. The filesystem
// stores blobs only; lookup by id is an indexed query, not a directory
// scan.
type PostgresFileRepository struct {
	// DB is the database handle for executing queries. May be nil in
	// degraded mode.
	DB *sql.DB
}

// NewPostgresFileRepository creates a new repository using the provided
// *sql.DB.
func NewPostgresFileRepository(db *sql.DB) *PostgresFileRepository {
	return &PostgresFileRepository{DB: db}
}

const fileColumns = `id, original_name, stored_file_name, file_path, mime_type, size, category, url, uploaded_by, uploaded_at`

func scanFile(row rowScanner) (*models.FileMetadata, error) {
	var f models.FileMetadata
	err := row.Scan(&f.ID, &f.OriginalName, &f.StoredFileName, &f.FilePath,
		&f.MimeType, &f.Size, &f.Category, &f.URL, &f.UploadedBy, &f.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return &f, nil
}

// Insert stores metadata for a newly saved file.
func (r *PostgresFileRepository) Insert(ctx context.Context, f *models.FileMetadata) error {
	if r.DB == nil {
		return apperr.ErrUnavailable
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO files (id, original_name, stored_file_name, file_path, mime_type, size, category, url, uploaded_by, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, f.ID, f.OriginalName, f.StoredFileName, f.FilePath, f.MimeType, f.Size,
		f.Category, f.URL, f.UploadedBy, f.UploadedAt)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

// GetByID fetches file metadata by id.
func (r *PostgresFileRepository) GetByID(ctx context.Context, id string) (*models.FileMetadata, error) {
	if r.DB == nil {
		return nil, apperr.ErrUnavailable
	}
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+fileColumns+` FROM files WHERE id = $1`, id)
	return scanFile(row)
}

// List returns file metadata, optionally filtered by category.
func (r *PostgresFileRepository) List(ctx context.Context, category models.FileCategory) ([]models.FileMetadata, error) {
	if r.DB == nil {
		return nil, apperr.ErrUnavailable
	}
	query := `SELECT ` + fileColumns + ` FROM files ORDER BY uploaded_at DESC`
	args := []any{}
	if category != "" {
		query = `SELECT ` + fileColumns + ` FROM files WHERE category = $1 ORDER BY uploaded_at DESC`
		args = append(args, category)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []models.FileMetadata
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *f)
	}
	return files, rows.Err()
}

// Delete removes file metadata by id.
func (r *PostgresFileRepository) Delete(ctx context.Context, id string) error {
	if r.DB == nil {
		return apperr.ErrUnavailable
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return requireRow(res)
}
