// Package filestore implements the category-partitioned blob store for
// uploaded receipts and legal documents. Blobs live on the local
// filesystem; metadata lives in the files table so lookup by id is a
// query rather than a directory scan.
package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corpdesk/corpdesk/internal/apperr"
	"github.com/corpdesk/corpdesk/internal/models"
)

// MaxFileSize caps uploads at 10 MiB.
const MaxFileSize = 10 << 20

// categoryByMime is the upload allow-list. Anything absent is rejected
// before any disk write. Category is derived here, never caller-supplied.
var categoryByMime = map[string]models.FileCategory{
	"image/jpeg": models.CategoryImages,
	"image/png":  models.CategoryImages,
	"image/gif":  models.CategoryImages,
	"image/webp": models.CategoryImages,

	"application/pdf":    models.CategoryDocuments,
	"application/msword": models.CategoryDocuments,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": models.CategoryDocuments,
	"text/plain":               models.CategoryDocuments,
	"application/vnd.ms-excel": models.CategoryDocuments,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": models.CategoryDocuments,

	// Unidentified binary uploads are parked in temp and reaped by the
	// cleaner if nothing claims them.
	"application/octet-stream": models.CategoryTemp,
}

// MetadataStore is the persistence surface the store needs for file
// metadata rows.
type MetadataStore interface {
	Insert(ctx context.Context, f *models.FileMetadata) error
	GetByID(ctx context.Context, id string) (*models.FileMetadata, error)
	List(ctx context.Context, category models.FileCategory) ([]models.FileMetadata, error)
	Delete(ctx context.Context, id string) error
}

// Store writes blobs under a root directory, one subdirectory per
// category, and records metadata through a MetadataStore.
type Store struct {
	root    string
	baseURL string
	meta    MetadataStore
	log     *zap.Logger
}

// New constructs a Store rooted at dir. baseURL prefixes public file URLs
// and may be empty for relative links.
func New(dir, baseURL string, meta MetadataStore, log *zap.Logger) *Store {
	return &Store{root: dir, baseURL: baseURL, meta: meta, log: log}
}

// Save validates and writes an upload, returning its metadata. Validation
// failures surface as apperr.ErrValidation before any disk write; disk and
// database failures are logged and wrapped, never panicked.
func (s *Store) Save(ctx context.Context, data []byte, originalName, mimeType, uploadedBy string) (*models.FileMetadata, error) {
	if len(data) == 0 {
		return nil, apperr.Validationf("empty file")
	}
	if len(data) > MaxFileSize {
		return nil, apperr.Validationf("file exceeds %d bytes", MaxFileSize)
	}
	category, ok := categoryByMime[normalizeMime(mimeType)]
	if !ok {
		return nil, apperr.Validationf("file type %q not allowed", mimeType)
	}

	dir := filepath.Join(s.root, string(category))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create category dir: %w", err)
	}

	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	storedName := id + filepath.Ext(originalName)
	path := filepath.Join(dir, storedName)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.log.Error("failed to write blob", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("write file: %w", err)
	}

	meta := &models.FileMetadata{
		ID:             id,
		OriginalName:   originalName,
		StoredFileName: storedName,
		FilePath:       path,
		MimeType:       normalizeMime(mimeType),
		Size:           int64(len(data)),
		Category:       category,
		URL:            fmt.Sprintf("%s/uploads/%s/%s", s.baseURL, category, storedName),
		UploadedBy:     uploadedBy,
		UploadedAt:     time.Now(),
	}
	if err := s.meta.Insert(ctx, meta); err != nil {
		// Keep disk and table consistent: a blob without a row is
		// unreachable, so undo the write.
		if rmErr := os.Remove(path); rmErr != nil {
			s.log.Warn("failed to remove blob after insert failure",
				zap.String("path", path), zap.Error(rmErr))
		}
		return nil, fmt.Errorf("record file metadata: %w", err)
	}
	return meta, nil
}

// GetByID returns metadata for an uploaded file.
func (s *Store) GetByID(ctx context.Context, id string) (*models.FileMetadata, error) {
	return s.meta.GetByID(ctx, id)
}

// List returns metadata for stored files, optionally filtered by category.
func (s *Store) List(ctx context.Context, category models.FileCategory) ([]models.FileMetadata, error) {
	return s.meta.List(ctx, category)
}

// Info stats a blob path directly and rebuilds minimal metadata from it.
// Used for maintenance tooling; API callers go through GetByID.
func (s *Store) Info(path string) (*models.FileMetadata, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("stat file: %w", err)
	}
	name := fi.Name()
	return &models.FileMetadata{
		ID:             strings.TrimSuffix(name, filepath.Ext(name)),
		OriginalName:   name,
		StoredFileName: name,
		FilePath:       path,
		Size:           fi.Size(),
		Category:       models.FileCategory(filepath.Base(filepath.Dir(path))),
		UploadedAt:     fi.ModTime(),
	}, nil
}

// Delete removes a file's metadata row and then its blob. Blob removal is
// best-effort: a missing or locked blob is logged and does not fail the
// delete.
func (s *Store) Delete(ctx context.Context, id string) error {
	meta, err := s.meta.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.meta.Delete(ctx, id); err != nil {
		return err
	}
	if err := os.Remove(meta.FilePath); err != nil && !os.IsNotExist(err) {
		s.log.Warn("failed to remove blob",
			zap.String("path", meta.FilePath), zap.Error(err))
	}
	return nil
}

// normalizeMime strips any parameters ("text/plain; charset=utf-8").
func normalizeMime(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
