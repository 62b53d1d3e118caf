package http

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/corpdesk/corpdesk/internal/apperr"
	"github.com/corpdesk/corpdesk/internal/filestore"
	"github.com/corpdesk/corpdesk/internal/models"
)

// FileStore defines the interface for blob storage operations required by
// the FileHandler.
type FileStore interface {
	Save(ctx context.Context, data []byte, originalName, mimeType, uploadedBy string) (*models.FileMetadata, error)
	GetByID(ctx context.Context, id string) (*models.FileMetadata, error)
	List(ctx context.Context, category models.FileCategory) ([]models.FileMetadata, error)
	Delete(ctx context.Context, id string) error
}

// FileHandler handles multipart uploads and file metadata requests.
type FileHandler struct {
	Files FileStore
	Log   *zap.Logger
}

// Upload handles POST /api/upload (multipart: file, uploadedBy?).
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(filestore.MaxFileSize); err != nil {
		writeError(w, h.Log, apperr.Validationf("malformed multipart body"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, h.Log, apperr.Validationf("file field is required"))
		return
	}
	defer file.Close()

	// Read one byte past the cap so oversized uploads are detected without
	// buffering the whole stream.
	data, err := io.ReadAll(io.LimitReader(file, filestore.MaxFileSize+1))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	meta, err := h.Files.Save(r.Context(), data, header.Filename,
		header.Header.Get("Content-Type"), r.FormValue("uploadedBy"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "file": meta})
}

// List handles GET /api/files?category=. Returns a bare array.
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	files, err := h.Files.List(r.Context(), models.FileCategory(r.URL.Query().Get("category")))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if files == nil {
		files = []models.FileMetadata{}
	}
	writeJSON(w, http.StatusOK, files)
}

// Get handles GET /api/files/{id}.
func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	meta, err := h.Files.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// Delete handles DELETE /api/files/{id}.
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Files.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
