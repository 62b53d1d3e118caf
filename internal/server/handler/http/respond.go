// Package http provides HTTP routing and handlers for the dashboard API.
package http

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/corpdesk/corpdesk/internal/apperr"
)

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err through the error taxonomy and emits the JSON error
// body. Internal errors reach the client as a generic message; the detail
// goes to the log only.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := apperr.StatusCode(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		if log != nil {
			log.Error("internal error", zap.Error(err))
		}
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
