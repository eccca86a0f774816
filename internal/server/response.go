package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/teemow/calboard/internal/agenda"
	"github.com/teemow/calboard/internal/logging"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// writeError logs err and answers with {"error": "..."}. Configuration
// errors, the only failure a report can return, are a 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	attrs := []any{
		slog.String("path", r.URL.Path),
		logging.Err(err),
	}
	if id := RequestIDFromContext(r.Context()); id != "" {
		attrs = append(attrs, logging.RequestID(id))
	}
	if agenda.IsConfigurationError(err) {
		logger.Error("request failed: configuration error", attrs...)
	} else {
		logger.Error("request failed", attrs...)
	}

	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}
