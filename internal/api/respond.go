package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Priya8975/melon-site/internal/domain"
)

const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("encoding response", "error", err)
	}
}

// respondEnvelope writes {code, message, data} with code as the HTTP status.
func respondEnvelope(w http.ResponseWriter, status int, message string, data any) {
	respondJSON(w, status, domain.Envelope{Code: status, Message: message, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondEnvelope(w, status, message, nil)
}

// decodeJSON reads a single JSON value from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
