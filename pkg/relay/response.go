package relay

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrymomot/contactrelay/pkg/contact"
)

type errorResponse struct {
	Success bool                 `json:"success"`
	Error   string               `json:"error"`
	Details []contact.FieldError `json:"details,omitempty"`
}

type sendResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
}

type healthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fail writes the error envelope with the message stored under key.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, key string, details ...contact.FieldError) {
	writeJSON(w, status, errorResponse{
		Error:   s.tr.Tc(r.Context(), key),
		Details: details,
	})
}
