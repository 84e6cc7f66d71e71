// Package shared centralizes JSON response envelopes so every handler
// translates domain errors to HTTP the same way.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "veil/pkg/domain-errors"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON error envelope.
func WriteError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{
		Error:   string(dErrors.CodeInternal),
		Message: "internal error",
	}
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		resp.Error = string(domainErr.Code)
		resp.Message = domainErr.Message
		resp.Details = domainErr.Details
	}
	WriteJSON(w, dErrors.HTTPStatus(err), resp)
}
