// Package handler implements the HTTP API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Neeraj110/chatApp/internal/service"
)

// response is the JSON envelope every endpoint writes. Exactly one of the
// payload fields is set, matching what the endpoint returns.
type response struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	Data          any    `json:"data,omitempty"`
	Conversation  any    `json:"conversation,omitempty"`
	Conversations any    `json:"conversations,omitempty"`
	Messages      any    `json:"messages,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a service error to its HTTP status and writes the failure
// envelope. Unclassified errors become opaque 500s.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, service.ErrUnauthenticated):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, service.ErrUpstream):
		message = err.Error()
	}

	writeJSON(w, status, response{Success: false, Message: message})
}

// writeValidationError writes a 400 failure envelope for boundary validation.
func writeValidationError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, response{Success: false, Message: message})
}

// decodeBody decodes a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
