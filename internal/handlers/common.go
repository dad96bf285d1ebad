package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"sonorus-backend/internal/apperr"

	"github.com/rs/zerolog/log"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// respondAppError maps the error taxonomy onto status codes
func respondAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		respondError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, apperr.ErrAuth):
		respondError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, apperr.ErrAuthorization):
		respondError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, apperr.ErrNotFound):
		respondError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, apperr.ErrSizeLimit):
		respondError(w, err.Error(), http.StatusRequestEntityTooLarge)
	default:
		log.Error().Err(err).Msg("Request failed")
		respondError(w, "internal error", http.StatusInternalServerError)
	}
}

// decodeBody decodes a JSON request body
func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
