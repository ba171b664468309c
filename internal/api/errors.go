package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/newsdesk/newsroom/internal/domain"
)

type errorResponse struct {
	Message string `json:"message"`
}

// writeError maps the error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidStateTransition):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrAccessDenied):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrDependencyFailure):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrStorage):
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		log.Printf("[api] internal error: %v", err)
	}

	writeJSON(w, status, errorResponse{Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
