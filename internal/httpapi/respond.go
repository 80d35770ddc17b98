package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/deepfocushub/deepfocus/internal/auth"
	"github.com/deepfocushub/deepfocus/internal/domain"
	"github.com/deepfocushub/deepfocus/internal/llm"
	"github.com/deepfocushub/deepfocus/internal/repository"
	"github.com/deepfocushub/deepfocus/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		w.Write([]byte("null"))
		return
	}
	json.NewEncoder(w).Encode(v)
}

type errorEnvelope struct {
	Message string `json:"message"`
}

// writeError maps the service error taxonomy onto HTTP statuses in one
// place. Validation messages pass through verbatim; everything at 500 and
// above hides behind a generic message so upstream detail never leaks.
func writeError(w http.ResponseWriter, err error) {
	status, message := classify(err)
	writeJSON(w, status, errorEnvelope{Message: message})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalid):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, service.ErrInvalidCredentials.Error()
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, "invalid or expired token"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "resource not found"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, "username already taken"
	case errors.Is(err, llm.ErrUnavailable), errors.Is(err, llm.ErrTimeout),
		errors.Is(err, llm.ErrUnauthorized), errors.Is(err, llm.ErrRetryExhausted):
		return http.StatusServiceUnavailable, "the insight service is currently unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// writeBadRequest is for malformed request bodies and query parameters
// caught before any service call.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorEnvelope{Message: message})
}
