package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sourpow/tbucks-server/internal/logger"
	"github.com/sourpow/tbucks-server/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeError maps domain errors to HTTP statuses. Unknown errors are
// logged and reported as a bare 500 so internals never leak to clients.
func writeError(l *logger.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, model.ErrUsernameTaken):
		writeErrorMessage(w, http.StatusConflict, "username already taken")
	case errors.Is(err, model.ErrInvalidCredentials):
		writeErrorMessage(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, model.ErrTokenRevoked),
		errors.Is(err, model.ErrTokenExpired),
		errors.Is(err, model.ErrTokenMismatch):
		writeErrorMessage(w, http.StatusUnauthorized, "invalid token")
	case errors.Is(err, model.ErrPermissionDenied):
		writeErrorMessage(w, http.StatusForbidden, "permission denied")
	case errors.Is(err, model.ErrInsufficientBalance):
		writeErrorMessage(w, http.StatusConflict, "insufficient balance")
	case errors.Is(err, model.ErrInvalidTransition):
		writeErrorMessage(w, http.StatusConflict, "invalid order status transition")
	case errors.Is(err, model.ErrInvalidInput),
		errors.Is(err, model.ErrAmountNotPositive):
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
	default:
		l.Error("unhandled API error", "error", err.Error())
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON parses the request body into v. A false return means the
// 400 response was already written.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}
