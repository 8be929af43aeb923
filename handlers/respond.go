package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kevinaaaquil/newsroom/middleware"
	"github.com/kevinaaaquil/newsroom/models"
	"github.com/kevinaaaquil/newsroom/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

// writeError maps service errors to status codes. Anything without a kind is
// logged and reported as a generic failure.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var code int
	switch {
	case errors.Is(err, service.ErrPermission):
		code = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidToken):
		code = http.StatusBadRequest
	case errors.Is(err, service.ErrConflict):
		code = http.StatusConflict
	case errors.Is(err, service.ErrUnauthenticated):
		code = http.StatusUnauthorized
	case errors.Is(err, service.ErrRateLimited):
		code = http.StatusTooManyRequests
	case errors.Is(err, service.ErrMediaDisabled):
		writeErrorMessage(w, http.StatusServiceUnavailable, "image storage is not configured")
		return
	default:
		logger.Error("request failed", "err", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeErrorMessage(w, code, service.Message(err))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

// currentUser returns the authenticated account. Routes behind middleware.Auth
// always have one; the check covers handlers mounted without it.
func currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "unauthorized")
	}
	return u, ok
}

func currentUserOptional(r *http.Request) (*models.User, bool) {
	return middleware.UserFromContext(r.Context())
}
