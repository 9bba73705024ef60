package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/vidora/vidora/internal/errs"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, _ *http.Request, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// writeErr maps the sentinel taxonomy onto HTTP statuses. Terminal auth
// errors tell the caller to re-authenticate; store and deadline failures are
// retryable.
func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		s.writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, errs.ErrInvalidCredential),
		errors.Is(err, errs.ErrTokenMalformed),
		errors.Is(err, errs.ErrTokenExpired),
		errors.Is(err, errs.ErrSessionRevoked):
		s.writeError(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, errs.ErrAlreadyExists):
		s.writeError(w, r, http.StatusConflict, "already exists")
	case errors.Is(err, errs.ErrRateLimited):
		s.writeError(w, r, http.StatusTooManyRequests, "rate limited")
	case errors.Is(err, context.DeadlineExceeded):
		s.writeError(w, r, http.StatusGatewayTimeout, "deadline exceeded")
	case errors.Is(err, errs.ErrStoreUnavailable):
		s.log.Error("store unavailable", zap.Error(err), zap.String("path", r.URL.Path))
		s.writeError(w, r, http.StatusServiceUnavailable, "store unavailable")
	default:
		s.log.Error("request failed", zap.Error(err), zap.String("path", r.URL.Path))
		s.writeError(w, r, http.StatusInternalServerError, "internal")
	}
}
