package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/vovakirdan/arcade-studio/internal/intent"
	"github.com/vovakirdan/arcade-studio/internal/orchestrator"
	"github.com/vovakirdan/arcade-studio/internal/spec"
	"github.com/vovakirdan/arcade-studio/internal/storage"
	"github.com/vovakirdan/arcade-studio/internal/studio"
)

// Error types reported in API error bodies.
const (
	ErrTypeValidation  = "validation_error"
	ErrTypeNotFound    = "not_found"
	ErrTypeConflict    = "conflict"
	ErrTypeGone        = "gone"
	ErrTypeUnavailable = "service_unavailable"
	ErrTypeUpstream    = "upstream_error"
	ErrTypeInternal    = "internal_error"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	Type      string        `json:"type"`
	Message   string        `json:"message"`
	RequestID string        `json:"request_id,omitempty"`
	Reply     *spec.Message `json:"reply,omitempty"` // transcript entry recorded for the failure
}

func (e APIError) Error() string {
	return e.Type + ": " + e.Message
}

// classify maps domain errors to a status and an error type.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, intent.ErrEmpty),
		errors.Is(err, intent.ErrUnknownCommand),
		errors.Is(err, intent.ErrUsage):
		return http.StatusBadRequest, ErrTypeValidation
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, ErrTypeNotFound
	case errors.Is(err, studio.ErrNoGame),
		errors.Is(err, studio.ErrPending):
		return http.StatusConflict, ErrTypeConflict
	case errors.Is(err, studio.ErrClosed):
		return http.StatusGone, ErrTypeGone
	case errors.Is(err, studio.ErrNoStore),
		errors.Is(err, orchestrator.ErrNotConfigured):
		return http.StatusServiceUnavailable, ErrTypeUnavailable
	case errors.Is(err, orchestrator.ErrAttemptsExhausted):
		return http.StatusBadGateway, ErrTypeUpstream
	default:
		return http.StatusInternalServerError, ErrTypeInternal
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("cannot encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, errType, message string) {
	s.writeAPIError(w, r, status, APIError{Type: errType, Message: message})
}

// handleError writes err classified by its domain sentinel.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status, errType := classify(err)
	s.writeAPIError(w, r, status, APIError{Type: errType, Message: err.Error()})
}

func (s *Server) writeAPIError(w http.ResponseWriter, r *http.Request, status int, e APIError) {
	e.RequestID = middleware.GetReqID(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "type", e.Type, "error", e.Message,
			"path", r.URL.Path, "request_id", e.RequestID)
	} else {
		s.logger.Warn("request rejected", "status", status, "type", e.Type, "error", e.Message,
			"path", r.URL.Path, "request_id", e.RequestID)
	}
	w.Header().Set("X-Error-Type", e.Type)
	s.writeJSON(w, status, e)
}
