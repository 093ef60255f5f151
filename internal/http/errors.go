package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"subboard/internal/core"
	applog "subboard/internal/log"
)

// statusFor maps domain errors to HTTP status codes and a user-facing message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrUnknownReport), errors.Is(err, core.ErrEmptyReportID):
		return http.StatusNotFound, "Report not found"
	case errors.Is(err, core.ErrInvalidRange):
		return http.StatusUnprocessableEntity, "The end date is before the start date"
	case errors.Is(err, errInvalidParam):
		return http.StatusUnprocessableEntity, "Invalid filter value"
	default:
		return http.StatusInternalServerError, "Something went wrong"
	}
}

func (s *Server) logRequestError(r *http.Request, status int, err error) {
	logger := applog.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", applog.FieldPath, r.URL.Path, applog.FieldError, err)
		return
	}
	logger.DebugContext(r.Context(), "Request rejected",
		applog.FieldPath, r.URL.Path,
		applog.FieldStatusCode, status,
		applog.FieldError, err)
}

// writeError renders err as an HTMX error fragment.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	s.logRequestError(r, status, err)
	ErrorResponse(status, msg).Write(w)
}

func (s *Server) writeJSONError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	s.logRequestError(r, status, err)
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
