package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"promo-dispenser/internal/model"

	"github.com/rs/zerolog"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeText writes a plain-text body with the given status code.
func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// WriteError writes an error response with the given status code and message.
func WriteError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("error", message).Str("code", code).Int("status", status).Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: w.Header().Get(RequestIDHeader),
	})
}

// writeDomainError maps err onto an HTTP status. Only the taxonomy message
// reaches the client; the wrapped cause stays in the log.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		logger.Error().Err(err).Msg("unclassified error")
		WriteError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
		return
	}

	logger.Debug().Err(err).Msg("request failed")
	WriteError(w, StatusFor(domainErr), domainErr.Code, domainErr.Message, logger)
}

// StatusFor returns the HTTP status that represents a domain error.
func StatusFor(err *model.DomainError) int {
	switch err.Code {
	case model.ErrCodeMissingCredential:
		return http.StatusBadRequest
	case model.ErrCodeInvalidCredential:
		return http.StatusUnauthorized
	case model.ErrCodeQueueEmpty, model.ErrCodeUnknownButton:
		return http.StatusNotFound
	case model.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// allowMethod rejects requests whose method differs from method.
func allowMethod(w http.ResponseWriter, r *http.Request, method string, logger zerolog.Logger) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	WriteError(w, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", logger)
	return false
}
