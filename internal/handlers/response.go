package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/graze-api/internal/filters"
	"github.com/Lixing-Zhang/graze-api/internal/service"
)

// Error codes carried in every error body.
const (
	CodeInvalidFilter = "INVALID_FILTER"
	CodeNotFound      = "NOT_FOUND"
	CodeRateLimit     = "RATE_LIMIT"
	CodeServerError   = "SERVER_ERROR"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
)

// ListResponse is the envelope for every list endpoint.
type ListResponse struct {
	Data           any            `json:"data"`
	Meta           any            `json:"meta"`
	FiltersApplied map[string]any `json:"filters_applied,omitempty"`
}

// ErrorDetail is the body of an error response. Field names the offending
// input for validation errors.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ErrorResponse wraps ErrorDetail as {"error": {...}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// serverErrorBody is written when a response cannot be encoded.
const serverErrorBody = `{"error":{"code":"SERVER_ERROR","message":"An unexpected error occurred."}}` + "\n"

// WriteJSON writes a JSON response. The body is encoded before the status
// line goes out, so an encoding failure becomes a 500 instead of an empty 200.
func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *slog.Logger) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(serverErrorBody))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Error("failed to write JSON response", "error", err)
	}
}

// WriteError writes an error response in the uniform error shape
func WriteError(w http.ResponseWriter, status int, detail ErrorDetail, logger *slog.Logger) {
	WriteJSON(w, status, ErrorResponse{Error: detail}, logger)
}

// WriteServiceError maps a service error to its HTTP status and error code.
// Unclassified errors are logged and never leak their message.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	var vErr *filters.ValidationError
	switch {
	case errors.As(err, &vErr):
		WriteError(w, http.StatusBadRequest, ErrorDetail{
			Code:    CodeInvalidFilter,
			Message: vErr.Message,
			Field:   vErr.Field,
		}, logger)
	case errors.Is(err, service.ErrNotFound):
		WriteError(w, http.StatusNotFound, ErrorDetail{
			Code:    CodeNotFound,
			Message: "Not found.",
		}, logger)
	default:
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		WriteError(w, http.StatusInternalServerError, ErrorDetail{
			Code:    CodeServerError,
			Message: "An unexpected error occurred.",
		}, logger)
	}
}
