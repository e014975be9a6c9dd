package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tallerhub/taller-status/internal/core"
)

// MediaType is the content type of every JSON response.
const MediaType = "application/json"

// ErrorResponse wraps an API error for JSON serialization.
type ErrorResponse struct {
	Error *core.APIError `json:"error"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", MediaType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error response. The request ID set by ServiceHeaders
// is copied into the body.
func WriteError(w http.ResponseWriter, status int, err *core.APIError) {
	if err.RequestID == "" {
		err.RequestID = w.Header().Get(HeaderRequestID)
	}
	WriteJSON(w, status, ErrorResponse{Error: err})
}

// StatusForCode maps an API error code to its HTTP status.
func StatusForCode(code string) int {
	switch code {
	case core.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case core.ErrCodeValidationError:
		return http.StatusUnprocessableEntity
	case core.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case core.ErrCodeForbidden:
		return http.StatusForbidden
	case core.ErrCodeNotFound:
		return http.StatusNotFound
	case core.ErrCodeConflict, core.ErrCodeInvalidTransition:
		return http.StatusConflict
	case core.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteAPIError maps an APIError to the appropriate HTTP status code and writes it.
func WriteAPIError(w http.ResponseWriter, err *core.APIError) {
	WriteError(w, StatusForCode(err.Code), err)
}

// HandleError maps an error to the appropriate HTTP status and writes it.
// Errors that are not API errors become internal errors.
func HandleError(w http.ResponseWriter, err error) {
	var apiErr *core.APIError
	if errors.As(err, &apiErr) {
		WriteAPIError(w, apiErr)
		return
	}
	WriteError(w, http.StatusInternalServerError, core.NewInternalError(err.Error()))
}
