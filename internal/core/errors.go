package core

import "fmt"

// Standard error codes used in API error responses.
const (
	ErrCodeInvalidRequest    = "invalid_request"
	ErrCodeValidationError   = "validation_error"
	ErrCodeNotFound          = "not_found"
	ErrCodeConflict          = "conflict"
	ErrCodeInvalidTransition = "invalid_transition"
	ErrCodeUnavailable       = "unavailable"
	ErrCodeInternalError     = "internal_error"
	ErrCodeUnauthorized      = "unauthorized"
	ErrCodeForbidden         = "forbidden"
)

// APIError is a structured error returned to API clients.
type APIError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func NewInvalidRequestError(message string, details map[string]any) *APIError {
	return &APIError{
		Code:    ErrCodeInvalidRequest,
		Message: message,
		Details: details,
	}
}

func NewValidationError(message string, details map[string]any) *APIError {
	return &APIError{
		Code:    ErrCodeValidationError,
		Message: message,
		Details: details,
	}
}

func NewNotFoundError(resourceType, resourceID string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s '%s' not found.", resourceType, resourceID),
		Details: map[string]any{
			"resource_type": resourceType,
			"resource_id":   resourceID,
		},
	}
}

func NewConflictError(message string, details map[string]any) *APIError {
	return &APIError{
		Code:    ErrCodeConflict,
		Message: message,
		Details: details,
	}
}

// NewInvalidTransitionError reports a status change the machine does not allow.
func NewInvalidTransitionError(e *Engine, from, to int) *APIError {
	return &APIError{
		Code: ErrCodeInvalidTransition,
		Message: fmt.Sprintf("Cannot move from '%s' to '%s'.",
			e.StatusName(from), e.StatusName(to)),
		Details: map[string]any{
			"machine":   e.Name(),
			"from":      from,
			"to":        to,
			"available": e.AvailableTransitions(from),
		},
	}
}

func NewUnavailableError(message string) *APIError {
	return &APIError{
		Code:      ErrCodeUnavailable,
		Message:   message,
		Retryable: true,
	}
}

func NewInternalError(message string) *APIError {
	return &APIError{
		Code:      ErrCodeInternalError,
		Message:   message,
		Retryable: true,
	}
}
