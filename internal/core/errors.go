package core

import (
	"fmt"
)

// Error codes
const (
	ErrCodeMissingConfig  = "MISSING_CONFIG"
	ErrCodeInvalidPayload = "INVALID_PAYLOAD"
	ErrCodeTransport      = "TRANSPORT"
	ErrCodeStreamRead     = "STREAM_READ"
	ErrCodeConnectFailed  = "CONNECT_FAILED"
	ErrCodeQueryFailed    = "QUERY_FAILED"
)

// AppError carries an error code, a readable message and the underlying cause.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorf creates a new AppError with a formatted message
func NewAppErrorf(code string, cause error, format string, args ...any) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// APIError is a non-200 answer from a Cortex endpoint.
// Body holds the decoded JSON error when the response was JSON, otherwise nil and Raw holds the text.
type APIError struct {
	StatusCode int
	Body       any
	Raw        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Raw)
}

// Structured reports whether the error body was valid JSON.
func (e *APIError) Structured() bool {
	return e.Body != nil
}
