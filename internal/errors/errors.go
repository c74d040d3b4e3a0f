package errors

import (
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNetwork    ErrorType = "network"
	// ErrorTypeAnalysis marks a failed analysis attempt: no snapshot could be
	// produced and the record transitions to the error state
	ErrorTypeAnalysis ErrorType = "analysis"
	// ErrorTypeDegraded marks a single-signal failure absorbed at the adapter
	// boundary; it never surfaces as a record error
	ErrorTypeDegraded ErrorType = "degraded"
	// ErrorTypeMetadata marks a failed background enrichment; always swallowed
	ErrorTypeMetadata ErrorType = "metadata"
	// ErrorTypeNotReady is returned when analysis is requested before the
	// provider set finished initializing
	ErrorTypeNotReady ErrorType = "not_ready"
	ErrorTypeTimeout  ErrorType = "timeout"
	ErrorTypeNotFound ErrorType = "not_found"
	ErrorTypeInternal ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeNetwork,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// NewAnalysisError creates an error for a failed analysis attempt
func NewAnalysisError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeAnalysis,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
		Cause:      cause,
	}
}

// NewDegradedError creates an error for a single failed visual signal
func NewDegradedError(signal string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeDegraded,
		Message:    fmt.Sprintf("signal %s degraded", signal),
		StatusCode: http.StatusOK,
		Cause:      cause,
	}
}

// NewMetadataError creates an error for a failed metadata enrichment
func NewMetadataError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeMetadata,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewNotReadyError creates an error for calls issued before initialization
func NewNotReadyError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotReady,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeTimeout,
		Message:    message,
		StatusCode: http.StatusGatewayTimeout,
		Cause:      cause,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
		Cause:      cause,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	if appErr, ok := err.(*AppError); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
