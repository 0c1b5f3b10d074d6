package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrArtifactLoad is returned when the scaler or classifier cannot be
	// loaded at startup. No interaction can be served after it.
	ErrArtifactLoad = errors.New("artifact load failed")

	// ErrIncompatibleArtifact marks an artifact that loaded but was fitted
	// against a different feature layout.
	ErrIncompatibleArtifact = errors.New("incompatible artifact")

	// ErrTransformFailed is returned when scaling or classification fails
	// for a single interaction.
	ErrTransformFailed = errors.New("transform failed")

	// ErrInvalidInput is returned for submissions outside the form's domain.
	ErrInvalidInput = errors.New("invalid input")
)

// APIError represents a standardized error response
type APIError struct {
	Code          string    `json:"code"`
	Message       string    `json:"message"`
	Details       string    `json:"details,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	CodeInvalidInput   = "INVALID_INPUT"
	CodeValidation     = "VALIDATION_ERROR"
	CodeTransform      = "TRANSFORM_ERROR"
	CodeRateLimit      = "RATE_LIMIT_EXCEEDED"
	CodeInternalServer = "INTERNAL_SERVER_ERROR"
)

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewAPIError creates a new APIError with timestamp
func NewAPIError(code, message, details, correlationID string) *APIError {
	return &APIError{
		Code:          code,
		Message:       message,
		Details:       details,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
	}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}
