package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestAPIError(t *testing.T) {
	tests := []struct {
		name          string
		code          string
		message       string
		details       string
		correlationID string
	}{
		{
			name:          "Validation error",
			code:          CodeValidation,
			message:       "Invalid form submission",
			details:       "age must be between 1 and 120",
			correlationID: "req-123",
		},
		{
			name:          "Transform error",
			code:          CodeTransform,
			message:       "Prediction failed",
			details:       "scaler produced NaN",
			correlationID: "req-456",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAPIError(tt.code, tt.message, tt.details, tt.correlationID)

			if err.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, err.Code)
			}

			if err.Message != tt.message {
				t.Errorf("Expected message %s, got %s", tt.message, err.Message)
			}

			if err.Details != tt.details {
				t.Errorf("Expected details %s, got %s", tt.details, err.Details)
			}

			if err.CorrelationID != tt.correlationID {
				t.Errorf("Expected correlationID %s, got %s", tt.correlationID, err.CorrelationID)
			}

			if time.Since(err.Timestamp) > time.Minute {
				t.Errorf("Timestamp should be recent, got %v", err.Timestamp)
			}

			expectedError := tt.code + ": " + tt.message
			if err.Error() != expectedError {
				t.Errorf("Expected error string %s, got %s", expectedError, err.Error())
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		message string
		value   interface{}
	}{
		{
			name:    "Non-numeric input",
			field:   "age",
			message: "must be an integer",
			value:   "sixty",
		},
		{
			name:    "Out of range",
			field:   "ejection_fraction",
			message: "must be between 0 and 100",
			value:   101.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message, tt.value)

			if err.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, err.Field)
			}

			if err.Value != tt.value {
				t.Errorf("Expected value %v, got %v", tt.value, err.Value)
			}

			expectedError := "validation error for field '" + tt.field + "': " + tt.message
			if err.Error() != expectedError {
				t.Errorf("Expected error string %s, got %s", expectedError, err.Error())
			}

			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected validation error to match ErrInvalidInput")
			}
		})
	}
}

func TestValidationErrorSurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("collect form: %w", NewValidationError("sex", "must be 0 or 1", 2))

	var verr *ValidationError
	if !errors.As(wrapped, &verr) {
		t.Fatalf("Expected to unwrap a *ValidationError from %v", wrapped)
	}
	if verr.Field != "sex" {
		t.Errorf("Expected field sex, got %s", verr.Field)
	}
}

func TestErrorCodeConstants(t *testing.T) {
	expected := map[string]string{
		CodeInvalidInput:   "INVALID_INPUT",
		CodeValidation:     "VALIDATION_ERROR",
		CodeTransform:      "TRANSFORM_ERROR",
		CodeRateLimit:      "RATE_LIMIT_EXCEEDED",
		CodeInternalServer: "INTERNAL_SERVER_ERROR",
	}

	for actual, want := range expected {
		if actual != want {
			t.Errorf("Expected %s, got %s", want, actual)
		}
	}
}
