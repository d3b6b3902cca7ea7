package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("database connection failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if !errors.Is(wrapped, originalErr) {
		t.Errorf("expected errors.Is to unwrap to original error")
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "booking not found",
			},
			expected: "NOT_FOUND: booking not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("database connection failed"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestPolicy(t *testing.T) {
	err := Policy("Cancellation deadline has passed", map[string]any{
		"deadline_hours": 24,
	})

	if err.Code != CodePolicy {
		t.Errorf("expected code %s, got %s", CodePolicy, err.Code)
	}
	if err.HTTPStatus != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, err.HTTPStatus)
	}
	if err.Details["deadline_hours"] != 24 {
		t.Errorf("expected deadline_hours detail preserved, got %v", err.Details)
	}
}

func TestGateway(t *testing.T) {
	cause := errors.New("connection refused")
	err := Gateway("Failed to send email", cause)

	if err.Code != CodeGateway {
		t.Errorf("expected code %s, got %s", CodeGateway, err.Code)
	}
	if err.HTTPStatus != http.StatusBadGateway {
		t.Errorf("expected status %d, got %d", http.StatusBadGateway, err.HTTPStatus)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected gateway error to wrap its cause")
	}
}

func TestAsAppError(t *testing.T) {
	t.Run("passes through app errors", func(t *testing.T) {
		original := Conflict("slot already taken")
		if got := AsAppError(original); got != original {
			t.Errorf("expected the same *AppError back")
		}
	})

	t.Run("wraps plain errors as internal", func(t *testing.T) {
		got := AsAppError(errors.New("boom"))
		if got.Code != CodeInternal {
			t.Errorf("expected code %s, got %s", CodeInternal, got.Code)
		}
	})
}
