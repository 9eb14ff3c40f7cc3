// GO TESTING BASICS:
// 1. Test files MUST end in _test.go; the go tool discovers them by name
// 2. Test functions MUST start with "Test" and take *testing.T as the only param
// 3. Same package as the code being tested (so we can access unexported stuff)
// 4. Run with: go test ./internal/apperror/ -v
package apperror

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

// TABLE-DRIVEN TESTS:
// A slice of named cases and one loop. Adding a case is adding one struct.
func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("recipe", "42"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "NotFoundBy wraps ErrNotFound",
			err:       NotFoundBy("user", "username", "alice"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("title", "title is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Duplicate is a validation failure",
			err:       Duplicate("username", "alice"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("Invalid username/password"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "Upstream wraps ErrUpstream",
			err:       Upstream("mealdb unavailable", io.ErrUnexpectedEOF),
			target:    ErrUpstream,
			wantMatch: true,
		},
		{
			name:      "Upstream also matches its cause",
			err:       Upstream("mealdb unavailable", io.ErrUnexpectedEOF),
			target:    io.ErrUnexpectedEOF,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("recipe", "42"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Forbidden does NOT match ErrUnauthorized",
			err:       Forbidden("not your recipe"),
			target:    ErrUnauthorized,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("meal plan", "-1"),
			wantMessage: "meal plan not found with id -1",
		},
		{
			name:        "NotFoundBy message names the key",
			err:         NotFoundBy("user", "username", "nope"),
			wantMessage: "user not found with username nope",
		},
		{
			name:        "Duplicate message",
			err:         Duplicate("username", "alice"),
			wantMessage: "Duplicate username: alice",
		},
		{
			name:        "Upstream hides the cause",
			err:         Upstream("mealdb unavailable", errors.New("dial tcp: refused")),
			wantMessage: "mealdb unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestErrorsAs_ThroughWrapping(t *testing.T) {
	// Services wrap repository errors with fmt.Errorf("...: %w", err);
	// errors.As must still find the *AppError underneath.
	wrapped := fmt.Errorf("service: getting recipe: %w", NotFound("recipe", "7"))

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As() did not find *AppError in wrapped chain")
	}
	if appErr.Message != "recipe not found with id 7" {
		t.Errorf("Message = %q", appErr.Message)
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("email", "invalid email format")

	if err.Field != "email" {
		t.Errorf("Field = %q, want %q", err.Field, "email")
	}
}
