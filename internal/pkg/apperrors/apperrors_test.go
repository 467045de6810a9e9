package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiers(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		isValidation bool
		isNotFound   bool
		isConflict   bool
	}{
		{"nil", nil, false, false, false},
		{"plain", errors.New("boom"), false, false, false},
		{"validation", NewValidation("query", "must not be empty"), true, false, false},
		{"not found", NewNotFound("session", "abc"), false, true, false},
		{"conflict", NewConflict("knowledge", "duplicate id"), false, false, true},
		{"wrapped validation", fmt.Errorf("handler: %w", NewValidation("text", "empty")), true, false, false},
		{"wrapped not found", fmt.Errorf("handler: %w", NewNotFound("session", "abc")), false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidation(tt.err); got != tt.isValidation {
				t.Errorf("IsValidation() = %v, want %v", got, tt.isValidation)
			}
			if got := IsNotFound(tt.err); got != tt.isNotFound {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.isNotFound)
			}
			if got := IsConflict(tt.err); got != tt.isConflict {
				t.Errorf("IsConflict() = %v, want %v", got, tt.isConflict)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	if got := NewValidation("query", "must not be empty").Error(); got != "validation failed on 'query': must not be empty" {
		t.Errorf("validation message = %q", got)
	}
	if got := NewNotFound("session", "abc").Error(); got != "session 'abc' not found" {
		t.Errorf("not found message = %q", got)
	}
}
