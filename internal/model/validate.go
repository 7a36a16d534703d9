package model

import (
	"fmt"
	"math"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// ValidateOverlayPosition checks that a remembered overlay position is a
// finite, non-negative point. Clamping into the viewport happens at
// placement time, so any finite value past the margin is accepted.
func ValidateOverlayPosition(p OverlayPosition) error {
	var ve ValidationError
	if math.IsNaN(p.Left) || math.IsInf(p.Left, 0) {
		ve.add("left", "must be a finite number")
	} else if p.Left < 0 {
		ve.add("left", "must not be negative, got %g", p.Left)
	}
	if math.IsNaN(p.Top) || math.IsInf(p.Top, 0) {
		ve.add("top", "must be a finite number")
	} else if p.Top < 0 {
		ve.add("top", "must not be negative, got %g", p.Top)
	}
	if ve.HasErrors() {
		return &ve
	}
	return nil
}
