// Package validation provides input validation utilities and the error type
// returned by every calculator for rejected input.
package validation

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/finance-engine/pkg/constants"
)

// ValidationError reports invalid or missing caller input. Calculators never
// attempt to recover from it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

// Errorf builds a ValidationError for field with a formatted message.
func Errorf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err, or any error it wraps, is a
// ValidationError.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// Finite rejects NaN and infinite values.
func Finite(field string, value float64) error {
	if math.IsNaN(value) {
		return Errorf(field, "must be a number, got NaN")
	}
	if math.IsInf(value, 0) {
		return Errorf(field, "must be finite, got %v", value)
	}
	return nil
}

// NonNegative rejects NaN, infinite and negative values.
func NonNegative(field string, value float64) error {
	if err := Finite(field, value); err != nil {
		return err
	}
	if value < 0 {
		return Errorf(field, "must not be negative, got %.2f", value)
	}
	return nil
}

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}
