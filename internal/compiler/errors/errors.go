// Package errors provides structured error handling for the protomodel
// compiler. It defines error codes, categories, and formatting for both
// human-readable terminal output and machine-parseable JSON.
package errors

import (
	"encoding/json"
	"errors"
)

// ErrorCode represents a unique error code in the protomodel compiler
type ErrorCode string

// ErrorCategory represents the category of compiler error
type ErrorCategory string

const (
	// CategoryType represents type resolution errors (TYP100-199)
	CategoryType ErrorCategory = "type"
	// CategoryCycle represents cyclic reference signals (CYC100-199)
	CategoryCycle ErrorCategory = "cycle"
	// CategoryConstraint represents constraint metadata errors (CON200-299)
	CategoryConstraint ErrorCategory = "constraint"
	// CategoryOneOf represents oneof/optional resolution errors (ONE300-399)
	CategoryOneOf ErrorCategory = "oneof"
	// CategoryValidation represents instance construction errors (VAL500-599)
	CategoryValidation ErrorCategory = "validation"
)

// ErrorSeverity indicates the severity level of an error
type ErrorSeverity string

const (
	// SeverityError indicates an error that aborts compilation of the
	// enclosing message
	SeverityError ErrorSeverity = "error"
	// SeverityWarning indicates a diagnostic; compilation continues
	SeverityWarning ErrorSeverity = "warning"
)

// CompilerError represents a structured compiler error carrying the
// fully-qualified schema symbol it concerns.
type CompilerError struct {
	// Code is the unique error code (e.g., "TYP101", "CYC100")
	Code ErrorCode `json:"code"`
	// Type is a machine-readable error type identifier
	Type string `json:"type"`
	// Category is the error category
	Category ErrorCategory `json:"category"`
	// Severity is the error severity level
	Severity ErrorSeverity `json:"severity"`
	// Message is the primary error message
	Message string `json:"message"`
	// Symbol is the fully-qualified schema name the error concerns
	Symbol string `json:"symbol,omitempty"`
	// Field is the field name within Symbol, when field-scoped
	Field string `json:"field,omitempty"`
	// Expected describes what was expected (optional)
	Expected string `json:"expected,omitempty"`
	// Actual describes what was actually found (optional)
	Actual string `json:"actual,omitempty"`
	// Suggestion provides a hint for fixing the error (optional)
	Suggestion string `json:"suggestion,omitempty"`
}

// Error implements the error interface
func (e *CompilerError) Error() string {
	return e.Format()
}

// Format returns a human-readable error message for terminal output
func (e *CompilerError) Format() string {
	return FormatError(e)
}

// ToJSON returns the error as a JSON string
func (e *CompilerError) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// WithField sets the field name the error concerns
func (e *CompilerError) WithField(field string) *CompilerError {
	e.Field = field
	return e
}

// WithExpected sets the expected value for the error
func (e *CompilerError) WithExpected(expected string) *CompilerError {
	e.Expected = expected
	return e
}

// WithActual sets the actual value for the error
func (e *CompilerError) WithActual(actual string) *CompilerError {
	e.Actual = actual
	return e
}

// WithSuggestion sets a suggestion for fixing the error
func (e *CompilerError) WithSuggestion(suggestion string) *CompilerError {
	e.Suggestion = suggestion
	return e
}

// ErrorList is a collection of compiler errors
type ErrorList []*CompilerError

// Error implements the error interface
func (el ErrorList) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	return FormatErrorList(el)
}

// HasErrors returns true if the list contains any hard errors
func (el ErrorList) HasErrors() bool {
	for _, err := range el {
		if err.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ToJSON returns all errors as a JSON array
func (el ErrorList) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(el, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CodeOf extracts the error code from err, or "" when err is not a
// CompilerError.
func CodeOf(err error) ErrorCode {
	var ce *CompilerError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// newError creates a new CompilerError with the given parameters
func newError(
	code ErrorCode,
	typ string,
	category ErrorCategory,
	severity ErrorSeverity,
	message string,
	symbol string,
) *CompilerError {
	return &CompilerError{
		Code:     code,
		Type:     typ,
		Category: category,
		Severity: severity,
		Message:  message,
		Symbol:   symbol,
	}
}
