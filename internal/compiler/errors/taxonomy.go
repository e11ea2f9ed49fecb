package errors

import (
	"errors"
	"fmt"
)

// Resolution error codes.
const (
	// ErrUnknownScalarType indicates a scalar kind the type catalog cannot map.
	ErrUnknownScalarType ErrorCode = "TYP101"
	// ErrUnresolvableType indicates a field references a type that cannot be
	// resolved to any schema declaration.
	ErrUnresolvableType ErrorCode = "TYP102"

	// ErrCyclicReference indicates a message was revisited while its own
	// resolution was still in progress. Recoverable: the caller substitutes
	// a forward reference and retries after sibling fields are resolved.
	ErrCyclicReference ErrorCode = "CYC100"

	// ErrUnsupportedConstraint indicates a metadata key inapplicable to the
	// field's resolved type. Diagnostic only; the key is dropped.
	ErrUnsupportedConstraint ErrorCode = "CON201"
	// ErrConflictingMetadata indicates providers supplied values of
	// incompatible shapes for the same key.
	ErrConflictingMetadata ErrorCode = "CON202"

	// ErrInvalidOneOfState indicates a field's oneof/optional relationship
	// contradicts the metadata describing it.
	ErrInvalidOneOfState ErrorCode = "ONE301"

	// ErrMissingRequiredField indicates construction without a required value.
	ErrMissingRequiredField ErrorCode = "VAL501"
	// ErrConstraintViolation indicates a field value failed a constraint check.
	ErrConstraintViolation ErrorCode = "VAL502"
	// ErrOneOfViolation indicates a required oneof group without exactly one
	// populated member.
	ErrOneOfViolation ErrorCode = "VAL503"
	// ErrUnknownField indicates a construction value that matches no field.
	ErrUnknownField ErrorCode = "VAL504"
)

// NewUnknownScalarType creates a TYP101 error
func NewUnknownScalarType(symbol, field string, kind string) *CompilerError {
	return newError(
		ErrUnknownScalarType,
		"unknown_scalar_type",
		CategoryType,
		SeverityError,
		fmt.Sprintf("No catalog mapping for scalar kind %q", kind),
		symbol,
	).WithField(field)
}

// NewUnresolvableType creates a TYP102 error
func NewUnresolvableType(symbol, field, typeName string) *CompilerError {
	return newError(
		ErrUnresolvableType,
		"unresolvable_type",
		CategoryType,
		SeverityError,
		fmt.Sprintf("Field references type %q which cannot be resolved", typeName),
		symbol,
	).WithField(field)
}

// NewCyclicReference creates a CYC100 error
func NewCyclicReference(symbol string) *CompilerError {
	return newError(
		ErrCyclicReference,
		"cyclic_reference",
		CategoryCycle,
		SeverityError,
		fmt.Sprintf("Definition for %q is still being resolved", symbol),
		symbol,
	).WithSuggestion("Substitute a forward reference and retry after sibling definitions are emitted")
}

// NewUnsupportedConstraint creates a CON201 diagnostic
func NewUnsupportedConstraint(symbol, field, key, typeName string) *CompilerError {
	return newError(
		ErrUnsupportedConstraint,
		"unsupported_constraint",
		CategoryConstraint,
		SeverityWarning,
		fmt.Sprintf("Constraint %q does not apply to %s fields and was dropped", key, typeName),
		symbol,
	).WithField(field)
}

// NewConflictingMetadata creates a CON202 error
func NewConflictingMetadata(symbol, field, key string, previous, next any) *CompilerError {
	return newError(
		ErrConflictingMetadata,
		"conflicting_metadata",
		CategoryConstraint,
		SeverityError,
		fmt.Sprintf("Providers disagree on the shape of constraint %q", key),
		symbol,
	).WithField(field).
		WithExpected(fmt.Sprintf("%T", previous)).
		WithActual(fmt.Sprintf("%T", next))
}

// NewInvalidOneOfState creates a ONE301 error
func NewInvalidOneOfState(symbol, group, reason string) *CompilerError {
	return newError(
		ErrInvalidOneOfState,
		"invalid_oneof_state",
		CategoryOneOf,
		SeverityError,
		fmt.Sprintf("Oneof group %q: %s", group, reason),
		symbol,
	)
}

// NewMissingRequiredField creates a VAL501 error
func NewMissingRequiredField(symbol, field string) *CompilerError {
	return newError(
		ErrMissingRequiredField,
		"missing_required_field",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("Field %q is required and has no default", field),
		symbol,
	).WithField(field)
}

// NewConstraintViolation creates a VAL502 error
func NewConstraintViolation(symbol, field, detail string) *CompilerError {
	return newError(
		ErrConstraintViolation,
		"constraint_violation",
		CategoryValidation,
		SeverityError,
		detail,
		symbol,
	).WithField(field)
}

// NewOneOfViolation creates a VAL503 error
func NewOneOfViolation(symbol, group string, populated int) *CompilerError {
	return newError(
		ErrOneOfViolation,
		"oneof_violation",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("Oneof group %q requires exactly one populated member, found %d", group, populated),
		symbol,
	)
}

// NewUnknownField creates a VAL504 error
func NewUnknownField(symbol, field string) *CompilerError {
	return newError(
		ErrUnknownField,
		"unknown_field",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("No field named %q in this definition", field),
		symbol,
	).WithField(field)
}

// IsCyclicReference reports whether err is the recoverable cycle signal.
func IsCyclicReference(err error) bool {
	return hasCode(err, ErrCyclicReference)
}

// IsConflictingMetadata reports whether err is a CON202 error.
func IsConflictingMetadata(err error) bool {
	return hasCode(err, ErrConflictingMetadata)
}

// IsInvalidOneOfState reports whether err is a ONE301 error.
func IsInvalidOneOfState(err error) bool {
	return hasCode(err, ErrInvalidOneOfState)
}

func hasCode(err error, code ErrorCode) bool {
	var ce *CompilerError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}
