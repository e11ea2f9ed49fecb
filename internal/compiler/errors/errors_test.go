package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestCompilerErrorFormat(t *testing.T) {
	err := NewUnresolvableType("demo.User", "address", "demo.Address")

	msg := err.Error()
	if !strings.Contains(msg, string(ErrUnresolvableType)) {
		t.Errorf("expected code in message, got %q", msg)
	}
	if !strings.Contains(msg, "demo.User") {
		t.Errorf("expected symbol in message, got %q", msg)
	}
}

func TestErrorCategories(t *testing.T) {
	tests := []struct {
		name     string
		err      *CompilerError
		code     ErrorCode
		category ErrorCategory
		severity ErrorSeverity
	}{
		{"unknown scalar", NewUnknownScalarType("demo.M", "f", "sfixed128"), ErrUnknownScalarType, CategoryType, SeverityError},
		{"cycle", NewCyclicReference("demo.M"), ErrCyclicReference, CategoryCycle, SeverityError},
		{"unsupported constraint", NewUnsupportedConstraint("demo.M", "f", "ignore_empty", "string"), ErrUnsupportedConstraint, CategoryConstraint, SeverityWarning},
		{"conflicting metadata", NewConflictingMetadata("demo.M", "f", "in", "list", "scalar"), ErrConflictingMetadata, CategoryConstraint, SeverityError},
		{"invalid oneof", NewInvalidOneOfState("demo.M", "group", "empty group"), ErrInvalidOneOfState, CategoryOneOf, SeverityError},
		{"constraint violation", NewConstraintViolation("demo.M", "f", "4 must be >= 5"), ErrConstraintViolation, CategoryValidation, SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.Category != tt.category {
				t.Errorf("category = %s, want %s", tt.err.Category, tt.category)
			}
			if tt.err.Severity != tt.severity {
				t.Errorf("severity = %s, want %s", tt.err.Severity, tt.severity)
			}
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	cyclic := NewCyclicReference("demo.Node")
	if !IsCyclicReference(cyclic) {
		t.Error("expected IsCyclicReference to match")
	}
	if IsCyclicReference(NewUnknownScalarType("demo.M", "f", "x")) {
		t.Error("expected IsCyclicReference to reject other codes")
	}

	// Predicates see through wrapping.
	wrapped := fmt.Errorf("compiling root: %w", cyclic)
	if !IsCyclicReference(wrapped) {
		t.Error("expected IsCyclicReference to unwrap")
	}

	if !IsConflictingMetadata(NewConflictingMetadata("demo.M", "f", "in", "list", "scalar")) {
		t.Error("expected IsConflictingMetadata to match")
	}
	if !IsInvalidOneOfState(NewInvalidOneOfState("demo.M", "g", "reason")) {
		t.Error("expected IsInvalidOneOfState to match")
	}
}

func TestCodeOf(t *testing.T) {
	err := NewMissingRequiredField("demo.User", "name")
	if got := CodeOf(err); got != ErrMissingRequiredField {
		t.Errorf("CodeOf = %s, want %s", got, ErrMissingRequiredField)
	}
	if got := CodeOf(stderrors.New("plain")); got != "" {
		t.Errorf("expected empty code for foreign errors, got %s", got)
	}
}

func TestToJSON(t *testing.T) {
	err := NewUnsupportedConstraint("demo.User", "name", "min_bytes", "string")

	out, jsonErr := err.ToJSON()
	if jsonErr != nil {
		t.Fatalf("ToJSON failed: %v", jsonErr)
	}

	var decoded map[string]any
	if decodeErr := json.Unmarshal([]byte(out), &decoded); decodeErr != nil {
		t.Fatalf("output is not valid JSON: %v", decodeErr)
	}
	if decoded["code"] != string(ErrUnsupportedConstraint) {
		t.Errorf("expected code field, got %v", decoded["code"])
	}
	if decoded["severity"] != string(SeverityWarning) {
		t.Errorf("expected warning severity, got %v", decoded["severity"])
	}
}

func TestErrorListHasErrors(t *testing.T) {
	var list ErrorList
	list = append(list, NewUnsupportedConstraint("demo.M", "f", "k", "string"))
	if list.HasErrors() {
		t.Error("warnings alone should not count as errors")
	}
	list = append(list, NewUnresolvableType("demo.M", "f", "demo.X"))
	if !list.HasErrors() {
		t.Error("expected HasErrors with a terminal error present")
	}
}

func TestFormatErrorSeverityIcons(t *testing.T) {
	terminal := FormatError(NewCyclicReference("demo.Node"))
	if !strings.Contains(terminal, "✗") {
		t.Errorf("expected error icon, got %q", terminal)
	}
	warning := FormatError(NewUnsupportedConstraint("demo.M", "f", "k", "string"))
	if !strings.Contains(warning, "⚠") {
		t.Errorf("expected warning icon, got %q", warning)
	}
}
