package model

import (
	"testing"

	"github.com/protomodel-lang/protomodel/internal/compiler/errors"
)

func fieldWithRules(name string, kind ScalarKind, rules map[ConstraintKind]any) *FieldDef {
	rec := NewConstraintRecord(nil, nil)
	for k, v := range rules {
		rec.Rules[k] = v
	}
	return &FieldDef{
		Name:        name,
		Type:        NewScalar(kind),
		TypeName:    kind.String(),
		Constraints: rec,
	}
}

func testDefinition() *Definition {
	return &Definition{
		Name:     "User",
		FullName: "demo.User",
		Fields: []*FieldDef{
			fieldWithRules("name", ScalarString, map[ConstraintKind]any{ConstraintMinLength: 3}),
			fieldWithRules("age", ScalarInt32, map[ConstraintKind]any{ConstraintGe: 5, ConstraintLe: 10}),
		},
	}
}

func TestNewInstanceConstraintChecks(t *testing.T) {
	def := testDefinition()

	tests := []struct {
		name     string
		values   map[string]any
		wantCode errors.ErrorCode
	}{
		{"valid", map[string]any{"name": "alice", "age": 7}, ""},
		{"boundary low ok", map[string]any{"age": 5}, ""},
		{"boundary high ok", map[string]any{"age": 10}, ""},
		{"below ge", map[string]any{"age": 4}, errors.ErrConstraintViolation},
		{"above le", map[string]any{"age": 11}, errors.ErrConstraintViolation},
		{"short string", map[string]any{"name": "ab"}, errors.ErrConstraintViolation},
		{"unknown field", map[string]any{"nickname": "x"}, errors.ErrUnknownField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := def.NewInstance(tt.values)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("expected success, got %v", err)
				}
				return
			}
			if errors.CodeOf(err) != tt.wantCode {
				t.Errorf("expected code %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestNewInstanceNumericWidening(t *testing.T) {
	def := testDefinition()

	// Operands and values compare after widening, so int64 and float64
	// inputs both satisfy integer bounds.
	for _, value := range []any{int64(7), float64(7), uint32(7)} {
		if _, err := def.NewInstance(map[string]any{"age": value}); err != nil {
			t.Errorf("expected %T(7) to pass, got %v", value, err)
		}
	}
}

func TestNewInstanceDefaults(t *testing.T) {
	rec := NewConstraintRecord("anonymous", nil)
	factoryRec := NewConstraintRecord(nil, func() any { return []any{} })
	def := &Definition{
		Name:     "Profile",
		FullName: "demo.Profile",
		Fields: []*FieldDef{
			{Name: "name", Type: NewScalar(ScalarString), Constraints: rec},
			{Name: "tags", Type: &List{Elem: NewScalar(ScalarString)}, Constraints: factoryRec},
			{Name: "bio", Type: &Optional{Elem: NewScalar(ScalarString)}, Optional: true, Constraints: NewConstraintRecord(nil, nil)},
		},
	}

	inst, err := def.NewInstance(map[string]any{})
	if err != nil {
		t.Fatalf("NewInstance failed: %v", err)
	}
	if inst.Get("name") != "anonymous" {
		t.Errorf("expected default value, got %v", inst.Get("name"))
	}
	if tags, ok := inst.Get("tags").([]any); !ok || len(tags) != 0 {
		t.Errorf("expected factory-produced empty list, got %v", inst.Get("tags"))
	}
	if !inst.IsSet("bio") || inst.Get("bio") != nil {
		t.Error("expected optional field populated as nil")
	}
}

func TestNewInstanceRequired(t *testing.T) {
	rec := NewConstraintRecord(nil, nil)
	rec.Required = true
	def := &Definition{
		Name:     "Account",
		FullName: "demo.Account",
		Fields: []*FieldDef{
			{Name: "id", Type: NewScalar(ScalarString), Constraints: rec},
		},
	}

	_, err := def.NewInstance(map[string]any{})
	if errors.CodeOf(err) != errors.ErrMissingRequiredField {
		t.Errorf("expected missing required field, got %v", err)
	}

	if _, err := def.NewInstance(map[string]any{"id": "a-1"}); err != nil {
		t.Errorf("expected success with value supplied, got %v", err)
	}
}

func TestNewInstancePattern(t *testing.T) {
	rec := NewConstraintRecord(nil, nil)
	rec.Rules[ConstraintPattern] = "^[a-z]+$"
	def := &Definition{
		Name:     "Tag",
		FullName: "demo.Tag",
		Fields: []*FieldDef{
			{Name: "slug", Type: NewScalar(ScalarString), Constraints: rec},
		},
	}

	if _, err := def.NewInstance(map[string]any{"slug": "valid"}); err != nil {
		t.Errorf("expected match, got %v", err)
	}
	if _, err := def.NewInstance(map[string]any{"slug": "Not Valid"}); err == nil {
		t.Error("expected pattern violation")
	}
}

func TestNewInstanceUniqueItems(t *testing.T) {
	rec := NewConstraintRecord(nil, nil)
	rec.Rules[ConstraintUniqueItems] = true
	def := &Definition{
		Name:     "Basket",
		FullName: "demo.Basket",
		Fields: []*FieldDef{
			{Name: "items", Type: &List{Elem: NewScalar(ScalarString)}, Constraints: rec},
		},
	}

	if _, err := def.NewInstance(map[string]any{"items": []any{"a", "b"}}); err != nil {
		t.Errorf("expected unique list to pass, got %v", err)
	}
	if _, err := def.NewInstance(map[string]any{"items": []any{"a", "a"}}); err == nil {
		t.Error("expected duplicate rejection")
	}
}

func TestNewInstanceCrossFieldValidators(t *testing.T) {
	def := &Definition{
		Name:     "Contact",
		FullName: "demo.Contact",
		Fields: []*FieldDef{
			{Name: "email", Type: NewScalar(ScalarString), Constraints: NewConstraintRecord(nil, nil)},
			{Name: "phone", Type: NewScalar(ScalarString), Constraints: NewConstraintRecord(nil, nil)},
		},
		CrossField: []CrossFieldValidator{
			{
				Name: "channel_one_of_validator",
				Check: func(symbol string, values map[string]any) error {
					if IsPopulated(values["email"]) && IsPopulated(values["phone"]) {
						return errors.NewOneOfViolation(symbol, "channel", 2)
					}
					return nil
				},
			},
		},
	}

	if _, err := def.NewInstance(map[string]any{"email": "a@b.c"}); err != nil {
		t.Errorf("expected single channel to pass, got %v", err)
	}
	_, err := def.NewInstance(map[string]any{"email": "a@b.c", "phone": "555"})
	if errors.CodeOf(err) != errors.ErrOneOfViolation {
		t.Errorf("expected oneof violation, got %v", err)
	}
}

func TestIsPopulated(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"nil", nil, false},
		{"empty string", "", false},
		{"string", "x", true},
		{"zero int", 0, false},
		{"int", 1, true},
		{"false", false, false},
		{"true", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPopulated(tt.value); got != tt.want {
				t.Errorf("IsPopulated(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
