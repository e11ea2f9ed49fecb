package model

// FieldDef is one named, ordered field of a model definition.
type FieldDef struct {
	Name string
	Type Type

	// TypeName is the classification used during constraint merging:
	// the scalar kind name, "enum", "message", "map", "repeated", or a
	// well-known type name ("duration", "timestamp", "any").
	TypeName string

	Constraints *ConstraintRecord

	// Optional marks proto3-optional fields whose absence maps to nil.
	Optional bool
}

// OneOfGroup is a set of mutually-exclusive fields. When Required is true a
// cross-field validator enforces exactly one populated member at
// construction time. Exempt members stay listed for discoverability but are
// excluded from required enforcement (proto3-optional within a oneof).
type OneOfGroup struct {
	Name     string
	FullName string
	Required bool
	Fields   []string
	Exempt   map[string]bool
}

// EnforcedFields returns the members subject to required enforcement.
func (g *OneOfGroup) EnforcedFields() []string {
	if len(g.Exempt) == 0 {
		return g.Fields
	}
	fields := make([]string, 0, len(g.Fields))
	for _, f := range g.Fields {
		if !g.Exempt[f] {
			fields = append(fields, f)
		}
	}
	return fields
}

// CrossFieldValidator is a named validation rule spanning multiple fields,
// run after all per-field checks during instance construction.
type CrossFieldValidator struct {
	Name  string
	Check func(symbol string, values map[string]any) error
}

// EnumDef is a synthesized enum definition surfaced alongside the model.
type EnumDef struct {
	Name     string
	FullName string
	Values   []EnumValue
}

// NestedDef is a definition produced while compiling a parent message.
// Entries not referenced by any field of the parent are still produced for
// downstream discoverability but flagged unused.
type NestedDef struct {
	Definition *Definition
	Enum       *EnumDef
	Used       bool
}

// Definition is a fully resolved model: named ordered fields with concrete
// types, defaults, constraints, and cross-field validation rules. Produced
// once per (message identity, output name, rule-variant) key and immutable
// thereafter.
type Definition struct {
	Name     string // output name
	FullName string // schema identity

	// SkipRules marks the rule-free variant compiled under a distinct
	// output name by a skip-validation directive.
	SkipRules bool

	Fields     []*FieldDef
	OneOfs     []*OneOfGroup
	CrossField []CrossFieldValidator

	// Nested holds definitions produced for the message's own nested
	// declarations, keyed by schema full name.
	Nested map[string]*NestedDef
}

// Field looks up a field definition by name.
func (d *Definition) Field(name string) *FieldDef {
	for _, f := range d.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// FieldNames returns the declared field order.
func (d *Definition) FieldNames() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

// UnusedNested returns the full names of nested definitions no field of
// this definition references, in no particular order.
func (d *Definition) UnusedNested() []string {
	var unused []string
	for fullName, nested := range d.Nested {
		if !nested.Used {
			unused = append(unused, fullName)
		}
	}
	return unused
}
