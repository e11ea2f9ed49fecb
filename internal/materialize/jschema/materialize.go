// Package jschema materializes compiled model definitions as JSON Schema
// documents. Model references become $defs entries addressed by output
// name, so the document stays self-contained even across forward refs.
package jschema

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/protomodel-lang/protomodel/internal/compiler/model"
)

// Materializer renders definitions against a set of known definitions so
// model references can be inlined into $defs.
type Materializer struct {
	byName map[string]*model.Definition
}

// New indexes the given definitions, including their nested definitions,
// by output name.
func New(defs ...*model.Definition) *Materializer {
	m := &Materializer{byName: make(map[string]*model.Definition)}
	for _, def := range defs {
		m.index(def)
	}
	return m
}

func (m *Materializer) index(def *model.Definition) {
	if def == nil {
		return
	}
	if _, ok := m.byName[def.Name]; ok {
		return
	}
	m.byName[def.Name] = def
	for _, nested := range def.Nested {
		m.index(nested.Definition)
	}
}

// Materialize renders a definition as a standalone JSON Schema document.
func (m *Materializer) Materialize(def *model.Definition) (*jsonschema.Schema, error) {
	root := m.objectSchema(def)

	defs := map[string]*jsonschema.Schema{}
	pending := collectRefs(def, nil)
	for len(pending) > 0 {
		name := pending[0]
		pending = pending[1:]
		if _, done := defs[name]; done || name == def.Name {
			continue
		}
		target, ok := m.byName[name]
		if !ok {
			return nil, fmt.Errorf("referenced definition %s is not materializable", name)
		}
		defs[name] = m.objectSchema(target)
		pending = collectRefs(target, pending)
	}
	if len(defs) > 0 {
		root.Defs = defs
	}
	return root, nil
}

func (m *Materializer) objectSchema(def *model.Definition) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:       "object",
		Properties: map[string]*jsonschema.Schema{},
	}
	for _, field := range def.Fields {
		prop := typeSchema(field.Type, def.Name)
		applyConstraints(prop, field.Constraints)
		s.Properties[field.Name] = prop
		if field.Constraints != nil && field.Constraints.Required {
			s.Required = append(s.Required, field.Name)
		}
	}
	return s
}

// typeSchema maps a model type onto its schema shape. selfName resolves
// forward self-references without consulting the definition index.
func typeSchema(t model.Type, selfName string) *jsonschema.Schema {
	switch v := t.(type) {
	case *model.Scalar:
		return scalarSchema(v.Kind)
	case *model.EnumRef:
		s := &jsonschema.Schema{Type: "integer"}
		for _, value := range v.Values {
			s.Enum = append(s.Enum, value.Number)
		}
		return s
	case *model.ModelRef:
		if v.Name == selfName {
			return &jsonschema.Schema{Ref: "#"}
		}
		return &jsonschema.Schema{Ref: "#/$defs/" + v.Name}
	case *model.List:
		return &jsonschema.Schema{Type: "array", Items: typeSchema(v.Elem, selfName)}
	case *model.Optional:
		return typeSchema(v.Elem, selfName)
	case *model.Map:
		return &jsonschema.Schema{
			Type:                 "object",
			AdditionalProperties: typeSchema(v.Value, selfName),
		}
	default:
		return &jsonschema.Schema{}
	}
}

func scalarSchema(kind model.ScalarKind) *jsonschema.Schema {
	switch kind {
	case model.ScalarBool:
		return &jsonschema.Schema{Type: "boolean"}
	case model.ScalarString:
		return &jsonschema.Schema{Type: "string"}
	case model.ScalarBytes:
		return &jsonschema.Schema{Type: "string", Format: "byte"}
	case model.ScalarInt32, model.ScalarUint32:
		return &jsonschema.Schema{Type: "integer", Format: "int32"}
	case model.ScalarInt64, model.ScalarUint64:
		return &jsonschema.Schema{Type: "integer", Format: "int64"}
	case model.ScalarFloat32:
		return &jsonschema.Schema{Type: "number", Format: "float"}
	case model.ScalarFloat64:
		return &jsonschema.Schema{Type: "number", Format: "double"}
	case model.ScalarDuration:
		return &jsonschema.Schema{Type: "string", Format: "duration"}
	case model.ScalarTimestamp:
		return &jsonschema.Schema{Type: "string", Format: "date-time"}
	case model.ScalarStruct:
		return &jsonschema.Schema{Type: "object"}
	default:
		// Any and Empty intentionally unconstrained.
		return &jsonschema.Schema{}
	}
}

func applyConstraints(s *jsonschema.Schema, rec *model.ConstraintRecord) {
	if rec == nil {
		return
	}
	for kind, operand := range rec.Rules {
		switch kind {
		case model.ConstraintGe:
			s.Minimum = floatPtr(operand)
		case model.ConstraintGt:
			s.ExclusiveMinimum = floatPtr(operand)
		case model.ConstraintLe:
			s.Maximum = floatPtr(operand)
		case model.ConstraintLt:
			s.ExclusiveMaximum = floatPtr(operand)
		case model.ConstraintMinLength:
			s.MinLength = intPtr(operand)
		case model.ConstraintMaxLength:
			s.MaxLength = intPtr(operand)
		case model.ConstraintMinItems:
			s.MinItems = intPtr(operand)
		case model.ConstraintMaxItems:
			s.MaxItems = intPtr(operand)
		case model.ConstraintPattern:
			if expr, ok := operand.(string); ok {
				s.Pattern = expr
			}
		case model.ConstraintUniqueItems:
			if enabled, ok := operand.(bool); ok && enabled {
				s.UniqueItems = true
			}
		case model.ConstraintConst:
			s.Enum = []any{operand}
		}
	}
	if in, ok := rec.Extra[model.ConstraintIn.String()]; ok && len(s.Enum) == 0 {
		if items, ok := in.([]any); ok {
			s.Enum = items
		}
	}
	if rec.Default != nil {
		if raw, err := json.Marshal(rec.Default); err == nil {
			s.Default = json.RawMessage(raw)
		}
	}
}

func collectRefs(def *model.Definition, acc []string) []string {
	for _, field := range def.Fields {
		acc = refsOf(field.Type, def.Name, acc)
	}
	return acc
}

func refsOf(t model.Type, selfName string, acc []string) []string {
	switch v := t.(type) {
	case *model.ModelRef:
		if v.Name != selfName {
			acc = append(acc, v.Name)
		}
	case *model.List:
		acc = refsOf(v.Elem, selfName, acc)
	case *model.Optional:
		acc = refsOf(v.Elem, selfName, acc)
	case *model.Map:
		acc = refsOf(v.Key, selfName, acc)
		acc = refsOf(v.Value, selfName, acc)
	}
	return acc
}

func floatPtr(operand any) *float64 {
	switch n := operand.(type) {
	case int:
		f := float64(n)
		return &f
	case int32:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	case float32:
		f := float64(n)
		return &f
	case float64:
		return &n
	}
	return nil
}

func intPtr(operand any) *int {
	switch n := operand.(type) {
	case int:
		return &n
	case int32:
		i := int(n)
		return &i
	case int64:
		i := int(n)
		return &i
	case float64:
		i := int(n)
		return &i
	}
	return nil
}
