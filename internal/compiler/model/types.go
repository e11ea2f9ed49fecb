// Package model defines the compiler's output layer: resolved field types,
// constraint records, model definitions, and runtime-checked instance
// construction. Resolved types are tagged variants handled by exhaustive
// switches at each resolution stage.
package model

import (
	"fmt"
	"strings"
)

// Type represents a resolved field type. Variants carry enough identity to
// detect recursion: a ModelRef points at a schema identity, not a
// materialized definition, until resolution completes.
type Type interface {
	// String returns the human-readable representation of the type
	String() string

	// Equals checks if two types are exactly equal
	Equals(other Type) bool
}

// ScalarKind enumerates the catalog's target scalar types.
type ScalarKind int

const (
	ScalarBool ScalarKind = iota
	ScalarInt32
	ScalarInt64
	ScalarUint32
	ScalarUint64
	ScalarFloat32
	ScalarFloat64
	ScalarString
	ScalarBytes
	ScalarDuration
	ScalarTimestamp
	ScalarAny
	ScalarStruct
	ScalarEmpty
)

var scalarNames = map[ScalarKind]string{
	ScalarBool:      "bool",
	ScalarInt32:     "int32",
	ScalarInt64:     "int64",
	ScalarUint32:    "uint32",
	ScalarUint64:    "uint64",
	ScalarFloat32:   "float32",
	ScalarFloat64:   "float64",
	ScalarString:    "string",
	ScalarBytes:     "bytes",
	ScalarDuration:  "duration",
	ScalarTimestamp: "timestamp",
	ScalarAny:       "any",
	ScalarStruct:    "struct",
	ScalarEmpty:     "empty",
}

func (k ScalarKind) String() string {
	if name, ok := scalarNames[k]; ok {
		return name
	}
	return "unknown"
}

// Scalar is a catalog-mapped primitive target type.
type Scalar struct {
	Kind ScalarKind
}

// NewScalar creates a scalar type of the given kind.
func NewScalar(kind ScalarKind) *Scalar {
	return &Scalar{Kind: kind}
}

func (s *Scalar) String() string {
	return s.Kind.String()
}

// Equals checks if two scalar types are exactly equal.
func (s *Scalar) Equals(other Type) bool {
	otherScalar, ok := other.(*Scalar)
	if !ok {
		return false
	}
	return s.Kind == otherScalar.Kind
}

// EnumValue is a single named ordinal of a synthesized enum definition.
type EnumValue struct {
	Name   string
	Number int32
}

// EnumRef references an enum definition by identity, carrying its ordered
// value set so the materialization layer never re-reads the schema.
type EnumRef struct {
	Name     string // output name, possibly origin-prefixed for cross-file refs
	FullName string // schema identity
	Values   []EnumValue
}

func (e *EnumRef) String() string {
	return fmt.Sprintf("enum(%s)", e.Name)
}

// Equals checks if two enum references point at the same enum identity.
func (e *EnumRef) Equals(other Type) bool {
	otherEnum, ok := other.(*EnumRef)
	if !ok {
		return false
	}
	return e.FullName == otherEnum.FullName && e.Name == otherEnum.Name
}

// Lookup returns the ordinal for a value name.
func (e *EnumRef) Lookup(name string) (int32, bool) {
	for _, v := range e.Values {
		if v.Name == name {
			return v.Number, true
		}
	}
	return 0, false
}

// ModelRef references another model definition by identity. Forward marks
// references emitted before the target definition completed (self- or
// mutually-referential types); they resolve against the shared cache once
// the enclosing definition exists.
type ModelRef struct {
	Name     string // output name the target is (or will be) cached under
	FullName string // schema identity
	Forward  bool
}

func (m *ModelRef) String() string {
	if m.Forward {
		return fmt.Sprintf("ref(%s, forward)", m.Name)
	}
	return fmt.Sprintf("ref(%s)", m.Name)
}

// Equals checks if two model references point at the same definition key.
func (m *ModelRef) Equals(other Type) bool {
	otherRef, ok := other.(*ModelRef)
	if !ok {
		return false
	}
	return m.FullName == otherRef.FullName && m.Name == otherRef.Name
}

// List is the resolved type of a repeated field.
type List struct {
	Elem Type
}

func (l *List) String() string {
	return fmt.Sprintf("list<%s>", l.Elem.String())
}

// Equals checks if two list types have equal element types.
func (l *List) Equals(other Type) bool {
	otherList, ok := other.(*List)
	if !ok {
		return false
	}
	return l.Elem.Equals(otherList.Elem)
}

// Optional wraps a type whose absence maps to a null-equivalent value
// (proto3-optional fields and wrapper well-known types).
type Optional struct {
	Elem Type
}

func (o *Optional) String() string {
	return fmt.Sprintf("optional<%s>", o.Elem.String())
}

// Equals checks if two optional types have equal element types.
func (o *Optional) Equals(other Type) bool {
	otherOpt, ok := other.(*Optional)
	if !ok {
		return false
	}
	return o.Elem.Equals(otherOpt.Elem)
}

// Map is the resolved type of a map-entry backed field. Keys and values are
// resolved independently and may themselves be messages, enums, or scalars.
type Map struct {
	Key   Type
	Value Type
}

func (m *Map) String() string {
	return fmt.Sprintf("map<%s, %s>", m.Key.String(), m.Value.String())
}

// Equals checks if two map types have equal key and value types.
func (m *Map) Equals(other Type) bool {
	otherMap, ok := other.(*Map)
	if !ok {
		return false
	}
	return m.Key.Equals(otherMap.Key) && m.Value.Equals(otherMap.Value)
}

// Unwrap strips Optional wrapping, returning the underlying type.
func Unwrap(t Type) Type {
	for {
		opt, ok := t.(*Optional)
		if !ok {
			return t
		}
		t = opt.Elem
	}
}

// TypeNameOf returns the classification string used for constraint key
// filtering: scalar kind name, "enum", "map", "repeated", or "message".
func TypeNameOf(t Type) string {
	switch typ := Unwrap(t).(type) {
	case *Scalar:
		return typ.Kind.String()
	case *EnumRef:
		return "enum"
	case *List:
		return "repeated"
	case *Map:
		return "map"
	case *ModelRef:
		return "message"
	default:
		return strings.ToLower(fmt.Sprintf("%T", typ))
	}
}
