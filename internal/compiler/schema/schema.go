// Package schema defines the immutable structural input consumed by the
// model compiler: messages, fields, nested types, enumerations, and oneof
// groups. Instances are produced by an external schema-description layer
// (see internal/protoload) and are never mutated by the compiler.
package schema

import "strings"

// Kind identifies the raw wire type of a field.
type Kind int

const (
	KindUnknown Kind = iota
	KindDouble
	KindFloat
	KindInt32
	KindInt64
	KindUint32
	KindUint64
	KindSint32
	KindSint64
	KindFixed32
	KindFixed64
	KindSfixed32
	KindSfixed64
	KindBool
	KindString
	KindBytes
	KindEnum
	KindMessage
)

var kindNames = map[Kind]string{
	KindUnknown:  "unknown",
	KindDouble:   "double",
	KindFloat:    "float",
	KindInt32:    "int32",
	KindInt64:    "int64",
	KindUint32:   "uint32",
	KindUint64:   "uint64",
	KindSint32:   "sint32",
	KindSint64:   "sint64",
	KindFixed32:  "fixed32",
	KindFixed64:  "fixed64",
	KindSfixed32: "sfixed32",
	KindSfixed64: "sfixed64",
	KindBool:     "bool",
	KindString:   "string",
	KindBytes:    "bytes",
	KindEnum:     "enum",
	KindMessage:  "message",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsScalar reports whether the kind maps directly through the type catalog
// without recursing into another schema type.
func (k Kind) IsScalar() bool {
	return k != KindUnknown && k != KindEnum && k != KindMessage
}

// Label identifies the cardinality of a field.
type Label int

const (
	LabelSingular Label = iota
	LabelRepeated
)

func (l Label) String() string {
	if l == LabelRepeated {
		return "repeated"
	}
	return "singular"
}

// Enum describes an enumeration with its ordered value set.
type Enum struct {
	Name     string
	FullName string
	File     string // path of the schema file that declared the enum
	Values   []EnumValue
}

// EnumValue is a single named ordinal in an Enum.
type EnumValue struct {
	Name   string
	Number int32
}

// Field describes a single field of a Message.
type Field struct {
	Name     string
	FullName string
	Kind     Kind
	Label    Label

	// Message is set when Kind is KindMessage; Enum when Kind is KindEnum.
	Message *Message
	Enum    *Enum

	// OneofName is the declared oneof group containing this field, empty
	// when the field is not a oneof member. Proto3Optional marks fields
	// the schema represents as single-member synthetic groups.
	OneofName      string
	Proto3Optional bool

	// Default is the declared raw default value, nil when none was set.
	Default any
}

// Message describes a record type: ordered fields, nested declarations,
// and oneof groups.
type Message struct {
	Name     string
	FullName string
	File     string // path of the schema file that declared the message

	Fields     []*Field
	Nested     []*Message
	Enums      []*Enum
	OneofNames []string

	// MapEntry marks the synthetic two-field key/value message backing an
	// associative field. Map entries never surface as model definitions.
	MapEntry bool
}

const mapEntrySuffix = "Entry"

// IsMapEntry reports whether the message is a synthetic map entry: either
// flagged by the schema layer or shaped like one (name-suffixed with the
// map marker and carrying exactly a key/value field pair).
func (m *Message) IsMapEntry() bool {
	if m.MapEntry {
		return true
	}
	if !strings.HasSuffix(m.Name, mapEntrySuffix) || len(m.Fields) != 2 {
		return false
	}
	return m.Fields[0].Name == "key" && m.Fields[1].Name == "value"
}

// KeyValue returns the key and value fields of a map entry message.
func (m *Message) KeyValue() (key, value *Field) {
	if len(m.Fields) != 2 {
		return nil, nil
	}
	return m.Fields[0], m.Fields[1]
}

// NestedMessage looks up a directly nested message by full name.
func (m *Message) NestedMessage(fullName string) *Message {
	for _, nested := range m.Nested {
		if nested.FullName == fullName {
			return nested
		}
	}
	return nil
}

// NestedEnum looks up a directly nested enum by full name.
func (m *Message) NestedEnum(fullName string) *Enum {
	for _, enum := range m.Enums {
		if enum.FullName == fullName {
			return enum
		}
	}
	return nil
}
