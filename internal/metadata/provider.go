// Package metadata defines the constraint metadata providers consumed by
// the compiler. Providers hand the merger normalized per-field mappings:
// the parsers that extract them from comments, annotation blocks, or
// companion files live outside this module and may be swapped freely.
package metadata

// OneOfMeta is metadata addressed to a oneof group.
type OneOfMeta struct {
	// Required generates an exactly-one cross-field validator for the group.
	Required bool
	// OptionalFields marks member fields as proto3-optional: removed from
	// required enforcement while remaining listed as members.
	OptionalFields []string
}

// MessageMeta is metadata addressed to a whole message.
type MessageMeta struct {
	// Ignored suppresses rule parsing for every field of the message.
	Ignored bool
}

// Provider supplies raw constraint metadata looked up by fully-qualified
// schema names. The compiler applies an ordered provider list; later
// providers override earlier ones per key.
type Provider interface {
	// Field returns the raw constraint mapping for a fully-qualified field
	// name, or ok=false when the provider has nothing for it.
	Field(fullName string) (map[string]any, bool)

	// OneOf returns metadata for a fully-qualified oneof group name.
	OneOf(fullName string) (OneOfMeta, bool)

	// Message returns metadata for a fully-qualified message name.
	Message(fullName string) (MessageMeta, bool)
}

// MapProvider serves metadata from in-memory maps. It is the normalized
// form every external extractor reduces to, and the form tests use.
type MapProvider struct {
	Fields   map[string]map[string]any
	OneOfs   map[string]OneOfMeta
	Messages map[string]MessageMeta
}

// Field implements Provider.
func (p *MapProvider) Field(fullName string) (map[string]any, bool) {
	raw, ok := p.Fields[fullName]
	return raw, ok
}

// OneOf implements Provider.
func (p *MapProvider) OneOf(fullName string) (OneOfMeta, bool) {
	meta, ok := p.OneOfs[fullName]
	return meta, ok
}

// Message implements Provider.
func (p *MapProvider) Message(fullName string) (MessageMeta, bool) {
	meta, ok := p.Messages[fullName]
	return meta, ok
}
