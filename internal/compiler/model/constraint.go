package model

// ConstraintKind enumerates the normalized constraint keys a field rule may
// carry. The merger translates raw provider keys into kinds; the validator
// registry is keyed by kind rather than assembled by string formatting.
type ConstraintKind int

const (
	ConstraintUnknown ConstraintKind = iota

	// Range and equality rules, checked directly at construction time.
	ConstraintGe
	ConstraintLe
	ConstraintGt
	ConstraintLt
	ConstraintConst
	ConstraintMinLength
	ConstraintMaxLength
	ConstraintPattern
	ConstraintUniqueItems
	ConstraintMinItems
	ConstraintMaxItems

	// Compound rules, bound to named validators from the registry.
	ConstraintIn
	ConstraintNotIn
	ConstraintLen
	ConstraintPrefix
	ConstraintSuffix
	ConstraintContains
	ConstraintNotContains

	// Duration rules (type-prefixed key space).
	ConstraintDurationLt
	ConstraintDurationLe
	ConstraintDurationGt
	ConstraintDurationGe
	ConstraintDurationConst
	ConstraintDurationIn
	ConstraintDurationNotIn

	// Timestamp rules (type-prefixed key space).
	ConstraintTimestampLt
	ConstraintTimestampLtNow
	ConstraintTimestampLe
	ConstraintTimestampGt
	ConstraintTimestampGtNow
	ConstraintTimestampGe
	ConstraintTimestampConst
	ConstraintTimestampIn
	ConstraintTimestampNotIn
	ConstraintTimestampWithin
)

var constraintNames = map[ConstraintKind]string{
	ConstraintGe:              "ge",
	ConstraintLe:              "le",
	ConstraintGt:              "gt",
	ConstraintLt:              "lt",
	ConstraintConst:           "const",
	ConstraintMinLength:       "min_length",
	ConstraintMaxLength:       "max_length",
	ConstraintPattern:         "pattern",
	ConstraintUniqueItems:     "unique_items",
	ConstraintMinItems:        "min_items",
	ConstraintMaxItems:        "max_items",
	ConstraintIn:              "in",
	ConstraintNotIn:           "not_in",
	ConstraintLen:             "len",
	ConstraintPrefix:          "prefix",
	ConstraintSuffix:          "suffix",
	ConstraintContains:        "contains",
	ConstraintNotContains:     "not_contains",
	ConstraintDurationLt:      "duration_lt",
	ConstraintDurationLe:      "duration_le",
	ConstraintDurationGt:      "duration_gt",
	ConstraintDurationGe:      "duration_ge",
	ConstraintDurationConst:   "duration_const",
	ConstraintDurationIn:      "duration_in",
	ConstraintDurationNotIn:   "duration_not_in",
	ConstraintTimestampLt:     "timestamp_lt",
	ConstraintTimestampLtNow:  "timestamp_lt_now",
	ConstraintTimestampLe:     "timestamp_le",
	ConstraintTimestampGt:     "timestamp_gt",
	ConstraintTimestampGtNow:  "timestamp_gt_now",
	ConstraintTimestampGe:     "timestamp_ge",
	ConstraintTimestampConst:  "timestamp_const",
	ConstraintTimestampIn:     "timestamp_in",
	ConstraintTimestampNotIn:  "timestamp_not_in",
	ConstraintTimestampWithin: "timestamp_within",
}

func (k ConstraintKind) String() string {
	if name, ok := constraintNames[k]; ok {
		return name
	}
	return "unknown"
}

// CheckFunc validates a single field value at instance construction time.
// symbol is the fully-qualified name of the enclosing definition.
type CheckFunc func(symbol, field string, value any, rec *ConstraintRecord) error

// BoundValidator is a named validator drawn from the registry and attached
// to a field whose metadata carried the corresponding compound key.
type BoundValidator struct {
	Name  string
	Kind  ConstraintKind
	Check CheckFunc
}

// ConstraintRecord is the resolved, per-field set of validation rules and
// default values attached to a compiled field. Never mutated after the
// field entry is assembled.
type ConstraintRecord struct {
	// Rules maps normalized constraint kinds to their operands. Only the
	// simple range/shape rules live here; compound rules store operands in
	// Extra and act through Validators.
	Rules map[ConstraintKind]any

	// Extra carries operands for compound and temporal validators, keyed by
	// the normalized constraint name, plus merge-time artifacts such as the
	// compiled pattern.
	Extra map[string]any

	// Validators are the named construction-time checks bound to this field.
	Validators []BoundValidator

	// Default and DefaultFactory supply the value used when construction
	// input omits the field. A factory takes precedence over a plain default.
	Default        any
	DefaultFactory func() any

	// Required marks a field whose absence fails construction (the
	// "missing default" signal from a required metadata key).
	Required bool
}

// NewConstraintRecord creates an empty record carrying only the default and
// default factory already determined by type resolution.
func NewConstraintRecord(def any, factory func() any) *ConstraintRecord {
	return &ConstraintRecord{
		Rules:          make(map[ConstraintKind]any),
		Extra:          make(map[string]any),
		Default:        def,
		DefaultFactory: factory,
	}
}

// Rule returns the operand for a simple rule kind.
func (r *ConstraintRecord) Rule(kind ConstraintKind) (any, bool) {
	v, ok := r.Rules[kind]
	return v, ok
}

// HasRules reports whether the record carries any rule, extra operand, or
// bound validator beyond defaults.
func (r *ConstraintRecord) HasRules() bool {
	return len(r.Rules) > 0 || len(r.Extra) > 0 || len(r.Validators) > 0 || r.Required
}
