package constraint

import (
	"reflect"
	"regexp"
	"sort"

	"go.uber.org/zap"

	"github.com/protomodel-lang/protomodel/internal/compiler/errors"
	"github.com/protomodel-lang/protomodel/internal/compiler/model"
	"github.com/protomodel-lang/protomodel/internal/metadata"
)

// renameTable translates raw provider keys to canonical constraint names.
// The required key is handled separately as the missing-default signal.
var renameTable = map[string]string{
	"min_len":   "min_length",
	"min_bytes": "min_length",
	"max_len":   "max_length",
	"max_bytes": "max_length",
	"gte":       "ge",
	"lte":       "le",
	"len_bytes": "len",
	"unique":    "unique_items",
	"regex":     "pattern",
}

// unsupportedKeys lists raw keys that are invalid for a given type
// classification and must be dropped with a diagnostic. The "*" row applies
// to every type.
var unsupportedKeys = map[string]map[string]bool{
	"bytes":  {"pattern": true, "regex": true},
	"string": {"min_bytes": true, "max_bytes": true},
	"*":      {"ignore_empty": true, "defined_only": true},
}

// temporalRawKeys are the raw keys that move into the type-prefixed key
// space on duration and timestamp fields.
var temporalRawKeys = map[string]bool{
	"lt": true, "le": true, "gt": true, "ge": true, "const": true,
	"in": true, "not_in": true, "lt_now": true, "gt_now": true, "within": true,
}

// kindByName resolves canonical constraint names to kinds.
var kindByName = map[string]model.ConstraintKind{
	"ge":           model.ConstraintGe,
	"le":           model.ConstraintLe,
	"gt":           model.ConstraintGt,
	"lt":           model.ConstraintLt,
	"const":        model.ConstraintConst,
	"min_length":   model.ConstraintMinLength,
	"max_length":   model.ConstraintMaxLength,
	"pattern":      model.ConstraintPattern,
	"unique_items": model.ConstraintUniqueItems,
	"min_items":    model.ConstraintMinItems,
	"max_items":    model.ConstraintMaxItems,

	"in":           model.ConstraintIn,
	"not_in":       model.ConstraintNotIn,
	"len":          model.ConstraintLen,
	"prefix":       model.ConstraintPrefix,
	"suffix":       model.ConstraintSuffix,
	"contains":     model.ConstraintContains,
	"not_contains": model.ConstraintNotContains,

	"duration_lt":     model.ConstraintDurationLt,
	"duration_le":     model.ConstraintDurationLe,
	"duration_gt":     model.ConstraintDurationGt,
	"duration_ge":     model.ConstraintDurationGe,
	"duration_const":  model.ConstraintDurationConst,
	"duration_in":     model.ConstraintDurationIn,
	"duration_not_in": model.ConstraintDurationNotIn,

	"timestamp_lt":     model.ConstraintTimestampLt,
	"timestamp_lt_now": model.ConstraintTimestampLtNow,
	"timestamp_le":     model.ConstraintTimestampLe,
	"timestamp_gt":     model.ConstraintTimestampGt,
	"timestamp_gt_now": model.ConstraintTimestampGtNow,
	"timestamp_ge":     model.ConstraintTimestampGe,
	"timestamp_const":  model.ConstraintTimestampConst,
	"timestamp_in":     model.ConstraintTimestampIn,
	"timestamp_not_in": model.ConstraintTimestampNotIn,
	"timestamp_within": model.ConstraintTimestampWithin,
}

var compoundKinds = map[model.ConstraintKind]bool{
	model.ConstraintIn: true, model.ConstraintNotIn: true, model.ConstraintLen: true,
	model.ConstraintPrefix: true, model.ConstraintSuffix: true,
	model.ConstraintContains: true, model.ConstraintNotContains: true,
}

// Directives are the field-emission controls carried by metadata rather
// than recorded as constraints.
type Directives struct {
	// Enable false suppresses the field from the output definition.
	Enable bool
	// SkipRules recompiles the field's nested message under a rule-free
	// output name.
	SkipRules bool
}

// Merger combines constraint metadata from an ordered provider list. Later
// providers override earlier ones per key; conflicting value shapes for the
// same key are a terminal error.
type Merger struct {
	providers []metadata.Provider
	logger    *zap.Logger
}

// NewMerger creates a merger over the given providers.
func NewMerger(providers []metadata.Provider, logger *zap.Logger) *Merger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Merger{providers: providers, logger: logger}
}

// MessageIgnored reports whether any provider suppresses rule parsing for
// the whole message.
func (m *Merger) MessageIgnored(fullName string) bool {
	for _, p := range m.providers {
		if meta, ok := p.Message(fullName); ok && meta.Ignored {
			return true
		}
	}
	return false
}

// OneOfMeta returns the merged metadata for a oneof group; later providers
// win outright.
func (m *Merger) OneOfMeta(fullName string) (metadata.OneOfMeta, bool) {
	var merged metadata.OneOfMeta
	found := false
	for _, p := range m.providers {
		if meta, ok := p.OneOf(fullName); ok {
			merged = meta
			found = true
		}
	}
	return merged, found
}

// Merge folds the raw metadata for a field into rec. typeName is the
// field's resolved type classification. It returns the emission directives
// plus any non-terminal diagnostics.
func (m *Merger) Merge(
	symbol, fieldFullName, fieldName, typeName string,
	rec *model.ConstraintRecord,
) (Directives, []*errors.CompilerError, error) {
	directives := Directives{Enable: true}

	raw, err := m.collect(symbol, fieldName, fieldFullName)
	if err != nil {
		return directives, nil, err
	}
	if len(raw) == 0 {
		return directives, nil, nil
	}

	var diags []*errors.CompilerError

	// Directive keys first: they control emission, not validation.
	if enable, ok := raw["enable"].(bool); ok {
		directives.Enable = enable
	}
	if skip, ok := raw["skip"].(bool); ok {
		directives.SkipRules = skip
	}
	if required, ok := boolKey(raw, "required", "miss_default"); ok && required {
		rec.Required = true
		rec.Default = nil
		rec.DefaultFactory = nil
	}
	if def, ok := raw["default"]; ok {
		rec.Default = def
		rec.DefaultFactory = nil
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch key {
		case "enable", "skip", "required", "miss_default", "default":
			continue
		}
		value := raw[key]

		if unsupportedKeys["*"][key] || unsupportedKeys[typeName][key] {
			diag := errors.NewUnsupportedConstraint(symbol, fieldName, key, typeName)
			m.logger.Warn("dropping unsupported constraint key",
				zap.String("symbol", symbol),
				zap.String("field", fieldName),
				zap.String("key", key),
				zap.String("type", typeName))
			diags = append(diags, diag)
			continue
		}

		// Temporal types claim the bare comparison keys into their
		// prefixed key space before generic renaming applies.
		if (typeName == "duration" || typeName == "timestamp") && temporalRawKeys[key] {
			prefixed := typeName + "_" + key
			kind, ok := kindByName[prefixed]
			if !ok {
				diags = append(diags, errors.NewUnsupportedConstraint(symbol, fieldName, prefixed, typeName))
				m.logger.Warn("dropping temporal constraint without validator",
					zap.String("symbol", symbol),
					zap.String("field", fieldName),
					zap.String("key", prefixed))
				continue
			}
			if err := m.bind(symbol, fieldName, kind, prefixed, value, rec); err != nil {
				return directives, diags, err
			}
			continue
		}

		canonical := key
		if renamed, ok := renameTable[key]; ok {
			canonical = renamed
		}

		kind, known := kindByName[canonical]
		switch {
		case known && compoundKinds[kind]:
			if err := m.bind(symbol, fieldName, kind, canonical, value, rec); err != nil {
				return directives, diags, err
			}
		case known && kind == model.ConstraintPattern:
			expr, ok := value.(string)
			if !ok {
				diags = append(diags, errors.NewUnsupportedConstraint(symbol, fieldName, canonical, typeName))
				continue
			}
			re, err := regexp.Compile(expr)
			if err != nil {
				diag := errors.NewUnsupportedConstraint(symbol, fieldName, canonical, typeName).
					WithActual(err.Error())
				m.logger.Warn("dropping unparsable pattern constraint",
					zap.String("symbol", symbol),
					zap.String("field", fieldName),
					zap.Error(err))
				diags = append(diags, diag)
				continue
			}
			rec.Rules[kind] = expr
			rec.Extra["pattern_compiled"] = re
		case known:
			rec.Rules[kind] = value
		default:
			// Unknown keys ride along as extra metadata for downstream
			// consumers.
			rec.Extra[canonical] = value
			m.logger.Debug("recording unrecognized constraint key as extra metadata",
				zap.String("symbol", symbol),
				zap.String("field", fieldName),
				zap.String("key", canonical))
		}
	}

	return directives, diags, nil
}

// bind stores a compound/temporal operand and attaches the registry
// validator for it.
func (m *Merger) bind(
	symbol, fieldName string,
	kind model.ConstraintKind,
	name string,
	value any,
	rec *model.ConstraintRecord,
) error {
	rec.Extra[name] = value
	validator, ok := Validator(kind, fieldName)
	if !ok {
		// Registry and kind tables are maintained together; a miss here is
		// a programming error worth failing loudly on.
		return errors.NewUnresolvableType(symbol, fieldName, "validator:"+name)
	}
	rec.Validators = append(rec.Validators, validator)
	return nil
}

// collect merges raw metadata across providers in order. Later providers
// override earlier ones per key; a shape change (list vs scalar vs mapping)
// for the same key is terminal.
func (m *Merger) collect(symbol, fieldName, fieldFullName string) (map[string]any, error) {
	var merged map[string]any
	for _, p := range m.providers {
		raw, ok := p.Field(fieldFullName)
		if !ok {
			continue
		}
		if merged == nil {
			merged = make(map[string]any, len(raw))
		}
		for key, value := range raw {
			if previous, exists := merged[key]; exists && shapeOf(previous) != shapeOf(value) {
				return nil, errors.NewConflictingMetadata(symbol, fieldName, key, previous, value)
			}
			merged[key] = value
		}
	}
	return merged, nil
}

func boolKey(raw map[string]any, keys ...string) (bool, bool) {
	for _, key := range keys {
		if v, ok := raw[key].(bool); ok {
			return v, true
		}
	}
	return false, false
}

func shapeOf(v any) string {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return "list"
	case reflect.Map:
		return "mapping"
	default:
		return "scalar"
	}
}
