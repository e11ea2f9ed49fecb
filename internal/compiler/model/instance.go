package model

import (
	"fmt"
	"reflect"
	"regexp"
	"time"

	"github.com/protomodel-lang/protomodel/internal/compiler/errors"
)

// extraPatternCompiled is the Extra key under which the merger stores the
// compiled form of a pattern rule.
const extraPatternCompiled = "pattern_compiled"

// Instance is a constructed, validated value of a model definition.
type Instance struct {
	def    *Definition
	values map[string]any
}

// Definition returns the definition the instance was constructed from.
func (i *Instance) Definition() *Definition {
	return i.def
}

// Get returns the value of a field, nil when unset.
func (i *Instance) Get(name string) any {
	return i.values[name]
}

// IsSet reports whether the field was populated (explicitly or by default).
func (i *Instance) IsSet(name string) bool {
	_, ok := i.values[name]
	return ok
}

// Values returns a copy of the populated field values.
func (i *Instance) Values() map[string]any {
	out := make(map[string]any, len(i.values))
	for k, v := range i.values {
		out[k] = v
	}
	return out
}

// NewInstance constructs a runtime-checked instance of the definition.
// Fields are processed in declared order: absent values take the field's
// default or default factory, a required field without a value fails, and
// supplied values run the field's constraint checks and bound validators
// followed by the definition's cross-field validators.
func (d *Definition) NewInstance(values map[string]any) (*Instance, error) {
	for name := range values {
		if d.Field(name) == nil {
			return nil, errors.NewUnknownField(d.FullName, name)
		}
	}

	populated := make(map[string]any, len(d.Fields))
	for _, field := range d.Fields {
		rec := field.Constraints
		value, supplied := values[field.Name]
		if !supplied {
			switch {
			case rec != nil && rec.Required:
				return nil, errors.NewMissingRequiredField(d.FullName, field.Name)
			case rec != nil && rec.DefaultFactory != nil:
				populated[field.Name] = rec.DefaultFactory()
			case rec != nil && rec.Default != nil:
				populated[field.Name] = rec.Default
			case field.Optional:
				populated[field.Name] = nil
			}
			continue
		}

		if rec != nil {
			if err := checkRules(d.FullName, field.Name, value, rec); err != nil {
				return nil, err
			}
			for _, validator := range rec.Validators {
				if err := validator.Check(d.FullName, field.Name, value, rec); err != nil {
					return nil, err
				}
			}
		}
		populated[field.Name] = value
	}

	for _, cross := range d.CrossField {
		if err := cross.Check(d.FullName, values); err != nil {
			return nil, err
		}
	}

	return &Instance{def: d, values: populated}, nil
}

// checkRules applies the simple range and shape rules recorded on the field.
func checkRules(symbol, field string, value any, rec *ConstraintRecord) error {
	for kind, operand := range rec.Rules {
		switch kind {
		case ConstraintGe:
			if ok, err := compareNumeric(value, operand, func(a, b float64) bool { return a >= b }); err != nil {
				return errors.NewConstraintViolation(symbol, field, err.Error())
			} else if !ok {
				return violationf(symbol, field, "%v must be >= %v", value, operand)
			}
		case ConstraintLe:
			if ok, err := compareNumeric(value, operand, func(a, b float64) bool { return a <= b }); err != nil {
				return errors.NewConstraintViolation(symbol, field, err.Error())
			} else if !ok {
				return violationf(symbol, field, "%v must be <= %v", value, operand)
			}
		case ConstraintGt:
			if ok, err := compareNumeric(value, operand, func(a, b float64) bool { return a > b }); err != nil {
				return errors.NewConstraintViolation(symbol, field, err.Error())
			} else if !ok {
				return violationf(symbol, field, "%v must be > %v", value, operand)
			}
		case ConstraintLt:
			if ok, err := compareNumeric(value, operand, func(a, b float64) bool { return a < b }); err != nil {
				return errors.NewConstraintViolation(symbol, field, err.Error())
			} else if !ok {
				return violationf(symbol, field, "%v must be < %v", value, operand)
			}
		case ConstraintConst:
			if !looseEqual(value, operand) {
				return violationf(symbol, field, "%v must equal %v", value, operand)
			}
		case ConstraintMinLength:
			n, ok := lengthOf(value)
			if !ok {
				return violationf(symbol, field, "value of type %T has no length", value)
			}
			if minLen, err := toInt(operand); err == nil && n < minLen {
				return violationf(symbol, field, "length %d below minimum %d", n, minLen)
			}
		case ConstraintMaxLength:
			n, ok := lengthOf(value)
			if !ok {
				return violationf(symbol, field, "value of type %T has no length", value)
			}
			if maxLen, err := toInt(operand); err == nil && n > maxLen {
				return violationf(symbol, field, "length %d above maximum %d", n, maxLen)
			}
		case ConstraintMinItems:
			n, ok := lengthOf(value)
			if !ok {
				return violationf(symbol, field, "value of type %T has no length", value)
			}
			if minItems, err := toInt(operand); err == nil && n < minItems {
				return violationf(symbol, field, "%d item(s) below minimum %d", n, minItems)
			}
		case ConstraintMaxItems:
			n, ok := lengthOf(value)
			if !ok {
				return violationf(symbol, field, "value of type %T has no length", value)
			}
			if maxItems, err := toInt(operand); err == nil && n > maxItems {
				return violationf(symbol, field, "%d item(s) above maximum %d", n, maxItems)
			}
		case ConstraintPattern:
			re, err := patternFor(rec, operand)
			if err != nil {
				return errors.NewConstraintViolation(symbol, field, err.Error())
			}
			str, ok := value.(string)
			if !ok {
				return violationf(symbol, field, "pattern applies to strings, got %T", value)
			}
			if !re.MatchString(str) {
				return violationf(symbol, field, "%q does not match pattern %q", str, re.String())
			}
		case ConstraintUniqueItems:
			if enabled, _ := operand.(bool); !enabled {
				continue
			}
			items, ok := toSlice(value)
			if !ok {
				return violationf(symbol, field, "unique_items applies to lists, got %T", value)
			}
			seen := make(map[string]bool, len(items))
			for _, item := range items {
				key := fmt.Sprintf("%v", item)
				if seen[key] {
					return violationf(symbol, field, "duplicate item %v", item)
				}
				seen[key] = true
			}
		}
	}
	return nil
}

func violationf(symbol, field, format string, args ...any) error {
	return errors.NewConstraintViolation(symbol, field, fmt.Sprintf(format, args...))
}

func patternFor(rec *ConstraintRecord, operand any) (*regexp.Regexp, error) {
	if re, ok := rec.Extra[extraPatternCompiled].(*regexp.Regexp); ok {
		return re, nil
	}
	expr, ok := operand.(string)
	if !ok {
		return nil, fmt.Errorf("pattern operand must be a string, got %T", operand)
	}
	return regexp.Compile(expr)
}

func compareNumeric(value, operand any, cmp func(a, b float64) bool) (bool, error) {
	a, err := toFloat(value)
	if err != nil {
		return false, err
	}
	b, err := toFloat(operand)
	if err != nil {
		return false, err
	}
	return cmp(a, b), nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case time.Duration:
		return n.Seconds(), nil
	default:
		return 0, fmt.Errorf("value of type %T is not numeric", v)
	}
}

func toInt(v any) (int, error) {
	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func lengthOf(v any) (int, bool) {
	switch val := v.(type) {
	case string:
		return len(val), true
	case []byte:
		return len(val), true
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			return rv.Len(), true
		}
		return 0, false
	}
}

func toSlice(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// looseEqual compares values after numeric widening so int(5) equals
// float64(5) regardless of how the provider decoded the operand.
func looseEqual(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	fa, errA := toFloat(a)
	fb, errB := toFloat(b)
	return errA == nil && errB == nil && fa == fb
}

// IsPopulated reports whether a value counts as "set" for oneof
// enforcement: non-nil and not the zero value of its type.
func IsPopulated(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return !rv.IsZero()
}
