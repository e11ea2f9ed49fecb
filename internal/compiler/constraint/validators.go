// Package constraint normalizes and merges constraint metadata from ordered
// providers into per-field constraint records, and owns the registry of
// named construction-time validators bound to compound and temporal rules.
package constraint

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/protomodel-lang/protomodel/internal/compiler/errors"
	"github.com/protomodel-lang/protomodel/internal/compiler/model"
)

// registry maps constraint kinds to their validator implementations. Kinds
// are bound explicitly rather than resolved by name concatenation, so an
// unknown kind is a compile-time gap instead of a runtime miss.
var registry = map[model.ConstraintKind]model.CheckFunc{
	model.ConstraintIn:          checkIn,
	model.ConstraintNotIn:       checkNotIn,
	model.ConstraintLen:         checkLen,
	model.ConstraintPrefix:      checkPrefix,
	model.ConstraintSuffix:      checkSuffix,
	model.ConstraintContains:    checkContains,
	model.ConstraintNotContains: checkNotContains,

	model.ConstraintDurationLt:    durationCompare(model.ConstraintDurationLt, func(v, bound time.Duration) bool { return v < bound }, "<"),
	model.ConstraintDurationLe:    durationCompare(model.ConstraintDurationLe, func(v, bound time.Duration) bool { return v <= bound }, "<="),
	model.ConstraintDurationGt:    durationCompare(model.ConstraintDurationGt, func(v, bound time.Duration) bool { return v > bound }, ">"),
	model.ConstraintDurationGe:    durationCompare(model.ConstraintDurationGe, func(v, bound time.Duration) bool { return v >= bound }, ">="),
	model.ConstraintDurationConst: durationCompare(model.ConstraintDurationConst, func(v, bound time.Duration) bool { return v == bound }, "=="),
	model.ConstraintDurationIn:    checkDurationIn,
	model.ConstraintDurationNotIn: checkDurationNotIn,

	model.ConstraintTimestampLt:     timestampCompare(model.ConstraintTimestampLt, func(v, bound float64) bool { return v < bound }, "<"),
	model.ConstraintTimestampLe:     timestampCompare(model.ConstraintTimestampLe, func(v, bound float64) bool { return v <= bound }, "<="),
	model.ConstraintTimestampGt:     timestampCompare(model.ConstraintTimestampGt, func(v, bound float64) bool { return v > bound }, ">"),
	model.ConstraintTimestampGe:     timestampCompare(model.ConstraintTimestampGe, func(v, bound float64) bool { return v >= bound }, ">="),
	model.ConstraintTimestampConst:  timestampCompare(model.ConstraintTimestampConst, func(v, bound float64) bool { return v == bound }, "=="),
	model.ConstraintTimestampLtNow:  checkTimestampLtNow,
	model.ConstraintTimestampGtNow:  checkTimestampGtNow,
	model.ConstraintTimestampIn:     checkTimestampIn,
	model.ConstraintTimestampNotIn:  checkTimestampNotIn,
	model.ConstraintTimestampWithin: checkTimestampWithin,
}

// Validator returns the registry validator bound under the given field
// name. ok is false for kinds without a registered validator.
func Validator(kind model.ConstraintKind, fieldName string) (model.BoundValidator, bool) {
	check, ok := registry[kind]
	if !ok {
		return model.BoundValidator{}, false
	}
	return model.BoundValidator{
		Name:  fmt.Sprintf("%s_%s_validator", fieldName, kind),
		Kind:  kind,
		Check: check,
	}, true
}

func operand(rec *model.ConstraintRecord, kind model.ConstraintKind) any {
	return rec.Extra[kind.String()]
}

func checkIn(symbol, field string, value any, rec *model.ConstraintRecord) error {
	set, _ := operand(rec, model.ConstraintIn).([]any)
	if !memberOf(value, set) {
		return errors.NewConstraintViolation(symbol, field, fmt.Sprintf("%v not in %v", value, set))
	}
	return nil
}

func checkNotIn(symbol, field string, value any, rec *model.ConstraintRecord) error {
	set, _ := operand(rec, model.ConstraintNotIn).([]any)
	if memberOf(value, set) {
		return errors.NewConstraintViolation(symbol, field, fmt.Sprintf("%v in %v", value, set))
	}
	return nil
}

func checkLen(symbol, field string, value any, rec *model.ConstraintRecord) error {
	want, err := intOperand(operand(rec, model.ConstraintLen))
	if err != nil {
		return errors.NewConstraintViolation(symbol, field, err.Error())
	}
	n, ok := sizeOf(value)
	if !ok {
		return errors.NewConstraintViolation(symbol, field, fmt.Sprintf("value of type %T has no length", value))
	}
	if n != want {
		return errors.NewConstraintViolation(symbol, field, fmt.Sprintf("length %d does not equal %d", n, want))
	}
	return nil
}

func checkPrefix(symbol, field string, value any, rec *model.ConstraintRecord) error {
	prefix, _ := operand(rec, model.ConstraintPrefix).(string)
	str, ok := value.(string)
	if !ok || !strings.HasPrefix(str, prefix) {
		return errors.NewConstraintViolation(symbol, field, fmt.Sprintf("%v does not start with prefix %q", value, prefix))
	}
	return nil
}

func checkSuffix(symbol, field string, value any, rec *model.ConstraintRecord) error {
	suffix, _ := operand(rec, model.ConstraintSuffix).(string)
	str, ok := value.(string)
	if !ok || !strings.HasSuffix(str, suffix) {
		return errors.NewConstraintViolation(symbol, field, fmt.Sprintf("%v does not end with suffix %q", value, suffix))
	}
	return nil
}

func checkContains(symbol, field string, value any, rec *model.ConstraintRecord) error {
	substr, _ := operand(rec, model.ConstraintContains).(string)
	str, ok := value.(string)
	if !ok || !strings.Contains(str, substr) {
		return errors.NewConstraintViolation(symbol, field, fmt.Sprintf("%v does not contain %q", value, substr))
	}
	return nil
}

func checkNotContains(symbol, field string, value any, rec *model.ConstraintRecord) error {
	substr, _ := operand(rec, model.ConstraintNotContains).(string)
	if str, ok := value.(string); ok && strings.Contains(str, substr) {
		return errors.NewConstraintViolation(symbol, field, fmt.Sprintf("%v contains %q", value, substr))
	}
	return nil
}

func durationCompare(kind model.ConstraintKind, cmp func(v, bound time.Duration) bool, op string) model.CheckFunc {
	return func(symbol, field string, value any, rec *model.ConstraintRecord) error {
		v, err := durationOf(value)
		if err != nil {
			return errors.NewConstraintViolation(symbol, field, err.Error())
		}
		bound, err := durationOf(operand(rec, kind))
		if err != nil {
			return errors.NewConstraintViolation(symbol, field, err.Error())
		}
		if !cmp(v, bound) {
			return errors.NewConstraintViolation(symbol, field, fmt.Sprintf("%v must be %s %v", v, op, bound))
		}
		return nil
	}
}

func checkDurationIn(symbol, field string, value any, rec *model.ConstraintRecord) error {
	return durationMembership(symbol, field, value, rec, model.ConstraintDurationIn, true)
}

func checkDurationNotIn(symbol, field string, value any, rec *model.ConstraintRecord) error {
	return durationMembership(symbol, field, value, rec, model.ConstraintDurationNotIn, false)
}

func durationMembership(symbol, field string, value any, rec *model.ConstraintRecord, kind model.ConstraintKind, wantMember bool) error {
	v, err := durationOf(value)
	if err != nil {
		return errors.NewConstraintViolation(symbol, field, err.Error())
	}
	set, _ := operand(rec, kind).([]any)
	member := false
	for _, item := range set {
		if d, err := durationOf(item); err == nil && d == v {
			member = true
			break
		}
	}
	if member != wantMember {
		verb := "not in"
		if !wantMember {
			verb = "in"
		}
		return errors.NewConstraintViolation(symbol, field, fmt.Sprintf("%v %s %v", v, verb, set))
	}
	return nil
}

func timestampCompare(kind model.ConstraintKind, cmp func(v, bound float64) bool, op string) model.CheckFunc {
	return func(symbol, field string, value any, rec *model.ConstraintRecord) error {
		v, err := timestampOf(value)
		if err != nil {
			return errors.NewConstraintViolation(symbol, field, err.Error())
		}
		bound, err := timestampOf(operand(rec, kind))
		if err != nil {
			return errors.NewConstraintViolation(symbol, field, err.Error())
		}
		if !cmp(v, bound) {
			return errors.NewConstraintViolation(symbol, field, fmt.Sprintf("timestamp %v must be %s %v", v, op, bound))
		}
		return nil
	}
}

func checkTimestampLtNow(symbol, field string, value any, rec *model.ConstraintRecord) error {
	v, err := timestampOf(value)
	if err != nil {
		return errors.NewConstraintViolation(symbol, field, err.Error())
	}
	now := float64(time.Now().UnixMicro()) / 1e6
	if enabled, _ := operand(rec, model.ConstraintTimestampLtNow).(bool); enabled && v >= now {
		return errors.NewConstraintViolation(symbol, field, fmt.Sprintf("timestamp %v must be before now", v))
	}
	return nil
}

func checkTimestampGtNow(symbol, field string, value any, rec *model.ConstraintRecord) error {
	v, err := timestampOf(value)
	if err != nil {
		return errors.NewConstraintViolation(symbol, field, err.Error())
	}
	now := float64(time.Now().UnixMicro()) / 1e6
	if enabled, _ := operand(rec, model.ConstraintTimestampGtNow).(bool); enabled && v <= now {
		return errors.NewConstraintViolation(symbol, field, fmt.Sprintf("timestamp %v must be after now", v))
	}
	return nil
}

// checkTimestampWithin enforces a two-sided window around the current time:
// |now - v| must not exceed the configured duration.
func checkTimestampWithin(symbol, field string, value any, rec *model.ConstraintRecord) error {
	v, err := timestampOf(value)
	if err != nil {
		return errors.NewConstraintViolation(symbol, field, err.Error())
	}
	window, err := durationOf(operand(rec, model.ConstraintTimestampWithin))
	if err != nil {
		return errors.NewConstraintViolation(symbol, field, err.Error())
	}
	now := float64(time.Now().UnixMicro()) / 1e6
	delta := now - v
	if delta < 0 {
		delta = -delta
	}
	if delta > window.Seconds() {
		return errors.NewConstraintViolation(symbol, field,
			fmt.Sprintf("timestamp %v outside %v window around now", v, window))
	}
	return nil
}

func checkTimestampIn(symbol, field string, value any, rec *model.ConstraintRecord) error {
	return timestampMembership(symbol, field, value, rec, model.ConstraintTimestampIn, true)
}

func checkTimestampNotIn(symbol, field string, value any, rec *model.ConstraintRecord) error {
	return timestampMembership(symbol, field, value, rec, model.ConstraintTimestampNotIn, false)
}

func timestampMembership(symbol, field string, value any, rec *model.ConstraintRecord, kind model.ConstraintKind, wantMember bool) error {
	v, err := timestampOf(value)
	if err != nil {
		return errors.NewConstraintViolation(symbol, field, err.Error())
	}
	set, _ := operand(rec, kind).([]any)
	member := false
	for _, item := range set {
		if ts, err := timestampOf(item); err == nil && ts == v {
			member = true
			break
		}
	}
	if member != wantMember {
		verb := "not in"
		if !wantMember {
			verb = "in"
		}
		return errors.NewConstraintViolation(symbol, field, fmt.Sprintf("timestamp %v %s %v", v, verb, set))
	}
	return nil
}

// durationOf coerces duration operands: native durations, numeric seconds,
// or strings in either Go duration syntax or protobuf "123s" form.
func durationOf(v any) (time.Duration, error) {
	switch d := v.(type) {
	case time.Duration:
		return d, nil
	case int:
		return time.Duration(d) * time.Second, nil
	case int64:
		return time.Duration(d) * time.Second, nil
	case float64:
		return time.Duration(d * float64(time.Second)), nil
	case string:
		if parsed, err := time.ParseDuration(d); err == nil {
			return parsed, nil
		}
		if secs, err := strconv.ParseFloat(strings.TrimSuffix(d, "s"), 64); err == nil {
			return time.Duration(secs * float64(time.Second)), nil
		}
		return 0, fmt.Errorf("cannot parse duration %q", d)
	default:
		return 0, fmt.Errorf("cannot interpret %T as duration", v)
	}
}

// timestampOf coerces timestamp operands to epoch seconds: time values,
// numerics, or RFC 3339 strings.
func timestampOf(v any) (float64, error) {
	switch t := v.(type) {
	case time.Time:
		return float64(t.UnixMicro()) / 1e6, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case float64:
		return t, nil
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return 0, fmt.Errorf("cannot parse timestamp %q: %w", t, err)
		}
		return float64(parsed.UnixMicro()) / 1e6, nil
	default:
		return 0, fmt.Errorf("cannot interpret %T as timestamp", v)
	}
}

func intOperand(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected integer operand, got %T", v)
	}
}

func sizeOf(v any) (int, bool) {
	switch val := v.(type) {
	case string:
		return len(val), true
	case []byte:
		return len(val), true
	case []any:
		return len(val), true
	default:
		return 0, false
	}
}

func memberOf(v any, set []any) bool {
	for _, item := range set {
		if equalLoose(v, item) {
			return true
		}
	}
	return false
}

// equalLoose widens numerics before comparing so set operands decoded as
// int match values supplied as int64 or float64.
func equalLoose(a, b any) bool {
	if a == b {
		return true
	}
	fa, okA := asFloat(a)
	fb, okB := asFloat(b)
	return okA && okB && fa == fb
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
