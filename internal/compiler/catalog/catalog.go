// Package catalog provides the static type catalog: the mapping from schema
// scalar kinds to model scalar types and the registry of well-known
// composite types (duration, timestamp, wrappers, any) with their
// special-case output types and default factories.
package catalog

import (
	"time"

	"github.com/protomodel-lang/protomodel/internal/compiler/model"
	"github.com/protomodel-lang/protomodel/internal/compiler/schema"
)

// WellKnown describes the fixed target mapping of a well-known schema type.
type WellKnown struct {
	// TypeName is the classification used for constraint key filtering
	// ("duration", "timestamp", "any", ...).
	TypeName string
	// Type is the fixed target type.
	Type model.Type
	// DefaultFactory produces the value used when construction input omits
	// the field. Nil when absence should stay absent.
	DefaultFactory func() any
}

// Catalog maps schema primitive kinds and well-known composite types to
// their target model types.
type Catalog struct {
	scalars   map[schema.Kind]model.ScalarKind
	wellKnown map[string]WellKnown
}

// Default returns the standard catalog.
func Default() *Catalog {
	return &Catalog{
		scalars:   defaultScalars,
		wellKnown: defaultWellKnown,
	}
}

// Scalar maps a schema scalar kind to its target type. ok is false for
// kinds the catalog cannot map (enum, message, unknown).
func (c *Catalog) Scalar(kind schema.Kind) (model.Type, bool) {
	scalarKind, ok := c.scalars[kind]
	if !ok {
		return nil, false
	}
	return model.NewScalar(scalarKind), true
}

// WellKnown looks up a well-known composite type by its fully-qualified
// schema name.
func (c *Catalog) WellKnown(fullName string) (WellKnown, bool) {
	wk, ok := c.wellKnown[fullName]
	return wk, ok
}

var defaultScalars = map[schema.Kind]model.ScalarKind{
	schema.KindDouble:   model.ScalarFloat64,
	schema.KindFloat:    model.ScalarFloat32,
	schema.KindInt32:    model.ScalarInt32,
	schema.KindInt64:    model.ScalarInt64,
	schema.KindUint32:   model.ScalarUint32,
	schema.KindUint64:   model.ScalarUint64,
	schema.KindSint32:   model.ScalarInt32,
	schema.KindSint64:   model.ScalarInt64,
	schema.KindFixed32:  model.ScalarUint32,
	schema.KindFixed64:  model.ScalarUint64,
	schema.KindSfixed32: model.ScalarInt32,
	schema.KindSfixed64: model.ScalarInt64,
	schema.KindBool:     model.ScalarBool,
	schema.KindString:   model.ScalarString,
	schema.KindBytes:    model.ScalarBytes,
}

var defaultWellKnown = map[string]WellKnown{
	"google.protobuf.Duration": {
		TypeName:       "duration",
		Type:           model.NewScalar(model.ScalarDuration),
		DefaultFactory: func() any { return time.Duration(0) },
	},
	"google.protobuf.Timestamp": {
		TypeName:       "timestamp",
		Type:           model.NewScalar(model.ScalarTimestamp),
		DefaultFactory: func() any { return time.Time{} },
	},
	"google.protobuf.Any": {
		TypeName:       "any",
		Type:           model.NewScalar(model.ScalarAny),
		DefaultFactory: func() any { return map[string]any{} },
	},
	"google.protobuf.Struct": {
		TypeName:       "struct",
		Type:           model.NewScalar(model.ScalarStruct),
		DefaultFactory: func() any { return map[string]any{} },
	},
	"google.protobuf.Empty": {
		TypeName: "empty",
		Type:     model.NewScalar(model.ScalarEmpty),
	},
	"google.protobuf.DoubleValue": wrapper("double", model.ScalarFloat64),
	"google.protobuf.FloatValue":  wrapper("float", model.ScalarFloat32),
	"google.protobuf.Int64Value":  wrapper("int64", model.ScalarInt64),
	"google.protobuf.UInt64Value": wrapper("uint64", model.ScalarUint64),
	"google.protobuf.Int32Value":  wrapper("int32", model.ScalarInt32),
	"google.protobuf.UInt32Value": wrapper("uint32", model.ScalarUint32),
	"google.protobuf.BoolValue":   wrapper("bool", model.ScalarBool),
	"google.protobuf.StringValue": wrapper("string", model.ScalarString),
	"google.protobuf.BytesValue":  wrapper("bytes", model.ScalarBytes),
}

// wrapper types resolve to an optional scalar: absence maps to nil rather
// than the scalar zero value.
func wrapper(name string, kind model.ScalarKind) WellKnown {
	return WellKnown{
		TypeName: name,
		Type:     &model.Optional{Elem: model.NewScalar(kind)},
	}
}
