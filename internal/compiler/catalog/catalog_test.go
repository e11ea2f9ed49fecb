package catalog

import (
	"testing"

	"github.com/protomodel-lang/protomodel/internal/compiler/model"
	"github.com/protomodel-lang/protomodel/internal/compiler/schema"
)

func TestScalarMapping(t *testing.T) {
	c := Default()

	tests := []struct {
		kind schema.Kind
		want model.ScalarKind
	}{
		{schema.KindDouble, model.ScalarFloat64},
		{schema.KindFloat, model.ScalarFloat32},
		{schema.KindInt32, model.ScalarInt32},
		{schema.KindSint32, model.ScalarInt32},
		{schema.KindSfixed32, model.ScalarInt32},
		{schema.KindInt64, model.ScalarInt64},
		{schema.KindSint64, model.ScalarInt64},
		{schema.KindSfixed64, model.ScalarInt64},
		{schema.KindUint32, model.ScalarUint32},
		{schema.KindFixed32, model.ScalarUint32},
		{schema.KindUint64, model.ScalarUint64},
		{schema.KindFixed64, model.ScalarUint64},
		{schema.KindBool, model.ScalarBool},
		{schema.KindString, model.ScalarString},
		{schema.KindBytes, model.ScalarBytes},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			typ, ok := c.Scalar(tt.kind)
			if !ok {
				t.Fatalf("expected mapping for %s", tt.kind)
			}
			scalar, ok := typ.(*model.Scalar)
			if !ok || scalar.Kind != tt.want {
				t.Errorf("Scalar(%s) = %v, want %s", tt.kind, typ, tt.want)
			}
		})
	}
}

func TestScalarRejectsNonScalars(t *testing.T) {
	c := Default()
	for _, kind := range []schema.Kind{schema.KindMessage, schema.KindEnum, schema.KindUnknown} {
		if _, ok := c.Scalar(kind); ok {
			t.Errorf("expected no scalar mapping for %s", kind)
		}
	}
}

func TestWellKnownTypes(t *testing.T) {
	c := Default()

	duration, ok := c.WellKnown("google.protobuf.Duration")
	if !ok {
		t.Fatal("expected Duration mapping")
	}
	if duration.TypeName != "duration" {
		t.Errorf("expected duration classification, got %s", duration.TypeName)
	}
	scalar, ok := duration.Type.(*model.Scalar)
	if !ok || scalar.Kind != model.ScalarDuration {
		t.Errorf("expected duration scalar, got %v", duration.Type)
	}

	timestamp, ok := c.WellKnown("google.protobuf.Timestamp")
	if !ok || timestamp.TypeName != "timestamp" {
		t.Fatalf("expected Timestamp mapping, got %+v", timestamp)
	}

	if _, ok := c.WellKnown("google.protobuf.FieldMask"); ok {
		t.Error("expected unmapped well-known type to miss")
	}
	if _, ok := c.WellKnown("demo.User"); ok {
		t.Error("expected ordinary message to miss")
	}
}

func TestWrapperTypesAreOptional(t *testing.T) {
	c := Default()

	wrappers := map[string]model.ScalarKind{
		"google.protobuf.DoubleValue": model.ScalarFloat64,
		"google.protobuf.FloatValue":  model.ScalarFloat32,
		"google.protobuf.Int64Value":  model.ScalarInt64,
		"google.protobuf.UInt64Value": model.ScalarUint64,
		"google.protobuf.Int32Value":  model.ScalarInt32,
		"google.protobuf.UInt32Value": model.ScalarUint32,
		"google.protobuf.BoolValue":   model.ScalarBool,
		"google.protobuf.StringValue": model.ScalarString,
		"google.protobuf.BytesValue":  model.ScalarBytes,
	}

	for fullName, want := range wrappers {
		wk, ok := c.WellKnown(fullName)
		if !ok {
			t.Errorf("expected wrapper mapping for %s", fullName)
			continue
		}
		opt, ok := wk.Type.(*model.Optional)
		if !ok {
			t.Errorf("expected %s to map to an optional, got %T", fullName, wk.Type)
			continue
		}
		scalar, ok := opt.Elem.(*model.Scalar)
		if !ok || scalar.Kind != want {
			t.Errorf("expected %s to wrap %s, got %v", fullName, want, opt.Elem)
		}
	}
}

func TestWellKnownDefaultFactories(t *testing.T) {
	c := Default()

	structWK, ok := c.WellKnown("google.protobuf.Struct")
	if !ok || structWK.DefaultFactory == nil {
		t.Fatal("expected Struct default factory")
	}
	if _, isMap := structWK.DefaultFactory().(map[string]any); !isMap {
		t.Errorf("expected empty mapping default, got %T", structWK.DefaultFactory())
	}

	durationWK, _ := c.WellKnown("google.protobuf.Duration")
	if durationWK.DefaultFactory == nil {
		t.Fatal("expected Duration default factory")
	}
}
