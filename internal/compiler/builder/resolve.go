package builder

import (
	"strings"
	"unicode"

	"github.com/protomodel-lang/protomodel/internal/compiler/errors"
	"github.com/protomodel-lang/protomodel/internal/compiler/model"
	"github.com/protomodel-lang/protomodel/internal/compiler/schema"
)

// resolvedField is the outcome of resolving one schema field reference:
// the target type, its classification name used for constraint filtering,
// and the value or factory construction falls back to when input omits it.
type resolvedField struct {
	typ            model.Type
	typeName       string
	defaultValue   any
	defaultFactory func() any
}

// resolveField maps a field's schema type reference onto a model type.
// Resolution order matters: well-known types short-circuit before message
// recursion, map entries take precedence over the repeated label, and the
// repeated wrap happens strictly after the element type is settled.
func (c *Compiler) resolveField(
	msg *schema.Message,
	field *schema.Field,
	outputName string,
	skipRules bool,
	scope map[string]*model.NestedDef,
) (resolvedField, error) {
	res, err := c.resolveElement(msg, field, outputName, skipRules, scope)
	if err != nil {
		return resolvedField{}, err
	}

	if field.Label == schema.LabelRepeated && res.typeName != "map" {
		res.typ = &model.List{Elem: res.typ}
		res.typeName = "repeated"
		res.defaultValue = nil
		res.defaultFactory = func() any { return []any{} }
	}
	return res, nil
}

// resolveElement resolves the field's own type, ignoring the repeated label.
func (c *Compiler) resolveElement(
	msg *schema.Message,
	field *schema.Field,
	outputName string,
	skipRules bool,
	scope map[string]*model.NestedDef,
) (resolvedField, error) {
	switch field.Kind {
	case schema.KindMessage:
		return c.resolveMessageField(msg, field, outputName, skipRules, scope)
	case schema.KindEnum:
		return c.resolveEnumField(msg, field, scope)
	default:
		typ, ok := c.catalog.Scalar(field.Kind)
		if !ok {
			return resolvedField{}, errors.NewUnknownScalarType(msg.FullName, field.Name, field.Kind.String())
		}
		return resolvedField{
			typ:          typ,
			typeName:     field.Kind.String(),
			defaultValue: field.Default,
		}, nil
	}
}

// resolveMessageField handles the four message shapes in precedence order:
// well-known type, map entry, self-reference, and ordinary message.
func (c *Compiler) resolveMessageField(
	msg *schema.Message,
	field *schema.Field,
	outputName string,
	skipRules bool,
	scope map[string]*model.NestedDef,
) (resolvedField, error) {
	target := field.Message
	if target == nil {
		return resolvedField{}, errors.NewUnresolvableType(msg.FullName, field.Name, "message")
	}

	if wk, ok := c.catalog.WellKnown(target.FullName); ok {
		return resolvedField{
			typ:            wk.Type,
			typeName:       wk.TypeName,
			defaultFactory: wk.DefaultFactory,
		}, nil
	}

	if target.IsMapEntry() {
		return c.resolveMapField(msg, field, target, outputName, skipRules, scope)
	}

	if target.FullName == msg.FullName {
		// Self-reference: the enclosing definition is by construction still
		// in progress, so the only representable result is a forward ref.
		return resolvedField{
			typ:      &model.ModelRef{Name: outputName, FullName: target.FullName, Forward: true},
			typeName: "message",
		}, nil
	}

	if nested, ok := scope[target.FullName]; ok && nested.Definition != nil {
		nested.Used = true
		return resolvedField{
			typ:      &model.ModelRef{Name: nested.Definition.Name, FullName: target.FullName},
			typeName: "message",
		}, nil
	}

	name := target.Name
	if target.File != "" && target.File != msg.File {
		name = fileNamePrefix(target.File) + name
	}
	def, err := c.compileMessage(target, name, skipRules)
	if err != nil {
		if errors.IsCyclicReference(err) {
			return resolvedField{
				typ:      &model.ModelRef{Name: name, FullName: target.FullName, Forward: true},
				typeName: "message",
			}, nil
		}
		return resolvedField{}, err
	}
	return resolvedField{
		typ:      &model.ModelRef{Name: def.Name, FullName: target.FullName},
		typeName: "message",
	}, nil
}

// resolveMapField resolves the synthetic key/value pair of a map entry.
// Map classification takes precedence over the repeated label, and the
// entry message itself never surfaces.
func (c *Compiler) resolveMapField(
	msg *schema.Message,
	field *schema.Field,
	entry *schema.Message,
	outputName string,
	skipRules bool,
	scope map[string]*model.NestedDef,
) (resolvedField, error) {
	keyField, valueField := entry.KeyValue()
	if keyField == nil || valueField == nil {
		return resolvedField{}, errors.NewUnresolvableType(msg.FullName, field.Name, entry.FullName)
	}

	keyRes, err := c.resolveElement(msg, keyField, outputName, skipRules, scope)
	if err != nil {
		return resolvedField{}, err
	}
	valueRes, err := c.resolveElement(msg, valueField, outputName, skipRules, scope)
	if err != nil {
		return resolvedField{}, err
	}

	return resolvedField{
		typ:            &model.Map{Key: keyRes.typ, Value: valueRes.typ},
		typeName:       "map",
		defaultFactory: func() any { return map[any]any{} },
	}, nil
}

// resolveEnumField resolves an enum reference, preferring the nested scope
// and synthesizing an origin-prefixed reference for cross-file enums.
func (c *Compiler) resolveEnumField(
	msg *schema.Message,
	field *schema.Field,
	scope map[string]*model.NestedDef,
) (resolvedField, error) {
	enum := field.Enum
	if enum == nil {
		return resolvedField{}, errors.NewUnresolvableType(msg.FullName, field.Name, "enum")
	}

	var ref *model.EnumRef
	if nested, ok := scope[enum.FullName]; ok && nested.Enum != nil {
		nested.Used = true
		ref = &model.EnumRef{
			Name:     nested.Enum.Name,
			FullName: nested.Enum.FullName,
			Values:   nested.Enum.Values,
		}
	} else {
		name := enum.Name
		if enum.File != "" && enum.File != msg.File {
			name = fileNamePrefix(enum.File) + name
		}
		ref = &model.EnumRef{Name: name, FullName: enum.FullName, Values: enumRefValues(enum)}
	}

	return resolvedField{
		typ:          ref,
		typeName:     "enum",
		defaultValue: int32(0),
	}, nil
}

func enumRefValues(enum *schema.Enum) []model.EnumValue {
	values := make([]model.EnumValue, len(enum.Values))
	for i, v := range enum.Values {
		values[i] = model.EnumValue{Name: v.Name, Number: v.Number}
	}
	return values
}

// fileNamePrefix derives the output-name prefix for cross-file references
// from the declaring file's path: directory segments and the extensionless
// base name, each upper-camel cased. "example_proto/common/single.proto"
// becomes "ExampleProtoCommonSingle".
func fileNamePrefix(file string) string {
	last := strings.LastIndexByte(file, '/')
	if dot := strings.IndexByte(file[last+1:], '.'); dot >= 0 {
		file = file[:last+1+dot]
	}
	var b strings.Builder
	for _, segment := range strings.Split(file, "/") {
		for _, part := range strings.Split(segment, "_") {
			runes := []rune(part)
			if len(runes) == 0 {
				continue
			}
			runes[0] = unicode.ToUpper(runes[0])
			b.WriteString(string(runes))
		}
	}
	return b.String()
}
