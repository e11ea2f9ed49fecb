// Package protoload converts compiled protobuf descriptor sets into the
// schema structures the compiler consumes. It is the only package aware of
// the descriptor wire format; everything downstream works on schema values.
package protoload

import (
	"fmt"
	"os"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/protomodel-lang/protomodel/internal/compiler/schema"
)

// Set is a loaded descriptor set with memoized schema conversions. The memo
// is what lets mutually recursive messages share one schema.Message value
// instead of expanding forever.
type Set struct {
	files    *protoregistry.Files
	messages map[string]*schema.Message
}

// LoadFile reads a serialized FileDescriptorSet, the output of
// `protoc --descriptor_set_out`.
func LoadFile(path string) (*Set, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor set: %w", err)
	}
	var fds descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(raw, &fds); err != nil {
		return nil, fmt.Errorf("decoding descriptor set %s: %w", path, err)
	}
	return NewSet(&fds)
}

// NewSet builds a Set from an in-memory FileDescriptorSet.
func NewSet(fds *descriptorpb.FileDescriptorSet) (*Set, error) {
	files, err := protodesc.NewFiles(fds)
	if err != nil {
		return nil, fmt.Errorf("resolving descriptor set: %w", err)
	}
	return &Set{
		files:    files,
		messages: make(map[string]*schema.Message),
	}, nil
}

// Message converts the named message, resolving transitively referenced
// types on demand.
func (s *Set) Message(fullName string) (*schema.Message, error) {
	desc, err := s.files.FindDescriptorByName(protoreflect.FullName(fullName))
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", fullName, err)
	}
	md, ok := desc.(protoreflect.MessageDescriptor)
	if !ok {
		return nil, fmt.Errorf("%s is a %T, not a message", fullName, desc)
	}
	return s.convertMessage(md), nil
}

// Messages converts every top-level message in the set, in file order.
func (s *Set) Messages() []*schema.Message {
	var out []*schema.Message
	s.files.RangeFiles(func(fd protoreflect.FileDescriptor) bool {
		msgs := fd.Messages()
		for i := 0; i < msgs.Len(); i++ {
			out = append(out, s.convertMessage(msgs.Get(i)))
		}
		return true
	})
	return out
}

func (s *Set) convertMessage(md protoreflect.MessageDescriptor) *schema.Message {
	fullName := string(md.FullName())
	if cached, ok := s.messages[fullName]; ok {
		return cached
	}

	msg := &schema.Message{
		Name:     string(md.Name()),
		FullName: fullName,
		File:     md.ParentFile().Path(),
		MapEntry: md.IsMapEntry(),
	}
	// Registered before field conversion so self and mutual references
	// resolve to this same value.
	s.messages[fullName] = msg

	nested := md.Messages()
	for i := 0; i < nested.Len(); i++ {
		msg.Nested = append(msg.Nested, s.convertMessage(nested.Get(i)))
	}
	enums := md.Enums()
	for i := 0; i < enums.Len(); i++ {
		msg.Enums = append(msg.Enums, convertEnum(enums.Get(i)))
	}
	oneofs := md.Oneofs()
	for i := 0; i < oneofs.Len(); i++ {
		msg.OneofNames = append(msg.OneofNames, string(oneofs.Get(i).Name()))
	}
	fields := md.Fields()
	for i := 0; i < fields.Len(); i++ {
		msg.Fields = append(msg.Fields, s.convertField(fields.Get(i)))
	}
	return msg
}

func (s *Set) convertField(fd protoreflect.FieldDescriptor) *schema.Field {
	field := &schema.Field{
		Name:           string(fd.Name()),
		FullName:       string(fd.FullName()),
		Kind:           convertKind(fd.Kind()),
		Proto3Optional: fd.HasOptionalKeyword(),
	}
	if fd.Cardinality() == protoreflect.Repeated {
		field.Label = schema.LabelRepeated
	}
	if od := fd.ContainingOneof(); od != nil {
		field.OneofName = string(od.Name())
	}
	if fd.HasDefault() {
		field.Default = fd.Default().Interface()
	}
	switch fd.Kind() {
	case protoreflect.MessageKind, protoreflect.GroupKind:
		field.Message = s.convertMessage(fd.Message())
	case protoreflect.EnumKind:
		field.Enum = convertEnum(fd.Enum())
	}
	return field
}

func convertEnum(ed protoreflect.EnumDescriptor) *schema.Enum {
	enum := &schema.Enum{
		Name:     string(ed.Name()),
		FullName: string(ed.FullName()),
		File:     ed.ParentFile().Path(),
	}
	values := ed.Values()
	for i := 0; i < values.Len(); i++ {
		v := values.Get(i)
		enum.Values = append(enum.Values, schema.EnumValue{
			Name:   string(v.Name()),
			Number: int32(v.Number()),
		})
	}
	return enum
}

var kindTable = map[protoreflect.Kind]schema.Kind{
	protoreflect.DoubleKind:   schema.KindDouble,
	protoreflect.FloatKind:    schema.KindFloat,
	protoreflect.Int32Kind:    schema.KindInt32,
	protoreflect.Int64Kind:    schema.KindInt64,
	protoreflect.Uint32Kind:   schema.KindUint32,
	protoreflect.Uint64Kind:   schema.KindUint64,
	protoreflect.Sint32Kind:   schema.KindSint32,
	protoreflect.Sint64Kind:   schema.KindSint64,
	protoreflect.Fixed32Kind:  schema.KindFixed32,
	protoreflect.Fixed64Kind:  schema.KindFixed64,
	protoreflect.Sfixed32Kind: schema.KindSfixed32,
	protoreflect.Sfixed64Kind: schema.KindSfixed64,
	protoreflect.BoolKind:     schema.KindBool,
	protoreflect.StringKind:   schema.KindString,
	protoreflect.BytesKind:    schema.KindBytes,
	protoreflect.EnumKind:     schema.KindEnum,
	protoreflect.MessageKind:  schema.KindMessage,
	protoreflect.GroupKind:    schema.KindMessage,
}

func convertKind(k protoreflect.Kind) schema.Kind {
	if kind, ok := kindTable[k]; ok {
		return kind
	}
	return schema.KindUnknown
}
