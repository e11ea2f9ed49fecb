package metadata

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// fileDocument is the shape of a constraint rule file:
//
//	messages:
//	  demo.User:
//	    ignored: false
//	    fields:
//	      age: {ge: 0, le: 150}
//	    oneofs:
//	      demo.User.contact:
//	        required: true
//	        optional_fields: [fax]
type fileDocument struct {
	Messages map[string]fileMessage `mapstructure:"messages"`
}

type fileMessage struct {
	Ignored bool                      `mapstructure:"ignored"`
	Fields  map[string]map[string]any `mapstructure:"fields"`
	OneOfs  map[string]fileOneOf      `mapstructure:"oneofs"`
}

type fileOneOf struct {
	Required       bool     `mapstructure:"required"`
	OptionalFields []string `mapstructure:"optional_fields"`
}

// FileProvider serves metadata from a YAML or JSON rule file. Viper folds
// keys to lower case, so all lookups are case-insensitive on the schema
// name side.
type FileProvider struct {
	doc fileDocument
}

// LoadFile reads a rule file into a provider. The key delimiter is
// overridden so fully-qualified schema names survive as literal map keys
// instead of being split on their dots.
func LoadFile(path string) (*FileProvider, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}

	var doc fileDocument
	if err := v.Unmarshal(&doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rule file %s: %w", path, err)
	}
	return &FileProvider{doc: doc}, nil
}

// Field implements Provider. fullName is <message full name>.<field name>.
func (p *FileProvider) Field(fullName string) (map[string]any, bool) {
	messageName, fieldName, ok := splitOwner(fullName)
	if !ok {
		return nil, false
	}
	msg, ok := p.message(messageName)
	if !ok {
		return nil, false
	}
	raw, ok := msg.Fields[strings.ToLower(fieldName)]
	return raw, ok
}

// OneOf implements Provider.
func (p *FileProvider) OneOf(fullName string) (OneOfMeta, bool) {
	messageName, _, ok := splitOwner(fullName)
	if !ok {
		return OneOfMeta{}, false
	}
	msg, ok := p.message(messageName)
	if !ok {
		return OneOfMeta{}, false
	}
	group, ok := msg.OneOfs[strings.ToLower(fullName)]
	if !ok {
		return OneOfMeta{}, false
	}
	return OneOfMeta{Required: group.Required, OptionalFields: group.OptionalFields}, true
}

// Message implements Provider.
func (p *FileProvider) Message(fullName string) (MessageMeta, bool) {
	msg, ok := p.message(fullName)
	if !ok {
		return MessageMeta{}, false
	}
	return MessageMeta{Ignored: msg.Ignored}, true
}

func (p *FileProvider) message(fullName string) (fileMessage, bool) {
	msg, ok := p.doc.Messages[strings.ToLower(fullName)]
	return msg, ok
}

func splitOwner(fullName string) (owner, leaf string, ok bool) {
	idx := strings.LastIndex(fullName, ".")
	if idx <= 0 || idx == len(fullName)-1 {
		return "", "", false
	}
	return fullName[:idx], fullName[idx+1:], true
}
