package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRuleFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFileProviderFields(t *testing.T) {
	path := writeRuleFile(t, `
messages:
  demo.User:
    fields:
      age: {ge: 0, le: 150}
      name: {min_len: 3}
`)
	provider, err := LoadFile(path)
	require.NoError(t, err)

	raw, ok := provider.Field("demo.User.age")
	require.True(t, ok)
	assert.Equal(t, 0, raw["ge"])
	assert.Equal(t, 150, raw["le"])

	_, ok = provider.Field("demo.User.missing")
	assert.False(t, ok)
	_, ok = provider.Field("demo.Other.age")
	assert.False(t, ok)
	_, ok = provider.Field("nodots")
	assert.False(t, ok)
}

func TestFileProviderKeepsDottedNamesWholeKeys(t *testing.T) {
	// Schema names contain dots, which must not be treated as key path
	// separators during decoding.
	path := writeRuleFile(t, `
messages:
  corp.billing.v1.Invoice:
    fields:
      total: {ge: 1}
`)
	provider, err := LoadFile(path)
	require.NoError(t, err)

	require.Len(t, provider.doc.Messages, 1)
	_, ok := provider.doc.Messages["corp.billing.v1.invoice"]
	require.True(t, ok, "message key split apart: %v", provider.doc.Messages)

	raw, ok := provider.Field("corp.billing.v1.Invoice.total")
	require.True(t, ok)
	assert.Equal(t, 1, raw["ge"])
}

func TestFileProviderCaseInsensitiveLookups(t *testing.T) {
	path := writeRuleFile(t, `
messages:
  demo.User:
    fields:
      Age: {ge: 18}
`)
	provider, err := LoadFile(path)
	require.NoError(t, err)

	// The file layer folds keys to lower case, so mixed-case schema names
	// still resolve.
	raw, ok := provider.Field("Demo.USER.AGE")
	require.True(t, ok)
	assert.Equal(t, 18, raw["ge"])
}

func TestFileProviderOneOf(t *testing.T) {
	path := writeRuleFile(t, `
messages:
  demo.Contact:
    oneofs:
      demo.Contact.channel:
        required: true
        optional_fields: [fax]
`)
	provider, err := LoadFile(path)
	require.NoError(t, err)

	meta, ok := provider.OneOf("demo.Contact.channel")
	require.True(t, ok)
	assert.True(t, meta.Required)
	assert.Equal(t, []string{"fax"}, meta.OptionalFields)

	_, ok = provider.OneOf("demo.Contact.other")
	assert.False(t, ok)
}

func TestFileProviderMessage(t *testing.T) {
	path := writeRuleFile(t, `
messages:
  demo.Internal:
    ignored: true
  demo.User:
    fields:
      age: {ge: 0}
`)
	provider, err := LoadFile(path)
	require.NoError(t, err)

	meta, ok := provider.Message("demo.Internal")
	require.True(t, ok)
	assert.True(t, meta.Ignored)

	meta, ok = provider.Message("demo.User")
	require.True(t, ok)
	assert.False(t, meta.Ignored)

	_, ok = provider.Message("demo.Unknown")
	assert.False(t, ok)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)

	path := writeRuleFile(t, "messages: [not, a, mapping]")
	_, err = LoadFile(path)
	assert.Error(t, err)
}

func TestMapProvider(t *testing.T) {
	p := &MapProvider{
		Fields: map[string]map[string]any{
			"demo.User.age": {"ge": 5},
		},
		OneOfs: map[string]OneOfMeta{
			"demo.User.contact": {Required: true},
		},
		Messages: map[string]MessageMeta{
			"demo.Internal": {Ignored: true},
		},
	}

	raw, ok := p.Field("demo.User.age")
	require.True(t, ok)
	assert.Equal(t, 5, raw["ge"])

	meta, ok := p.OneOf("demo.User.contact")
	require.True(t, ok)
	assert.True(t, meta.Required)

	msg, ok := p.Message("demo.Internal")
	require.True(t, ok)
	assert.True(t, msg.Ignored)

	_, ok = p.Field("demo.User.name")
	assert.False(t, ok)
}
