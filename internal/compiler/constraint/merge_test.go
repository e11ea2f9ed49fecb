package constraint

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protomodel-lang/protomodel/internal/compiler/errors"
	"github.com/protomodel-lang/protomodel/internal/compiler/model"
	"github.com/protomodel-lang/protomodel/internal/metadata"
)

func fieldProvider(fullName string, raw map[string]any) *metadata.MapProvider {
	return &metadata.MapProvider{
		Fields: map[string]map[string]any{fullName: raw},
	}
}

func mergeOne(t *testing.T, typeName string, raw map[string]any) (*model.ConstraintRecord, Directives, []*errors.CompilerError) {
	t.Helper()
	m := NewMerger([]metadata.Provider{fieldProvider("demo.User.age", raw)}, nil)
	rec := model.NewConstraintRecord(nil, nil)
	directives, diags, err := m.Merge("demo.User", "demo.User.age", "age", typeName, rec)
	require.NoError(t, err)
	return rec, directives, diags
}

func TestMergeRenamesRawKeys(t *testing.T) {
	rec, _, diags := mergeOne(t, "string", map[string]any{
		"min_len": 2,
		"max_len": 64,
		"gte":     1,
		"lte":     9,
		"regex":   "^[a-z]+$",
		"unique":  true,
	})
	assert.Empty(t, diags)
	assert.Equal(t, 2, rec.Rules[model.ConstraintMinLength])
	assert.Equal(t, 64, rec.Rules[model.ConstraintMaxLength])
	assert.Equal(t, 1, rec.Rules[model.ConstraintGe])
	assert.Equal(t, 9, rec.Rules[model.ConstraintLe])
	assert.Equal(t, "^[a-z]+$", rec.Rules[model.ConstraintPattern])
	assert.Equal(t, true, rec.Rules[model.ConstraintUniqueItems])
}

func TestMergeDropsUnsupportedKeys(t *testing.T) {
	tests := []struct {
		name     string
		typeName string
		raw      map[string]any
	}{
		{"pattern on bytes", "bytes", map[string]any{"pattern": "^a"}},
		{"regex on bytes", "bytes", map[string]any{"regex": "^a"}},
		{"min_bytes on string", "string", map[string]any{"min_bytes": 3}},
		{"ignore_empty anywhere", "int32", map[string]any{"ignore_empty": true}},
		{"defined_only anywhere", "enum", map[string]any{"defined_only": true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, directives, diags := mergeOne(t, tt.typeName, tt.raw)
			require.Len(t, diags, 1)
			assert.Equal(t, errors.ErrUnsupportedConstraint, diags[0].Code)
			assert.Equal(t, errors.SeverityWarning, diags[0].Severity)
			assert.True(t, directives.Enable)
			assert.False(t, rec.HasRules())
		})
	}
}

func TestMergeTemporalKeysArePrefixed(t *testing.T) {
	rec, _, diags := mergeOne(t, "duration", map[string]any{
		"lt": "10s",
		"ge": "1s",
	})
	assert.Empty(t, diags)
	assert.Equal(t, "10s", rec.Extra["duration_lt"])
	assert.Equal(t, "1s", rec.Extra["duration_ge"])
	assert.Len(t, rec.Validators, 2)
	// Temporal keys claim the raw name before renaming, so nothing lands
	// in the generic comparison rules.
	assert.NotContains(t, rec.Rules, model.ConstraintLt)
	assert.NotContains(t, rec.Rules, model.ConstraintGe)
}

func TestMergeTimestampWithinBindsValidator(t *testing.T) {
	rec, _, diags := mergeOne(t, "timestamp", map[string]any{
		"within": "5m",
		"lt_now": true,
	})
	assert.Empty(t, diags)
	assert.Equal(t, "5m", rec.Extra["timestamp_within"])
	assert.Equal(t, true, rec.Extra["timestamp_lt_now"])
	names := make([]string, 0, len(rec.Validators))
	for _, v := range rec.Validators {
		names = append(names, v.Name)
	}
	assert.Contains(t, names, "age_timestamp_within_validator")
	assert.Contains(t, names, "age_timestamp_lt_now_validator")
}

func TestMergeTemporalKeysLeftAloneOnOtherTypes(t *testing.T) {
	rec, _, _ := mergeOne(t, "int32", map[string]any{"lt": 10})
	assert.Equal(t, 10, rec.Rules[model.ConstraintLt])
	assert.Empty(t, rec.Validators)
}

func TestMergeCompoundKeysBindValidators(t *testing.T) {
	rec, _, diags := mergeOne(t, "string", map[string]any{
		"in":     []any{"a", "b"},
		"prefix": "a",
	})
	assert.Empty(t, diags)
	assert.Equal(t, []any{"a", "b"}, rec.Extra["in"])
	assert.Equal(t, "a", rec.Extra["prefix"])
	require.Len(t, rec.Validators, 2)
}

func TestMergePatternPrecompiled(t *testing.T) {
	rec, _, diags := mergeOne(t, "string", map[string]any{"pattern": "^ab+$"})
	assert.Empty(t, diags)
	assert.Equal(t, "^ab+$", rec.Rules[model.ConstraintPattern])
	re, ok := rec.Extra["pattern_compiled"].(*regexp.Regexp)
	require.True(t, ok)
	assert.True(t, re.MatchString("abb"))
}

func TestMergeInvalidPatternDropped(t *testing.T) {
	rec, _, diags := mergeOne(t, "string", map[string]any{"pattern": "([unclosed"})
	require.Len(t, diags, 1)
	assert.Equal(t, errors.ErrUnsupportedConstraint, diags[0].Code)
	assert.NotContains(t, rec.Rules, model.ConstraintPattern)
	assert.NotContains(t, rec.Extra, "pattern_compiled")
}

func TestMergeNonStringPatternDropped(t *testing.T) {
	rec, _, diags := mergeOne(t, "string", map[string]any{"pattern": 42})
	require.Len(t, diags, 1)
	assert.NotContains(t, rec.Rules, model.ConstraintPattern)
}

func TestMergeDirectives(t *testing.T) {
	t.Run("enable false", func(t *testing.T) {
		_, directives, _ := mergeOne(t, "string", map[string]any{"enable": false})
		assert.False(t, directives.Enable)
	})
	t.Run("skip", func(t *testing.T) {
		_, directives, _ := mergeOne(t, "message", map[string]any{"skip": true})
		assert.True(t, directives.SkipRules)
	})
	t.Run("required clears default", func(t *testing.T) {
		rec := model.NewConstraintRecord(nil, nil)
		rec.Default = "stale"
		m := NewMerger([]metadata.Provider{fieldProvider("demo.User.age", map[string]any{"required": true})}, nil)
		_, _, err := m.Merge("demo.User", "demo.User.age", "age", "int32", rec)
		require.NoError(t, err)
		assert.True(t, rec.Required)
		assert.Nil(t, rec.Default)
	})
	t.Run("miss_default alias", func(t *testing.T) {
		rec, _, _ := mergeOne(t, "int32", map[string]any{"miss_default": true})
		assert.True(t, rec.Required)
	})
	t.Run("default", func(t *testing.T) {
		rec, _, _ := mergeOne(t, "int32", map[string]any{"default": 7})
		assert.Equal(t, 7, rec.Default)
		assert.Nil(t, rec.DefaultFactory)
	})
}

func TestMergeUnknownKeyRecordedAsExtra(t *testing.T) {
	rec, _, diags := mergeOne(t, "string", map[string]any{"example": "alice"})
	assert.Empty(t, diags)
	assert.Equal(t, "alice", rec.Extra["example"])
}

func TestMergeProviderPrecedence(t *testing.T) {
	first := fieldProvider("demo.User.age", map[string]any{"ge": 5, "le": 99})
	second := fieldProvider("demo.User.age", map[string]any{"ge": 18})
	m := NewMerger([]metadata.Provider{first, second}, nil)

	rec := model.NewConstraintRecord(nil, nil)
	_, diags, err := m.Merge("demo.User", "demo.User.age", "age", "int32", rec)
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, 18, rec.Rules[model.ConstraintGe])
	assert.Equal(t, 99, rec.Rules[model.ConstraintLe])
}

func TestMergeShapeConflictIsTerminal(t *testing.T) {
	first := fieldProvider("demo.User.age", map[string]any{"in": []any{1, 2}})
	second := fieldProvider("demo.User.age", map[string]any{"in": 3})
	m := NewMerger([]metadata.Provider{first, second}, nil)

	rec := model.NewConstraintRecord(nil, nil)
	_, _, err := m.Merge("demo.User", "demo.User.age", "age", "int32", rec)
	require.Error(t, err)
	assert.Equal(t, errors.ErrConflictingMetadata, errors.CodeOf(err))
}

func TestMergeNoMetadataIsNoop(t *testing.T) {
	m := NewMerger(nil, nil)
	rec := model.NewConstraintRecord(nil, nil)
	directives, diags, err := m.Merge("demo.User", "demo.User.age", "age", "int32", rec)
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.True(t, directives.Enable)
	assert.False(t, rec.HasRules())
}

func TestMessageIgnored(t *testing.T) {
	m := NewMerger([]metadata.Provider{&metadata.MapProvider{
		Messages: map[string]metadata.MessageMeta{"demo.Raw": {Ignored: true}},
	}}, nil)
	assert.True(t, m.MessageIgnored("demo.Raw"))
	assert.False(t, m.MessageIgnored("demo.User"))
}

func TestOneOfMetaLaterProviderWins(t *testing.T) {
	first := &metadata.MapProvider{OneOfs: map[string]metadata.OneOfMeta{
		"demo.User.contact": {Required: true},
	}}
	second := &metadata.MapProvider{OneOfs: map[string]metadata.OneOfMeta{
		"demo.User.contact": {Required: false, OptionalFields: []string{"fax"}},
	}}
	m := NewMerger([]metadata.Provider{first, second}, nil)

	meta, ok := m.OneOfMeta("demo.User.contact")
	require.True(t, ok)
	assert.False(t, meta.Required)
	assert.Equal(t, []string{"fax"}, meta.OptionalFields)

	_, ok = m.OneOfMeta("demo.User.other")
	assert.False(t, ok)
}
