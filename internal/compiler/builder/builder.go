// Package builder orchestrates model compilation: the recursive walk over
// schema messages that resolves field types, merges constraint metadata,
// disambiguates oneof/optional semantics, and memoizes results while
// breaking reference cycles.
package builder

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/protomodel-lang/protomodel/internal/compiler/cache"
	"github.com/protomodel-lang/protomodel/internal/compiler/catalog"
	"github.com/protomodel-lang/protomodel/internal/compiler/constraint"
	"github.com/protomodel-lang/protomodel/internal/compiler/errors"
	"github.com/protomodel-lang/protomodel/internal/compiler/model"
	"github.com/protomodel-lang/protomodel/internal/compiler/oneof"
	"github.com/protomodel-lang/protomodel/internal/compiler/schema"
	"github.com/protomodel-lang/protomodel/internal/metadata"
)

// unvalidatedSuffix marks the rule-free variant produced for fields
// carrying a skip-validation directive.
const unvalidatedSuffix = "Unvalidated"

// Compiler compiles schema messages into model definitions. One compiler is
// a single compilation session: recursive calls share its cache, and its
// logger carries the session id.
type Compiler struct {
	cache   *cache.Cache
	catalog *catalog.Catalog
	merger  *constraint.Merger
	logger  *zap.Logger
	diags   errors.ErrorList
}

// Option configures a Compiler.
type Option func(*settings)

type settings struct {
	cache     *cache.Cache
	catalog   *catalog.Catalog
	providers []metadata.Provider
	logger    *zap.Logger
}

// WithCache supplies an externally-owned cache so repeated invocations
// share resolved nested definitions across root messages.
func WithCache(c *cache.Cache) Option {
	return func(s *settings) { s.cache = c }
}

// WithCatalog overrides the default type catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *settings) { s.catalog = c }
}

// WithProviders sets the ordered constraint metadata providers. Later
// providers override earlier ones per key.
func WithProviders(providers ...metadata.Provider) Option {
	return func(s *settings) { s.providers = providers }
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// New creates a compiler session. Omitting WithCache uses a private,
// run-scoped cache.
func New(opts ...Option) *Compiler {
	s := settings{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}
	if s.cache == nil {
		s.cache = cache.New()
	}
	if s.catalog == nil {
		s.catalog = catalog.Default()
	}
	logger := s.logger.With(zap.String("session", uuid.NewString()))
	return &Compiler{
		cache:   s.cache,
		catalog: s.catalog,
		merger:  constraint.NewMerger(s.providers, logger),
		logger:  logger,
	}
}

// Cache exposes the session cache.
func (c *Compiler) Cache() *cache.Cache {
	return c.cache
}

// Diagnostics returns the non-terminal diagnostics accumulated so far.
func (c *Compiler) Diagnostics() errors.ErrorList {
	return c.diags
}

// Compile produces the model definition for a root message.
func (c *Compiler) Compile(msg *schema.Message) (*model.Definition, error) {
	return c.compileMessage(msg, msg.Name, false)
}

// CompileVariant compiles a message under an explicit output name and
// rule-variant flag.
func (c *Compiler) CompileVariant(msg *schema.Message, outputName string, skipRules bool) (*model.Definition, error) {
	if outputName == "" {
		outputName = msg.Name
	}
	return c.compileMessage(msg, outputName, skipRules)
}

// compileMessage is the recursive core. It owns the cache key lifecycle:
// completed results return unchanged, a key already in progress signals a
// cyclic reference to the caller, and a failed resolution removes its
// sentinel before propagating so the failure never poisons the cache.
func (c *Compiler) compileMessage(msg *schema.Message, outputName string, skipRules bool) (def *model.Definition, err error) {
	key := cache.Key{FullName: msg.FullName, OutputName: outputName, SkipRules: skipRules}

	if cached, inProgress, ok := c.cache.Get(key); ok {
		if inProgress {
			return nil, errors.NewCyclicReference(msg.FullName)
		}
		return cached, nil
	}
	c.cache.Begin(key)
	defer func() {
		if err != nil {
			c.cache.Abort(key)
		}
	}()

	ignored := c.merger.MessageIgnored(msg.FullName)
	applyRules := !skipRules && !ignored

	scope, err := c.compileNested(msg, skipRules)
	if err != nil {
		return nil, err
	}

	groupMeta := func(fullName string) (metadata.OneOfMeta, bool) {
		if !applyRules {
			return metadata.OneOfMeta{}, false
		}
		return c.merger.OneOfMeta(fullName)
	}
	oneofRes, err := oneof.Resolve(msg, groupMeta)
	if err != nil {
		return nil, err
	}

	def = &model.Definition{
		Name:      outputName,
		FullName:  msg.FullName,
		SkipRules: skipRules,
		Nested:    scope,
	}

	for _, field := range msg.Fields {
		resolved, err := c.resolveField(msg, field, outputName, skipRules, scope)
		if err != nil {
			return nil, err
		}

		rec := model.NewConstraintRecord(resolved.defaultValue, resolved.defaultFactory)
		directives := constraint.Directives{Enable: true}
		if applyRules {
			var diags []*errors.CompilerError
			directives, diags, err = c.merger.Merge(msg.FullName, field.FullName, field.Name, resolved.typeName, rec)
			if err != nil {
				return nil, err
			}
			c.diags = append(c.diags, diags...)
		}

		if !directives.Enable {
			c.logger.Debug("field suppressed by enable=false directive",
				zap.String("symbol", msg.FullName),
				zap.String("field", field.Name))
			continue
		}

		fieldType := resolved.typ
		if directives.SkipRules {
			fieldType, err = c.applySkipDirective(msg, field, fieldType, scope)
			if err != nil {
				return nil, err
			}
		}

		optional := oneofRes.IsOptional(field.FullName)
		if optional {
			if _, already := fieldType.(*model.Optional); !already {
				fieldType = &model.Optional{Elem: fieldType}
			}
		}

		def.Fields = append(def.Fields, &model.FieldDef{
			Name:        field.Name,
			Type:        fieldType,
			TypeName:    resolved.typeName,
			Constraints: rec,
			Optional:    optional,
		})
	}

	def.OneOfs = oneofRes.Groups
	for _, group := range def.OneOfs {
		if group.Required {
			def.CrossField = append(def.CrossField, oneof.RequiredValidator(group))
		}
	}

	for _, fullName := range def.UnusedNested() {
		c.logger.Debug("nested definition unused by enclosing message",
			zap.String("symbol", msg.FullName),
			zap.String("nested", fullName))
	}

	c.cache.Complete(key, def)
	return def, nil
}

// compileNested produces definitions for the message's own nested
// declarations. Map-entry synthetics are never surfaced; everything else is
// compiled eagerly and flagged unused until a field references it.
func (c *Compiler) compileNested(msg *schema.Message, skipRules bool) (map[string]*model.NestedDef, error) {
	scope := make(map[string]*model.NestedDef)
	for _, nested := range msg.Nested {
		if nested.IsMapEntry() {
			continue
		}
		nestedDef, err := c.compileMessage(nested, nested.Name, skipRules)
		if err != nil {
			if errors.IsCyclicReference(err) {
				// The nested message is a participant in the cycle being
				// resolved above us; a field reference will produce a
				// forward ref instead.
				continue
			}
			return nil, err
		}
		scope[nested.FullName] = &model.NestedDef{Definition: nestedDef}
	}
	for _, enum := range msg.Enums {
		scope[enum.FullName] = &model.NestedDef{
			Enum: &model.EnumDef{
				Name:     enum.Name,
				FullName: enum.FullName,
				Values:   enumValues(enum),
			},
		}
	}
	return scope, nil
}

// applySkipDirective recompiles a message-typed field's target under a
// rule-free output name so the same schema type can appear both validated
// and unvalidated without cache collisions.
func (c *Compiler) applySkipDirective(
	msg *schema.Message,
	field *schema.Field,
	fieldType model.Type,
	scope map[string]*model.NestedDef,
) (model.Type, error) {
	ref, ok := model.Unwrap(fieldType).(*model.ModelRef)
	if !ok || field.Message == nil {
		// Skip only applies to plain message fields; anything else keeps
		// its resolved type.
		return fieldType, nil
	}

	skipName := ref.Name + unvalidatedSuffix
	skipDef, err := c.compileMessage(field.Message, skipName, true)
	if err != nil {
		if errors.IsCyclicReference(err) {
			return &model.ModelRef{Name: skipName, FullName: field.Message.FullName, Forward: true}, nil
		}
		return nil, err
	}

	scope[field.Message.FullName+unvalidatedSuffix] = &model.NestedDef{
		Definition: skipDef,
		Used:       true,
	}
	return &model.ModelRef{Name: skipDef.Name, FullName: field.Message.FullName}, nil
}

func enumValues(enum *schema.Enum) []model.EnumValue {
	values := make([]model.EnumValue, len(enum.Values))
	for i, v := range enum.Values {
		values[i] = model.EnumValue{Name: v.Name, Number: v.Number}
	}
	return values
}
