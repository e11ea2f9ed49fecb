// Package oneof derives oneof groups, required semantics, and
// proto3-optional unwrapping from a message's field/oneof relationships.
package oneof

import (
	"github.com/protomodel-lang/protomodel/internal/compiler/errors"
	"github.com/protomodel-lang/protomodel/internal/compiler/model"
	"github.com/protomodel-lang/protomodel/internal/compiler/schema"
	"github.com/protomodel-lang/protomodel/internal/metadata"
)

// GroupMetaFunc looks up merged metadata for a fully-qualified oneof name.
type GroupMetaFunc func(fullName string) (metadata.OneOfMeta, bool)

// Resolution is the per-message outcome: true oneof groups plus the set of
// field full names whose type must be unwrapped to Optional(T).
type Resolution struct {
	Groups   []*model.OneOfGroup
	Optional map[string]bool
}

// IsOptional reports whether a field resolved as proto3-optional.
func (r *Resolution) IsOptional(fieldFullName string) bool {
	return r.Optional[fieldFullName]
}

// Group returns the group containing the named field, nil when the field is
// not an enforced oneof member.
func (r *Resolution) Group(fieldName string) *model.OneOfGroup {
	for _, g := range r.Groups {
		for _, member := range g.Fields {
			if member == fieldName {
				return g
			}
		}
	}
	return nil
}

// Resolve walks the message's oneof declarations. A group named by
// prefixing its sole member with an underscore is the proto3-optional
// marker, not a true oneof: the member becomes optional and the group is
// excluded from output. Remaining groups become OneOfGroup records whose
// required flag and intra-group optional members come from metadata.
func Resolve(msg *schema.Message, meta GroupMetaFunc) (*Resolution, error) {
	res := &Resolution{Optional: make(map[string]bool)}

	markerGroups := make(map[string]bool)
	members := make(map[string][]*schema.Field)
	for _, field := range msg.Fields {
		if field.OneofName == "" {
			continue
		}
		if field.Proto3Optional || field.OneofName == "_"+field.Name {
			markerGroups[field.OneofName] = true
			res.Optional[field.FullName] = true
			continue
		}
		members[field.OneofName] = append(members[field.OneofName], field)
	}

	for _, name := range msg.OneofNames {
		if markerGroups[name] {
			continue
		}
		groupFields := members[name]
		if len(groupFields) == 0 {
			continue
		}

		fullName := msg.FullName + "." + name
		group := &model.OneOfGroup{
			Name:     name,
			FullName: fullName,
			Exempt:   make(map[string]bool),
		}
		memberSet := make(map[string]bool, len(groupFields))
		for _, field := range groupFields {
			group.Fields = append(group.Fields, field.Name)
			memberSet[field.Name] = true
		}

		if groupMeta, ok := meta(fullName); ok {
			group.Required = groupMeta.Required
			for _, optName := range groupMeta.OptionalFields {
				if !memberSet[optName] {
					return nil, errors.NewInvalidOneOfState(msg.FullName, name,
						"metadata marks non-member field "+optName+" as optional")
				}
				group.Exempt[optName] = true
				res.Optional[msg.FullName+"."+optName] = true
			}
		}

		if group.Required && len(group.EnforcedFields()) == 0 {
			return nil, errors.NewInvalidOneOfState(msg.FullName, name,
				"every member of a required group is marked optional")
		}

		res.Groups = append(res.Groups, group)
	}

	return res, nil
}

// RequiredValidator builds the exactly-one cross-field check attached to a
// required group: constructing an instance succeeds only when exactly one
// enforced member carries a populated (non-default, non-nil) value.
func RequiredValidator(group *model.OneOfGroup) model.CrossFieldValidator {
	enforced := group.EnforcedFields()
	return model.CrossFieldValidator{
		Name: group.Name + "_one_of_validator",
		Check: func(symbol string, values map[string]any) error {
			populated := 0
			for _, field := range enforced {
				if v, ok := values[field]; ok && model.IsPopulated(v) {
					populated++
				}
			}
			if populated != 1 {
				return errors.NewOneOfViolation(symbol, group.Name, populated)
			}
			return nil
		},
	}
}
