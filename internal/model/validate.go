package model

import (
	"fmt"
	"regexp"

	"github.com/vanshika2720/cartography-sub000/internal/types"
)

// identifierPattern constrains labels, relationship labels, property names,
// and bound field names. Everything matching it can be interpolated into a
// Cypher statement without quoting, so validation here is what keeps the
// querybuilder injection-safe.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

func validationError(format string, args ...any) error {
	return types.NewError(types.CONFIG_VALIDATION_FAILED, fmt.Sprintf(format, args...))
}

// Validate checks the node schema for structural errors. It fails fast with
// a configuration error naming the schema and offending field; no store
// mutation happens for an invalid schema.
func (s *NodeSchema) Validate() error {
	if !validIdentifier(s.Label) {
		return validationError("node schema %q: invalid label", s.Label)
	}
	if len(s.Properties) == 0 {
		return validationError("node schema %s: no properties declared", s.Label)
	}

	seen := make(map[string]bool, len(s.Properties))
	hasKey := false
	for _, p := range s.Properties {
		if err := validateProperty(s.Label, p); err != nil {
			return err
		}
		if seen[p.Name] {
			return validationError("node schema %s: duplicate property %q", s.Label, p.Name)
		}
		seen[p.Name] = true
		// List bindings fan out relationship matches; they have no meaning
		// as a stored node property.
		if p.Binding.Source() == SourceRowList {
			return validationError("node schema %s: property %q cannot bind a list",
				s.Label, p.Name)
		}
		if p.Key {
			hasKey = true
		}
	}
	if !hasKey {
		return validationError("node schema %s: at least one key property is required", s.Label)
	}

	if s.SubResource != nil {
		if s.SubResource.RelLabel != SubResourceRelLabel {
			return validationError("node schema %s: sub-resource relationship label must be %q, got %q",
				s.Label, SubResourceRelLabel, s.SubResource.RelLabel)
		}
		if s.SubResource.Direction != DirectionInward {
			return validationError("node schema %s: sub-resource relationship must be INWARD",
				s.Label)
		}
		if err := s.SubResource.validate(s.Label); err != nil {
			return err
		}
	}

	for i := range s.Relationships {
		if err := s.Relationships[i].validate(s.Label); err != nil {
			return err
		}
	}

	// Scoping is expressed through the sub-resource relationship; root
	// types opt out with WithUnscopedCleanup.
	if s.ScopedCleanup && s.SubResource == nil {
		return validationError("node schema %s: scoped cleanup requires a sub-resource relationship",
			s.Label)
	}

	// Cascading an unscoped cleanup would walk the entire graph; refuse it
	// before anything touches the store.
	if s.CascadeDelete && !s.ScopedCleanup {
		return validationError("node schema %s: cascade_delete requires scoped_cleanup", s.Label)
	}
	if s.CascadeDelete && s.SubResource == nil {
		return validationError("node schema %s: cascade_delete requires a sub-resource relationship",
			s.Label)
	}

	return nil
}

// Validate checks the relationship schema in isolation.
func (r *RelationshipSchema) Validate() error {
	return r.validate("")
}

func (r *RelationshipSchema) validate(owner string) error {
	where := r.RelLabel
	if owner != "" {
		where = owner + "." + r.RelLabel
	}

	if !validIdentifier(r.TargetLabel) {
		return validationError("relationship %s: invalid target label %q", where, r.TargetLabel)
	}
	if !validIdentifier(r.RelLabel) {
		return validationError("relationship %s: invalid relationship label %q", where, r.RelLabel)
	}
	if r.Direction != DirectionOutward && r.Direction != DirectionInward {
		return validationError("relationship %s: invalid direction %q", where, r.Direction)
	}
	if err := validateMatcher(where, "target", r.TargetMatcher); err != nil {
		return err
	}
	for _, p := range r.Properties {
		if err := validateProperty(where, p); err != nil {
			return err
		}
		if p.Binding.Source() == SourceRowList {
			return validationError("relationship %s: property %q cannot bind a list", where, p.Name)
		}
	}
	return nil
}

// Validate checks the MatchLink schema for structural errors.
func (s *MatchLinkSchema) Validate() error {
	where := fmt.Sprintf("%s-%s-%s", s.SourceLabel, s.RelLabel, s.TargetLabel)

	if !validIdentifier(s.SourceLabel) {
		return validationError("match link %s: invalid source label %q", where, s.SourceLabel)
	}
	if !validIdentifier(s.TargetLabel) {
		return validationError("match link %s: invalid target label %q", where, s.TargetLabel)
	}
	if !validIdentifier(s.RelLabel) {
		return validationError("match link %s: invalid relationship label %q", where, s.RelLabel)
	}
	if s.Direction != DirectionOutward && s.Direction != DirectionInward {
		return validationError("match link %s: invalid direction %q", where, s.Direction)
	}
	if err := validateMatcher(where, "source", s.SourceMatcher); err != nil {
		return err
	}
	if err := validateMatcher(where, "target", s.TargetMatcher); err != nil {
		return err
	}

	// The scoping properties are what make MatchLink cleanup possible
	// without an owning node; they must be present and kwargs-bound.
	for _, required := range []string{PropSubResourceLabel, PropSubResourceID} {
		found := false
		for _, p := range s.Properties {
			if p.Name == required {
				if p.Binding.Source() != SourceKwargs {
					return validationError("match link %s: property %q must be kwargs-bound",
						where, required)
				}
				found = true
			}
		}
		if !found {
			return validationError("match link %s: mandatory property %q is missing",
				where, required)
		}
	}

	for _, p := range s.Properties {
		if err := validateProperty(where, p); err != nil {
			return err
		}
		if p.Binding.Source() == SourceRowList {
			return validationError("match link %s: property %q cannot bind a list", where, p.Name)
		}
	}
	return nil
}

func validateProperty(where string, p Property) error {
	if p.Name == PropFirstSeen || p.Name == PropLastUpdated {
		return validationError("schema %s: property %q is reserved", where, p.Name)
	}
	if !validIdentifier(p.Name) {
		return validationError("schema %s: invalid property name %q", where, p.Name)
	}
	return validateBinding(where, p.Name, p.Binding)
}

func validateMatcher(where, side string, terms []MatcherTerm) error {
	if len(terms) == 0 {
		return validationError("relationship %s: %s matcher is empty", where, side)
	}
	lists := 0
	for _, term := range terms {
		if !validIdentifier(term.Property) {
			return validationError("relationship %s: invalid %s matcher property %q",
				where, side, term.Property)
		}
		if err := validateBinding(where, term.Property, term.Binding); err != nil {
			return err
		}
		if term.Binding.Source() == SourceRowList {
			lists++
		}
	}
	// Two list-bound terms in one matcher would cross-product the fan-out.
	if lists > 1 {
		return validationError("relationship %s: %s matcher binds more than one list", where, side)
	}
	return nil
}

func validateBinding(where, name string, b Binding) error {
	if b.IsZero() {
		return validationError("schema %s: property %q has no binding", where, name)
	}
	if !validIdentifier(b.Field()) {
		return validationError("schema %s: property %q binds invalid field %q",
			where, name, b.Field())
	}
	return nil
}
