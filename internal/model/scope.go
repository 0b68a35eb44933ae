package model

// Scope identifies one sub-resource tenant for scoped cleanup: the label of
// the owning node type and the value of its id property. Cleanup constrained
// to a scope leaves other tenants' stale data untouched.
type Scope struct {
	Label string
	ID    any
}

// ScopeOf constructs a Scope.
func ScopeOf(label string, id any) *Scope {
	return &Scope{Label: label, ID: id}
}

// Validate checks that the scope can be interpolated into a query safely and
// carries an id to bind.
func (s *Scope) Validate() error {
	if !validIdentifier(s.Label) {
		return validationError("scope %q: invalid label", s.Label)
	}
	if s.ID == nil {
		return validationError("scope %s: missing id", s.Label)
	}
	return nil
}
