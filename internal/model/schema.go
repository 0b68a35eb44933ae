package model

// Direction is the direction of a relationship relative to the owning node.
type Direction string

const (
	// DirectionOutward points from the owning node to the target.
	DirectionOutward Direction = "OUTWARD"
	// DirectionInward points from the target to the owning node.
	DirectionInward Direction = "INWARD"
)

// String returns the string representation of Direction.
func (d Direction) String() string {
	return string(d)
}

// Property declares one graph property and the binding that resolves its
// value. Key properties identify the node for merge purposes.
type Property struct {
	Name    string
	Binding Binding
	Key     bool
}

// MatcherTerm is one (graph property, binding) pair of a relationship
// matcher. All terms of a matcher must match for a target node to be found.
type MatcherTerm struct {
	Property string
	Binding  Binding
}

// Match constructs a MatcherTerm.
func Match(property string, binding Binding) MatcherTerm {
	return MatcherTerm{Property: property, Binding: binding}
}

// RelationshipSchema declares a relationship from an owned node to a target
// node located by matching TargetMatcher against nodes already in the graph.
// If no target matches, the relationship is skipped for that row.
type RelationshipSchema struct {
	TargetLabel   string
	TargetMatcher []MatcherTerm
	RelLabel      string
	Direction     Direction
	Properties    []Property
}

// NewRelationship creates a RelationshipSchema with the given target label,
// relationship label, and direction.
func NewRelationship(targetLabel, relLabel string, direction Direction) *RelationshipSchema {
	return &RelationshipSchema{
		TargetLabel: targetLabel,
		RelLabel:    relLabel,
		Direction:   direction,
	}
}

// WithMatch appends a matcher term and returns the schema for chaining.
func (r *RelationshipSchema) WithMatch(property string, binding Binding) *RelationshipSchema {
	r.TargetMatcher = append(r.TargetMatcher, Match(property, binding))
	return r
}

// WithProperty appends a relationship property and returns the schema for chaining.
func (r *RelationshipSchema) WithProperty(name string, binding Binding) *RelationshipSchema {
	r.Properties = append(r.Properties, Property{Name: name, Binding: binding})
	return r
}

// NodeSchema declares one node type: its label, property bindings, optional
// sub-resource relationship, other relationships, and cleanup behavior.
//
// ScopedCleanup defaults to true: stale nodes are deleted only within the
// currently synced sub-resource scope. Node types without a sub-resource
// relationship are root types and typically set WithUnscopedCleanup.
type NodeSchema struct {
	Label         string
	Properties    []Property
	SubResource   *RelationshipSchema
	Relationships []RelationshipSchema
	ScopedCleanup bool
	CascadeDelete bool
}

// NewNodeSchema creates a NodeSchema for the given label with scoped cleanup
// enabled.
func NewNodeSchema(label string) *NodeSchema {
	return &NodeSchema{
		Label:         label,
		ScopedCleanup: true,
	}
}

// WithKeyProperty appends a unique-key property and returns the schema for
// chaining. The merge that upserts a node matches on all key properties.
func (s *NodeSchema) WithKeyProperty(name string, binding Binding) *NodeSchema {
	s.Properties = append(s.Properties, Property{Name: name, Binding: binding, Key: true})
	return s
}

// WithProperty appends a non-key property and returns the schema for chaining.
func (s *NodeSchema) WithProperty(name string, binding Binding) *NodeSchema {
	s.Properties = append(s.Properties, Property{Name: name, Binding: binding})
	return s
}

// WithSubResource declares the node's single sub-resource relationship to its
// owning parent. The relationship label is the fixed reserved value and the
// direction is inward (parent points at the owned node).
func (s *NodeSchema) WithSubResource(targetLabel string, terms ...MatcherTerm) *NodeSchema {
	s.SubResource = &RelationshipSchema{
		TargetLabel:   targetLabel,
		TargetMatcher: terms,
		RelLabel:      SubResourceRelLabel,
		Direction:     DirectionInward,
	}
	return s
}

// WithRelationship appends an additional relationship and returns the schema
// for chaining.
func (s *NodeSchema) WithRelationship(rel *RelationshipSchema) *NodeSchema {
	s.Relationships = append(s.Relationships, *rel)
	return s
}

// WithUnscopedCleanup disables scope constraints on cleanup: stale nodes of
// this label are deleted graph-wide. Root node types use this.
func (s *NodeSchema) WithUnscopedCleanup() *NodeSchema {
	s.ScopedCleanup = false
	return s
}

// WithCascadeDelete enables one-hop cascade deletion: when a stale node of
// this label is cleaned up, its stale direct children reachable via the
// sub-resource relationship are deleted in the same pass. Children written
// during the current run keep their fresh tag and are never cascaded.
func (s *NodeSchema) WithCascadeDelete() *NodeSchema {
	s.CascadeDelete = true
	return s
}

// KeyProperties returns the declared unique-key properties in order.
func (s *NodeSchema) KeyProperties() []Property {
	keys := make([]Property, 0, 1)
	for _, p := range s.Properties {
		if p.Key {
			keys = append(keys, p)
		}
	}
	return keys
}

// AllRelationships returns the sub-resource relationship (if any) followed by
// the other declared relationships, in declaration order.
func (s *NodeSchema) AllRelationships() []RelationshipSchema {
	rels := make([]RelationshipSchema, 0, len(s.Relationships)+1)
	if s.SubResource != nil {
		rels = append(rels, *s.SubResource)
	}
	rels = append(rels, s.Relationships...)
	return rels
}

// MatchLinkSchema declares a relationship-only entity between two node types
// that were written independently. Both endpoints are matched against
// pre-existing nodes; a MatchLink never creates nodes. Every MatchLink
// relationship carries the sub-resource label and id as per-call constants so
// its cleanup can be scoped without an owning node.
type MatchLinkSchema struct {
	SourceLabel   string
	SourceMatcher []MatcherTerm
	TargetLabel   string
	TargetMatcher []MatcherTerm
	RelLabel      string
	Direction     Direction
	Properties    []Property
}

// NewMatchLink creates a MatchLinkSchema between the two labels. The
// mandatory scoping properties are bound to the well-known kwargs up front.
func NewMatchLink(sourceLabel, targetLabel, relLabel string, direction Direction) *MatchLinkSchema {
	return &MatchLinkSchema{
		SourceLabel: sourceLabel,
		TargetLabel: targetLabel,
		RelLabel:    relLabel,
		Direction:   direction,
		Properties: []Property{
			{Name: PropSubResourceLabel, Binding: FromKwargs(KwargSubResourceLabel)},
			{Name: PropSubResourceID, Binding: FromKwargs(KwargSubResourceID)},
		},
	}
}

// WithSourceMatch appends a source matcher term and returns the schema for chaining.
func (s *MatchLinkSchema) WithSourceMatch(property string, binding Binding) *MatchLinkSchema {
	s.SourceMatcher = append(s.SourceMatcher, Match(property, binding))
	return s
}

// WithTargetMatch appends a target matcher term and returns the schema for chaining.
func (s *MatchLinkSchema) WithTargetMatch(property string, binding Binding) *MatchLinkSchema {
	s.TargetMatcher = append(s.TargetMatcher, Match(property, binding))
	return s
}

// WithProperty appends a relationship property and returns the schema for chaining.
func (s *MatchLinkSchema) WithProperty(name string, binding Binding) *MatchLinkSchema {
	s.Properties = append(s.Properties, Property{Name: name, Binding: binding})
	return s
}
