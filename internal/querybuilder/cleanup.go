package querybuilder

import (
	"fmt"
	"strings"

	"github.com/vanshika2720/cartography-sub000/internal/model"
)

// Cleanup statements delete nodes and relationships whose lastupdated tag
// does not match the current run's tag. Every statement bounds its batch
// with `WITH x LIMIT $LIMIT_SIZE`; the cleanup runner repeats a statement
// until a batch comes back smaller than the limit.

// NodeCleanup generates the stale-node deletion statement for a node schema.
// For scoped schemas the deletion is constrained to nodes owned by the scope
// node through the sub-resource relationship.
//
// Scoped example:
//
//	MATCH (n:Widget)<-[:RESOURCE]-(:Account {id: $SCOPE_ID})
//	WHERE n.lastupdated <> $UPDATE_TAG
//	WITH n LIMIT $LIMIT_SIZE
//	DETACH DELETE n
func (b *Builder) NodeCleanup(s *model.NodeSchema, scope *model.Scope) string {
	var query strings.Builder
	if s.ScopedCleanup {
		query.WriteString(fmt.Sprintf("MATCH (n:%s)<-[:%s]-(:%s {id: $%s})\n",
			s.Label, model.SubResourceRelLabel, scope.Label, ParamScopeID))
	} else {
		query.WriteString(fmt.Sprintf("MATCH (n:%s)\n", s.Label))
	}
	query.WriteString("WHERE n.lastupdated <> $" + ParamUpdateTag + "\n")
	query.WriteString("WITH n LIMIT $" + ParamLimitSize + "\n")
	query.WriteString("DETACH DELETE n")
	return query.String()
}

// RelationshipCleanup generates the stale-relationship deletion statement for
// one declared relationship of a node schema. The sub-resource relationship
// itself doubles as the scope constraint; other relationships reach the scope
// through it.
//
// Scoped example for a non-sub-resource relationship:
//
//	MATCH (n:Widget)<-[:RESOURCE]-(:Account {id: $SCOPE_ID})
//	MATCH (n)-[r:OWNED_BY]->(:User)
//	WHERE r.lastupdated <> $UPDATE_TAG
//	WITH r LIMIT $LIMIT_SIZE
//	DELETE r
func (b *Builder) RelationshipCleanup(s *model.NodeSchema, rel model.RelationshipSchema, scope *model.Scope) string {
	var query strings.Builder

	isSubResource := s.SubResource != nil && rel.RelLabel == model.SubResourceRelLabel

	switch {
	case s.ScopedCleanup && isSubResource:
		query.WriteString(fmt.Sprintf("MATCH (n:%s)<-[r:%s]-(:%s {id: $%s})\n",
			s.Label, rel.RelLabel, scope.Label, ParamScopeID))
	case s.ScopedCleanup:
		query.WriteString(fmt.Sprintf("MATCH (n:%s)<-[:%s]-(:%s {id: $%s})\n",
			s.Label, model.SubResourceRelLabel, scope.Label, ParamScopeID))
		query.WriteString(relCleanupPattern(rel))
	default:
		query.WriteString(fmt.Sprintf("MATCH (n:%s)\n", s.Label))
		query.WriteString(relCleanupPattern(rel))
	}

	query.WriteString("WHERE r.lastupdated <> $" + ParamUpdateTag + "\n")
	query.WriteString("WITH r LIMIT $" + ParamLimitSize + "\n")
	query.WriteString("DELETE r")
	return query.String()
}

func relCleanupPattern(rel model.RelationshipSchema) string {
	if rel.Direction == model.DirectionInward {
		return fmt.Sprintf("MATCH (n)<-[r:%s]-(:%s)\n", rel.RelLabel, rel.TargetLabel)
	}
	return fmt.Sprintf("MATCH (n)-[r:%s]->(:%s)\n", rel.RelLabel, rel.TargetLabel)
}

// CascadeChildCleanup generates the one-hop cascade deletion that runs before
// a stale parent is removed: direct children of stale parents, reachable via
// the sub-resource relationship, are deleted unless they were written during
// the current run. A child re-parented in this run carries the fresh tag and
// is protected by the WHERE clause.
//
//	MATCH (p:Widget)<-[:RESOURCE]-(:Account {id: $SCOPE_ID})
//	WHERE p.lastupdated <> $UPDATE_TAG
//	MATCH (c)<-[:RESOURCE]-(p)
//	WHERE c.lastupdated <> $UPDATE_TAG
//	WITH DISTINCT c LIMIT $LIMIT_SIZE
//	DETACH DELETE c
func (b *Builder) CascadeChildCleanup(s *model.NodeSchema, scope *model.Scope) string {
	var query strings.Builder
	query.WriteString(fmt.Sprintf("MATCH (p:%s)<-[:%s]-(:%s {id: $%s})\n",
		s.Label, model.SubResourceRelLabel, scope.Label, ParamScopeID))
	query.WriteString("WHERE p.lastupdated <> $" + ParamUpdateTag + "\n")
	query.WriteString(fmt.Sprintf("MATCH (c)<-[:%s]-(p)\n", model.SubResourceRelLabel))
	query.WriteString("WHERE c.lastupdated <> $" + ParamUpdateTag + "\n")
	query.WriteString("WITH DISTINCT c LIMIT $" + ParamLimitSize + "\n")
	query.WriteString("DETACH DELETE c")
	return query.String()
}

// MatchLinkCleanup generates the stale-relationship deletion for a MatchLink
// schema. MatchLinks are always scope-constrained through their mandatory
// scoping properties, so no owning node traversal is needed.
//
//	MATCH (:Employee)-[r:IDENTITY]->(:Human)
//	WHERE r.lastupdated <> $UPDATE_TAG AND r._sub_resource_label = $_sub_resource_label AND r._sub_resource_id = $_sub_resource_id
//	WITH r LIMIT $LIMIT_SIZE
//	DELETE r
func (b *Builder) MatchLinkCleanup(s *model.MatchLinkSchema) string {
	var query strings.Builder

	if s.Direction == model.DirectionInward {
		query.WriteString(fmt.Sprintf("MATCH (:%s)<-[r:%s]-(:%s)\n",
			s.SourceLabel, s.RelLabel, s.TargetLabel))
	} else {
		query.WriteString(fmt.Sprintf("MATCH (:%s)-[r:%s]->(:%s)\n",
			s.SourceLabel, s.RelLabel, s.TargetLabel))
	}

	query.WriteString(fmt.Sprintf("WHERE r.lastupdated <> $%s AND r.%s = $%s AND r.%s = $%s\n",
		ParamUpdateTag,
		model.PropSubResourceLabel, model.KwargSubResourceLabel,
		model.PropSubResourceID, model.KwargSubResourceID))
	query.WriteString("WITH r LIMIT $" + ParamLimitSize + "\n")
	query.WriteString("DELETE r")
	return query.String()
}
