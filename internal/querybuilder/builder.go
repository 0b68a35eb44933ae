package querybuilder

import (
	"fmt"
	"strings"

	"github.com/vanshika2720/cartography-sub000/internal/model"
)

// Well-known query parameter names shared by every generated statement.
const (
	// ParamRows holds the resolved row batch for UNWIND.
	ParamRows = "rows"
	// ParamUpdateTag holds the run's staleness tag.
	ParamUpdateTag = model.KwargUpdateTag
	// ParamScopeID holds the sub-resource id for scoped cleanup.
	ParamScopeID = "SCOPE_ID"
	// ParamLimitSize bounds one cleanup delete batch.
	ParamLimitSize = "LIMIT_SIZE"
)

// fanoutVar is the UNWIND variable for one-to-many matcher fan-out.
const fanoutVar = "fanout_value"

// Builder generates parameterized Cypher from schema descriptors.
// It is the single interpreter over the declarative model: node and
// MatchLink upserts, cleanup deletions, and index creation all come from
// here. Schemas must be validated before use; the builder interpolates
// labels and property names directly and relies on model validation for
// identifier safety.
type Builder struct{}

// New creates a Builder.
func New() *Builder {
	return &Builder{}
}

// NodeMerge generates the batched upsert statement for a node schema.
// One call processes the whole row batch: each row is merged on the schema's
// key properties, stamped firstseen on creation only, and always stamped
// lastupdated with the run's tag.
//
// Example, for schema Widget{key id, name} owned by Account:
//
//	UNWIND $rows AS row
//	MERGE (n:Widget {id: row.id})
//	ON CREATE SET n.firstseen = timestamp()
//	SET n.id = row.id, n.name = row.name, n.lastupdated = $UPDATE_TAG
func (b *Builder) NodeMerge(s *model.NodeSchema) string {
	var query strings.Builder
	query.WriteString("UNWIND $rows AS row\n")
	query.WriteString(fmt.Sprintf("MERGE (n:%s {%s})\n", s.Label, keyPattern(s.KeyProperties())))
	query.WriteString("ON CREATE SET n.firstseen = timestamp()\n")

	setClauses := make([]string, 0, len(s.Properties)+1)
	for _, p := range s.Properties {
		setClauses = append(setClauses, fmt.Sprintf("n.%s = %s", p.Name, bindingRef(p.Binding)))
	}
	setClauses = append(setClauses, "n.lastupdated = $"+ParamUpdateTag)
	query.WriteString("SET " + strings.Join(setClauses, ", "))

	return query.String()
}

// RelationshipMerge generates the batched relationship upsert for one
// declared relationship of a node schema. The owned node is matched by its
// key properties; the target is matched by the declared matcher. Rows whose
// target is not in the graph are dropped by the MATCH, so a missing target
// skips that row's relationship instead of failing the batch. A list-bound
// matcher term fans out to one relationship per list element.
//
// Example, for Widget's sub-resource relationship to Account:
//
//	UNWIND $rows AS row
//	MATCH (n:Widget {id: row.id})
//	MATCH (m:Account {id: $ACCOUNT_ID})
//	MERGE (n)<-[r:RESOURCE]-(m)
//	ON CREATE SET r.firstseen = timestamp()
//	SET r.lastupdated = $UPDATE_TAG
func (b *Builder) RelationshipMerge(s *model.NodeSchema, rel model.RelationshipSchema) string {
	var query strings.Builder
	query.WriteString("UNWIND $rows AS row\n")
	query.WriteString(fmt.Sprintf("MATCH (n:%s {%s})\n", s.Label, keyPattern(s.KeyProperties())))

	writeTargetMatch(&query, "m", rel.TargetLabel, rel.TargetMatcher)

	query.WriteString(relPattern("n", "m", rel.RelLabel, rel.Direction))
	query.WriteString("ON CREATE SET r.firstseen = timestamp()\n")
	query.WriteString("SET " + strings.Join(relSetClauses(rel.Properties), ", "))

	return query.String()
}

// MatchLinkMerge generates the batched relationship upsert for a MatchLink
// schema. Both endpoints are matched, never created; a row missing either
// endpoint creates nothing. Every relationship is stamped with the run's tag
// and the schema's per-call scoping constants.
//
// Example:
//
//	UNWIND $rows AS row
//	MATCH (a:Employee {email: row.employee_email})
//	MATCH (b:Human {email: row.human_email})
//	MERGE (a)-[r:IDENTITY]->(b)
//	ON CREATE SET r.firstseen = timestamp()
//	SET r.lastupdated = $UPDATE_TAG, r._sub_resource_label = $_sub_resource_label, ...
func (b *Builder) MatchLinkMerge(s *model.MatchLinkSchema) string {
	var query strings.Builder
	query.WriteString("UNWIND $rows AS row\n")

	writeTargetMatch(&query, "a", s.SourceLabel, s.SourceMatcher)
	writeTargetMatch(&query, "b", s.TargetLabel, s.TargetMatcher)

	query.WriteString(relPattern("a", "b", s.RelLabel, s.Direction))
	query.WriteString("ON CREATE SET r.firstseen = timestamp()\n")
	query.WriteString("SET " + strings.Join(relSetClauses(s.Properties), ", "))

	return query.String()
}

// IndexCreate generates an idempotent index creation statement for one
// (label, property) pair. Running it N times leaves the same index set as
// running it once.
func (b *Builder) IndexCreate(label, property string) string {
	return fmt.Sprintf("CREATE INDEX %s IF NOT EXISTS FOR (n:%s) ON (n.%s)",
		indexName(label, property), label, property)
}

// RelIndexCreate generates an idempotent index creation statement for a
// relationship property. MatchLink cleanup scans relationships by their
// staleness and scoping properties, so those get relationship indexes.
func (b *Builder) RelIndexCreate(relLabel, property string) string {
	return fmt.Sprintf("CREATE INDEX %s IF NOT EXISTS FOR ()-[r:%s]-() ON (r.%s)",
		relIndexName(relLabel, property), relLabel, property)
}

func indexName(label, property string) string {
	return fmt.Sprintf("idx_%s_%s", strings.ToLower(label), strings.ToLower(property))
}

func relIndexName(relLabel, property string) string {
	return fmt.Sprintf("rel_idx_%s_%s", strings.ToLower(relLabel), strings.ToLower(property))
}

// keyPattern renders the merge key map, e.g. `id: row.id, region: $REGION`.
func keyPattern(keys []model.Property) string {
	parts := make([]string, 0, len(keys))
	for _, p := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", p.Name, bindingRef(p.Binding)))
	}
	return strings.Join(parts, ", ")
}

// writeTargetMatch renders the MATCH clause locating one relationship
// endpoint, inserting an UNWIND first when a matcher term fans out over a
// list-bound row field.
func writeTargetMatch(query *strings.Builder, variable, label string, matcher []model.MatcherTerm) {
	parts := make([]string, 0, len(matcher))
	for _, term := range matcher {
		if term.Binding.Source() == model.SourceRowList {
			query.WriteString(fmt.Sprintf("UNWIND row.%s AS %s\n", term.Binding.Field(), fanoutVar))
			parts = append(parts, fmt.Sprintf("%s: %s", term.Property, fanoutVar))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", term.Property, bindingRef(term.Binding)))
	}
	query.WriteString(fmt.Sprintf("MATCH (%s:%s {%s})\n", variable, label, strings.Join(parts, ", ")))
}

// relPattern renders the MERGE clause between two bound variables honoring
// the declared direction.
func relPattern(from, to, relLabel string, direction model.Direction) string {
	if direction == model.DirectionInward {
		return fmt.Sprintf("MERGE (%s)<-[r:%s]-(%s)\n", from, relLabel, to)
	}
	return fmt.Sprintf("MERGE (%s)-[r:%s]->(%s)\n", from, relLabel, to)
}

func relSetClauses(properties []model.Property) []string {
	clauses := make([]string, 0, len(properties)+1)
	clauses = append(clauses, "r.lastupdated = $"+ParamUpdateTag)
	for _, p := range properties {
		clauses = append(clauses, fmt.Sprintf("r.%s = %s", p.Name, bindingRef(p.Binding)))
	}
	return clauses
}

// bindingRef renders the Cypher expression reading one binding: a row field
// access or a query parameter.
func bindingRef(b model.Binding) string {
	switch b.Source() {
	case model.SourceKwargs:
		return "$" + b.Field()
	default:
		return "row." + b.Field()
	}
}
