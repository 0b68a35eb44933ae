package querybuilder

import (
	"strings"
	"testing"

	"github.com/vanshika2720/cartography-sub000/internal/model"
)

func accountScope() *model.Scope {
	return model.ScopeOf("Account", "a1")
}

func TestBuilder_NodeCleanup_Scoped(t *testing.T) {
	query := New().NodeCleanup(widgetSchema(), accountScope())

	requireParts(t, query, []string{
		"MATCH (n:Widget)<-[:RESOURCE]-(:Account {id: $SCOPE_ID})",
		"WHERE n.lastupdated <> $UPDATE_TAG",
		"WITH n LIMIT $LIMIT_SIZE",
		"DETACH DELETE n",
	})
}

func TestBuilder_NodeCleanup_Unscoped(t *testing.T) {
	schema := model.NewNodeSchema("Account").
		WithKeyProperty("id", model.FromRow("id")).
		WithUnscopedCleanup()

	query := New().NodeCleanup(schema, nil)

	requireParts(t, query, []string{
		"MATCH (n:Account)",
		"WHERE n.lastupdated <> $UPDATE_TAG",
		"DETACH DELETE n",
	})
	if strings.Contains(query, "SCOPE_ID") {
		t.Errorf("unscoped cleanup must not reference the scope:\n%s", query)
	}
}

func TestBuilder_RelationshipCleanup_SubResource(t *testing.T) {
	schema := widgetSchema()
	query := New().RelationshipCleanup(schema, *schema.SubResource, accountScope())

	// The sub-resource relationship doubles as the scope constraint.
	requireParts(t, query, []string{
		"MATCH (n:Widget)<-[r:RESOURCE]-(:Account {id: $SCOPE_ID})",
		"WHERE r.lastupdated <> $UPDATE_TAG",
		"WITH r LIMIT $LIMIT_SIZE",
		"DELETE r",
	})
	if strings.Contains(query, "DETACH") {
		t.Errorf("relationship cleanup must not detach-delete:\n%s", query)
	}
}

func TestBuilder_RelationshipCleanup_OtherRelScoped(t *testing.T) {
	schema := widgetSchema()
	rel := *model.NewRelationship("User", "OWNED_BY", model.DirectionOutward).
		WithMatch("id", model.FromRow("owner_id"))

	query := New().RelationshipCleanup(schema, rel, accountScope())

	requireParts(t, query, []string{
		"MATCH (n:Widget)<-[:RESOURCE]-(:Account {id: $SCOPE_ID})",
		"MATCH (n)-[r:OWNED_BY]->(:User)",
		"WHERE r.lastupdated <> $UPDATE_TAG",
		"DELETE r",
	})
}

func TestBuilder_RelationshipCleanup_Unscoped(t *testing.T) {
	schema := model.NewNodeSchema("Account").
		WithKeyProperty("id", model.FromRow("id")).
		WithUnscopedCleanup()
	rel := *model.NewRelationship("Domain", "HAS_DOMAIN", model.DirectionOutward).
		WithMatch("name", model.FromRow("domain"))

	query := New().RelationshipCleanup(schema, rel, nil)

	requireParts(t, query, []string{
		"MATCH (n:Account)",
		"MATCH (n)-[r:HAS_DOMAIN]->(:Domain)",
		"WHERE r.lastupdated <> $UPDATE_TAG",
	})
}

func TestBuilder_CascadeChildCleanup(t *testing.T) {
	schema := widgetSchema().WithCascadeDelete()
	query := New().CascadeChildCleanup(schema, accountScope())

	requireParts(t, query, []string{
		"MATCH (p:Widget)<-[:RESOURCE]-(:Account {id: $SCOPE_ID})",
		"WHERE p.lastupdated <> $UPDATE_TAG",
		"MATCH (c)<-[:RESOURCE]-(p)",
		"WHERE c.lastupdated <> $UPDATE_TAG",
		"WITH DISTINCT c LIMIT $LIMIT_SIZE",
		"DETACH DELETE c",
	})

	// One hop only: the child pattern must bind directly to the stale parent.
	if strings.Count(query, "MATCH (c") != 1 {
		t.Errorf("cascade must walk exactly one hop:\n%s", query)
	}
}

func TestBuilder_MatchLinkCleanup(t *testing.T) {
	schema := model.NewMatchLink("Employee", "Human", "IDENTITY", model.DirectionOutward).
		WithSourceMatch("email", model.FromRow("employee_email")).
		WithTargetMatch("email", model.FromRow("human_email"))

	query := New().MatchLinkCleanup(schema)

	requireParts(t, query, []string{
		"MATCH (:Employee)-[r:IDENTITY]->(:Human)",
		"r.lastupdated <> $UPDATE_TAG",
		"r._sub_resource_label = $_sub_resource_label",
		"r._sub_resource_id = $_sub_resource_id",
		"WITH r LIMIT $LIMIT_SIZE",
		"DELETE r",
	})
}
