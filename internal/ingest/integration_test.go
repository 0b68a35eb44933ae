//go:build integration
// +build integration

package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcneo4j "github.com/testcontainers/testcontainers-go/modules/neo4j"

	"github.com/vanshika2720/cartography-sub000/internal/graph"
	"github.com/vanshika2720/cartography-sub000/internal/model"
)

const testAdminPassword = "letmein-test"

// setupNeo4j starts a Neo4j container and returns a connected client plus a
// cleanup function.
func setupNeo4j(t *testing.T, ctx context.Context) (graph.Client, func()) {
	t.Helper()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		t.Skip("Docker not available, skipping integration test")
	}
	if err := provider.Health(ctx); err != nil {
		t.Skip("Docker not running, skipping integration test")
	}

	container, err := tcneo4j.Run(ctx, "neo4j:5",
		tcneo4j.WithAdminPassword(testAdminPassword))
	require.NoError(t, err, "failed to start Neo4j container")

	boltURL, err := container.BoltUrl(ctx)
	require.NoError(t, err, "failed to get bolt URL")

	config := graph.DefaultConfig()
	config.URI = boltURL
	config.Password = testAdminPassword
	config.ConnectionTimeout = 30 * time.Second

	client, err := graph.NewNeo4jClient(config)
	require.NoError(t, err)
	require.NoError(t, client.Connect(ctx))
	require.True(t, client.Health(ctx).IsHealthy())

	cleanup := func() {
		client.Close(ctx)
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}
	return client, cleanup
}

func TestIntegration_LoadNodes_UpsertIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client, cleanup := setupNeo4j(t, ctx)
	defer cleanup()

	loader := NewLoader(client, testLogger())

	// Seed the scope node the sub-resource relationship matches against.
	_, err := client.Write(ctx,
		"MERGE (a:Account {id: $id}) SET a.lastupdated = $tag",
		map[string]any{"id": "a1", "tag": 100})
	require.NoError(t, err)

	schema := widgetSchema()
	rows := []model.Row{
		{"id": "w1", "name": "Foo"},
		{"id": "w2", "name": "Bar"},
	}

	result, err := loader.LoadNodes(ctx, schema, rows, widgetKwargs())
	require.NoError(t, err)
	assert.Equal(t, 2, result.NodesCreated)
	assert.Equal(t, 2, result.RelationshipsCreated)

	// A second run with the same tag creates nothing new and keeps firstseen.
	firstseen := readWidgetProp(t, ctx, client, "w1", "firstseen")

	result, err = loader.LoadNodes(ctx, schema, rows, widgetKwargs())
	require.NoError(t, err)
	assert.Equal(t, 0, result.NodesCreated)
	assert.Equal(t, 0, result.RelationshipsCreated)
	assert.Equal(t, firstseen, readWidgetProp(t, ctx, client, "w1", "firstseen"))

	// A later run with a fresh tag re-stamps lastupdated in place.
	later := widgetKwargs()
	later[model.KwargUpdateTag] = 200
	_, err = loader.LoadNodes(ctx, schema, rows, later)
	require.NoError(t, err)
	assert.Equal(t, int64(200), readWidgetProp(t, ctx, client, "w1", "lastupdated"))
}

func TestIntegration_LoadNodes_MissingTargetSkipsRelationship(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client, cleanup := setupNeo4j(t, ctx)
	defer cleanup()

	loader := NewLoader(client, testLogger())

	// No Account node exists: the node is still created, the relationship
	// silently is not.
	result, err := loader.LoadNodes(ctx, widgetSchema(),
		[]model.Row{{"id": "w1", "name": "Foo"}}, widgetKwargs())
	require.NoError(t, err)
	assert.Equal(t, 1, result.NodesCreated)
	assert.Equal(t, 0, result.RelationshipsCreated)
}

func TestIntegration_LoadMatchLinks_EndpointsMatchedNeverCreated(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client, cleanup := setupNeo4j(t, ctx)
	defer cleanup()

	loader := NewLoader(client, testLogger())

	_, err := client.Write(ctx,
		"CREATE (:Employee {email: 'a@corp'}), (:Human {email: 'a@corp'})", nil)
	require.NoError(t, err)

	schema := model.NewMatchLink("Employee", "Human", "IDENTITY", model.DirectionOutward).
		WithSourceMatch("email", model.FromRow("employee_email")).
		WithTargetMatch("email", model.FromRow("human_email"))

	kwargs := model.Kwargs{
		model.KwargUpdateTag:        100,
		model.KwargSubResourceLabel: "Company",
		model.KwargSubResourceID:    "c1",
	}

	rows := []model.Row{
		{"employee_email": "a@corp", "human_email": "a@corp"},
		// No such endpoints; the row drops out without error.
		{"employee_email": "b@corp", "human_email": "b@corp"},
	}

	result, err := loader.LoadMatchLinks(ctx, schema, rows, kwargs)
	require.NoError(t, err)
	assert.Equal(t, 1, result.RelationshipsCreated)

	// The missing endpoints were not created as a side effect.
	res, err := client.Read(ctx,
		"MATCH (e:Employee) RETURN count(e) AS c", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Records[0]["c"])
}

func readWidgetProp(t *testing.T, ctx context.Context, client graph.Client, id, prop string) any {
	t.Helper()
	res, err := client.Read(ctx,
		"MATCH (w:Widget {id: $id}) RETURN w."+prop+" AS v",
		map[string]any{"id": id})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	return res.Records[0]["v"]
}
