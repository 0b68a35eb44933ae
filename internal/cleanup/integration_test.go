//go:build integration
// +build integration

package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcneo4j "github.com/testcontainers/testcontainers-go/modules/neo4j"

	"github.com/vanshika2720/cartography-sub000/internal/graph"
	"github.com/vanshika2720/cartography-sub000/internal/ingest"
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

func countNodes(t *testing.T, ctx context.Context, client graph.Client, label string) int64 {
	t.Helper()
	res, err := client.Read(ctx,
		"MATCH (n:"+label+") RETURN count(n) AS c", nil)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	return res.Records[0]["c"].(int64)
}

// Two successive runs: a Widget loaded under tag 100 and absent from the tag
// 101 run must be fully removed by cleanup, relationship included, while the
// owning Account survives.
func TestIntegration_StaleWidgetRemovedOnNextRun(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client, teardown := setupNeo4j(t, ctx)
	defer teardown()

	_, err := client.Write(ctx,
		"MERGE (a:Account {id: $id}) SET a.lastupdated = $tag",
		map[string]any{"id": "a1", "tag": 100})
	require.NoError(t, err)

	schema := model.NewNodeSchema("Widget").
		WithKeyProperty("id", model.FromRow("id")).
		WithProperty("name", model.FromRow("name")).
		WithSubResource("Account", model.Match("id", model.FromKwargs("ACCOUNT_ID")))

	loader := ingest.NewLoader(client, testLogger())
	kwargs := model.Kwargs{model.KwargUpdateTag: 100, "ACCOUNT_ID": "a1"}

	result, err := loader.LoadNodes(ctx, schema,
		[]model.Row{{"id": "w1", "name": "Foo"}}, kwargs)
	require.NoError(t, err)
	require.Equal(t, 1, result.NodesCreated)
	require.Equal(t, 1, result.RelationshipsCreated)

	// Next run sees no widgets: an empty load is a no-op, cleanup with the
	// fresh tag removes the node and its relationship.
	next := model.Kwargs{model.KwargUpdateTag: 101, "ACCOUNT_ID": "a1"}
	_, err = loader.LoadNodes(ctx, schema, nil, next)
	require.NoError(t, err)

	runner := NewRunner(client, testLogger(), 0)
	cleaned, err := runner.CleanupNodes(ctx, schema, model.ScopeOf("Account", "a1"), next)
	require.NoError(t, err)

	assert.Equal(t, 1, cleaned.NodesDeleted)
	assert.Equal(t, int64(0), countNodes(t, ctx, client, "Widget"))
	assert.Equal(t, int64(1), countNodes(t, ctx, client, "Account"))

	res, err := client.Read(ctx, "MATCH ()-[r:RESOURCE]-() RETURN count(r) AS c", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Records[0]["c"])
}

// A fresh node whose attachment moved keeps the node but loses the stale
// edge: the relationship pass prunes edges the node pass left behind.
func TestIntegration_FreshNodeKeptStaleEdgePruned(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client, teardown := setupNeo4j(t, ctx)
	defer teardown()

	_, err := client.Write(ctx, `
		CREATE (a:Account {id: 'a1', lastupdated: 200})
		CREATE (w:Widget {id: 'w1', lastupdated: 200})
		CREATE (w)<-[:RESOURCE {lastupdated: 100}]-(a)`, nil)
	require.NoError(t, err)

	schema := model.NewNodeSchema("Widget").
		WithKeyProperty("id", model.FromRow("id")).
		WithSubResource("Account", model.Match("id", model.FromKwargs("ACCOUNT_ID")))

	runner := NewRunner(client, testLogger(), 0)
	cleaned, err := runner.CleanupNodes(ctx, schema, model.ScopeOf("Account", "a1"),
		model.Kwargs{model.KwargUpdateTag: 200})
	require.NoError(t, err)

	assert.Equal(t, 0, cleaned.NodesDeleted)
	assert.Equal(t, 1, cleaned.RelationshipsDeleted)
	assert.Equal(t, int64(1), countNodes(t, ctx, client, "Widget"))
}

// Cascade with a stale parent: the stale child goes with it, the child
// re-parented during the current run is protected.
func TestIntegration_CascadePreservesReparentedChild(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client, teardown := setupNeo4j(t, ctx)
	defer teardown()

	_, err := client.Write(ctx, `
		CREATE (a:Account {id: 'a1', lastupdated: 200})
		CREATE (p:Project {id: 'p1', lastupdated: 100})
		CREATE (c1:Task {id: 'c1', lastupdated: 100})
		CREATE (c2:Task {id: 'c2', lastupdated: 200})
		CREATE (p)<-[:RESOURCE {lastupdated: 100}]-(a)
		CREATE (c1)<-[:RESOURCE {lastupdated: 100}]-(p)
		CREATE (c2)<-[:RESOURCE {lastupdated: 200}]-(p)`, nil)
	require.NoError(t, err)

	schema := model.NewNodeSchema("Project").
		WithKeyProperty("id", model.FromRow("id")).
		WithSubResource("Account", model.Match("id", model.FromKwargs("ACCOUNT_ID"))).
		WithCascadeDelete()

	runner := NewRunner(client, testLogger(), 0)
	cleaned, err := runner.CleanupNodes(ctx, schema, model.ScopeOf("Account", "a1"),
		model.Kwargs{model.KwargUpdateTag: 200})
	require.NoError(t, err)

	// p1 and its stale child are gone; the re-parented child survives.
	assert.Equal(t, 2, cleaned.NodesDeleted)
	assert.Equal(t, int64(0), countNodes(t, ctx, client, "Project"))

	res, err := client.Read(ctx,
		"MATCH (c:Task) RETURN c.id AS id ORDER BY id", nil)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "c2", res.Records[0]["id"])
}
