package syncer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vanshika2720/cartography-sub000/internal/graph"
	"github.com/vanshika2720/cartography-sub000/internal/model"
	"github.com/vanshika2720/cartography-sub000/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

type fakeModule struct {
	name       string
	nodes      []*model.NodeSchema
	links      []*model.MatchLinkSchema
	dataset    *Dataset
	collectErr error

	collected int
}

func (m *fakeModule) Name() string { return m.name }

func (m *fakeModule) Schemas() ([]*model.NodeSchema, []*model.MatchLinkSchema) {
	return m.nodes, m.links
}

func (m *fakeModule) Collect(ctx context.Context, scope *model.Scope) (*Dataset, error) {
	m.collected++
	if m.collectErr != nil {
		return nil, m.collectErr
	}
	return m.dataset, nil
}

func widgetModule() *fakeModule {
	schema := model.NewNodeSchema("Widget").
		WithKeyProperty("id", model.FromRow("id")).
		WithSubResource("Account", model.Match("id", model.FromKwargs("ACCOUNT_ID")))

	return &fakeModule{
		name:  "widgets",
		nodes: []*model.NodeSchema{schema},
		dataset: &Dataset{
			Nodes: []NodeBatch{{
				Schema: schema,
				Rows:   []model.Row{{"id": "w1"}},
				Kwargs: model.Kwargs{"ACCOUNT_ID": "a1"},
			}},
		},
	}
}

func TestRegistry_RejectsDuplicateNames(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(widgetModule()))

	err := reg.Register(widgetModule())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.NewError(types.SYNC_DUPLICATE_MODULE, ""))
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_PreservesRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, reg.Register(&fakeModule{name: name}))
	}

	var got []string
	for _, m := range reg.Modules() {
		got = append(got, m.Name())
	}
	assert.Equal(t, []string{"c", "a", "b"}, got)
}

func TestSyncer_Run_NoModules(t *testing.T) {
	s := New(graph.NewMockClient(), NewRegistry(), testLogger(), 0)

	_, err := s.Run(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.NewError(types.SYNC_NO_MODULES, ""))
}

func TestSyncer_Run_PhaseOrder(t *testing.T) {
	mock := graph.NewMockClient()
	reg := NewRegistry()
	require.NoError(t, reg.Register(widgetModule()))
	s := New(mock, reg, testLogger(), 0)

	result, err := s.Run(context.Background(), model.ScopeOf("Account", "a1"))
	require.NoError(t, err)
	require.NotEmpty(t, result.RunID)
	require.NotZero(t, result.UpdateTag)

	// Indexes, then loads, then cleanup, strictly in that order.
	phase := 0
	for _, call := range mock.GetCalls() {
		var this int
		switch {
		case strings.HasPrefix(call.Cypher, "CREATE INDEX"):
			this = 0
		case call.Method == "WriteBatch":
			this = 1
		case strings.Contains(call.Cypher, "DELETE"):
			this = 2
		default:
			t.Fatalf("unexpected call: %s %s", call.Method, call.Cypher)
		}
		require.GreaterOrEqual(t, this, phase, "call out of phase: %s", call.Cypher)
		phase = this
	}
	assert.Equal(t, 2, phase, "cleanup phase never ran")
}

func TestSyncer_Run_InjectsOneTagEverywhere(t *testing.T) {
	mock := graph.NewMockClient()
	reg := NewRegistry()
	require.NoError(t, reg.Register(widgetModule()))
	s := New(mock, reg, testLogger(), 0)

	result, err := s.Run(context.Background(), model.ScopeOf("Account", "a1"))
	require.NoError(t, err)

	// Module kwargs carried no tag; every load and cleanup call observes the
	// run's own.
	checked := 0
	for _, call := range mock.GetCalls() {
		if strings.HasPrefix(call.Cypher, "CREATE INDEX") {
			continue
		}
		params := call.Params
		if call.Method == "WriteBatch" {
			params = call.Statements[0].Params
		}
		assert.Equal(t, result.UpdateTag, params[model.KwargUpdateTag])
		checked++
	}
	assert.NotZero(t, checked)
}

func TestSyncer_Run_FailedModuleSkipsItsCleanup(t *testing.T) {
	mock := graph.NewMockClient()
	reg := NewRegistry()

	broken := widgetModule()
	broken.name = "broken"
	broken.collectErr = errors.New("upstream api down")
	require.NoError(t, reg.Register(broken))

	healthy := widgetModule()
	require.NoError(t, reg.Register(healthy))

	s := New(mock, reg, testLogger(), 0)
	result, err := s.Run(context.Background(), model.ScopeOf("Account", "a1"))

	// One module succeeded, so the run itself is not a failure.
	require.NoError(t, err)
	require.Error(t, result.Modules["broken"].Err)
	assert.ErrorIs(t, result.Modules["broken"].Err,
		types.NewError(types.SYNC_COLLECTION_FAILED, ""))
	require.NoError(t, result.Modules["widgets"].Err)

	// Exactly one module's worth of load and cleanup traffic.
	assert.Len(t, mock.GetCallsByMethod("WriteBatch"), 1)
}

func TestSyncer_Run_AllModulesFailed(t *testing.T) {
	mock := graph.NewMockClient()
	reg := NewRegistry()

	broken := widgetModule()
	broken.collectErr = errors.New("upstream api down")
	require.NoError(t, reg.Register(broken))

	s := New(mock, reg, testLogger(), 0)
	result, err := s.Run(context.Background(), model.ScopeOf("Account", "a1"))

	require.Error(t, err)
	assert.ErrorIs(t, err, types.NewError(types.SYNC_MODULE_FAILED, ""))
	require.NotNil(t, result)
	require.Error(t, result.Modules["widgets"].Err)

	// No cleanup ran: a failed module keeps its stale data.
	for _, call := range mock.GetCalls() {
		assert.NotContains(t, call.Cypher, "DELETE")
	}
}

func TestSyncer_Run_IndexFailureAbortsTheRun(t *testing.T) {
	mock := graph.NewMockClient()
	mock.SetWriteError(errors.New("connection reset"))
	reg := NewRegistry()
	require.NoError(t, reg.Register(widgetModule()))

	s := New(mock, reg, testLogger(), 0)
	result, err := s.Run(context.Background(), model.ScopeOf("Account", "a1"))

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Empty(t, mock.GetCallsByMethod("WriteBatch"), "no loads after index failure")
}

// batchFailingClient fails batched writes only, so index creation succeeds
// and the failure surfaces during the load phase.
type batchFailingClient struct {
	*graph.MockClient
}

func (c *batchFailingClient) WriteBatch(ctx context.Context, statements []graph.Statement) (graph.QueryResult, error) {
	return graph.QueryResult{}, errors.New("deadlock detected")
}

func TestSyncer_Run_LoadFailureSkipsModuleCleanup(t *testing.T) {
	mock := &batchFailingClient{MockClient: graph.NewMockClient()}
	reg := NewRegistry()
	require.NoError(t, reg.Register(widgetModule()))

	s := New(mock, reg, testLogger(), 0)
	result, err := s.Run(context.Background(), model.ScopeOf("Account", "a1"))

	require.Error(t, err)
	require.NotNil(t, result)
	require.Error(t, result.Modules["widgets"].Err)
	assert.ErrorIs(t, result.Modules["widgets"].Err,
		types.NewError(types.STORE_WRITE_FAILED, ""))

	// The failed load left the stale data alone.
	for _, call := range mock.GetCalls() {
		assert.NotContains(t, call.Cypher, "DELETE")
	}
}
