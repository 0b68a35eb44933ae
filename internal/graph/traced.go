package graph

import (
	"context"

	"github.com/vanshika2720/cartography-sub000/internal/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracedClient wraps a Client with OpenTelemetry tracing.
// Creates spans for all query and write operations and records summary
// counters as span attributes.
//
// Thread-safety: Safe for concurrent access (delegates to inner client).
type TracedClient struct {
	inner  Client
	tracer trace.Tracer
}

// NewTracedClient creates a new traced graph client wrapping inner.
//
// Example:
//
//	traced := graph.NewTracedClient(client, otel.Tracer("graphsync.graph"))
func NewTracedClient(inner Client, tracer trace.Tracer) *TracedClient {
	return &TracedClient{
		inner:  inner,
		tracer: tracer,
	}
}

// Connect delegates to the inner client inside a span.
func (c *TracedClient) Connect(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "graph.connect")
	defer span.End()

	err := c.inner.Connect(ctx)
	recordError(span, err)
	return err
}

// Close delegates to the inner client.
func (c *TracedClient) Close(ctx context.Context) error {
	return c.inner.Close(ctx)
}

// Health delegates to the inner client.
func (c *TracedClient) Health(ctx context.Context) types.HealthStatus {
	return c.inner.Health(ctx)
}

// Read delegates to the inner client inside a span.
func (c *TracedClient) Read(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	ctx, span := c.tracer.Start(ctx, "graph.read",
		trace.WithAttributes(attribute.Int("graph.params", len(params))))
	defer span.End()

	result, err := c.inner.Read(ctx, cypher, params)
	recordError(span, err)
	if err == nil {
		span.SetAttributes(attribute.Int("graph.records", len(result.Records)))
	}
	return result, err
}

// Write delegates to the inner client inside a span.
func (c *TracedClient) Write(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	ctx, span := c.tracer.Start(ctx, "graph.write")
	defer span.End()

	result, err := c.inner.Write(ctx, cypher, params)
	recordError(span, err)
	if err == nil {
		recordSummary(span, result.Summary)
	}
	return result, err
}

// WriteBatch delegates to the inner client inside a span.
func (c *TracedClient) WriteBatch(ctx context.Context, statements []Statement) (QueryResult, error) {
	ctx, span := c.tracer.Start(ctx, "graph.write_batch",
		trace.WithAttributes(attribute.Int("graph.statements", len(statements))))
	defer span.End()

	result, err := c.inner.WriteBatch(ctx, statements)
	recordError(span, err)
	if err == nil {
		recordSummary(span, result.Summary)
	}
	return result, err
}

func recordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func recordSummary(span trace.Span, summary QuerySummary) {
	span.SetAttributes(
		attribute.Int("graph.nodes_created", summary.NodesCreated),
		attribute.Int("graph.nodes_deleted", summary.NodesDeleted),
		attribute.Int("graph.relationships_created", summary.RelationshipsCreated),
		attribute.Int("graph.relationships_deleted", summary.RelationshipsDeleted),
		attribute.Int("graph.properties_set", summary.PropertiesSet),
	)
}
