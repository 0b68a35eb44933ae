// Package cleanup removes graph state left stale by a completed sync run.
// Anything a run did not re-stamp with the current update tag is considered
// no longer present at the source and is deleted in bounded batches.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vanshika2720/cartography-sub000/internal/graph"
	"github.com/vanshika2720/cartography-sub000/internal/model"
	"github.com/vanshika2720/cartography-sub000/internal/querybuilder"
	"github.com/vanshika2720/cartography-sub000/internal/types"
)

// DefaultBatchSize bounds how many entities one delete statement may remove.
const DefaultBatchSize = 1000

// Runner executes staleness cleanup for node and MatchLink schemas.
//
// Each statement deletes at most batchSize entities per execution and is
// repeated until a batch comes back smaller than the limit, so a large
// backlog of stale data never holds one long-running transaction open.
type Runner struct {
	client    graph.Client
	builder   *querybuilder.Builder
	logger    *slog.Logger
	batchSize int
}

// NewRunner creates a cleanup Runner. A non-positive batchSize falls back to
// DefaultBatchSize.
func NewRunner(client graph.Client, logger *slog.Logger, batchSize int) *Runner {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Runner{
		client:    client,
		builder:   querybuilder.New(),
		logger:    logger,
		batchSize: batchSize,
	}
}

// Result contains deletion counts for one cleanup call, taken from the
// store's own counters.
type Result struct {
	NodesDeleted         int
	RelationshipsDeleted int
}

func (r *Result) add(summary graph.QuerySummary) {
	r.NodesDeleted += summary.NodesDeleted
	r.RelationshipsDeleted += summary.RelationshipsDeleted
}

// CleanupNodes deletes stale state for one node schema: cascade-deleted
// children first if enabled, then the nodes themselves, then the schema's
// declared relationships. Node deletion must run while the stale sub-resource
// edge still exists, because that edge is how a scoped statement finds the
// node; DETACH DELETE removes the node's relationships with it, so the
// trailing relationship pass only prunes stale edges left on fresh nodes.
// Cascade runs first for the same reason: it locates children through their
// stale parent.
//
// A scoped schema requires a scope; cleanup then only touches entities owned
// by that scope node and leaves other tenants' stale data alone.
func (r *Runner) CleanupNodes(ctx context.Context, schema *model.NodeSchema, scope *model.Scope, kwargs model.Kwargs) (*Result, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if schema.ScopedCleanup {
		if scope == nil {
			return nil, types.NewError(types.CONFIG_VALIDATION_FAILED,
				fmt.Sprintf("node schema %s: scoped cleanup requires a scope", schema.Label))
		}
		if err := scope.Validate(); err != nil {
			return nil, err
		}
	}

	params, err := r.params(kwargs, scope)
	if err != nil {
		return nil, err
	}

	var statements []string
	if schema.CascadeDelete {
		statements = append(statements, r.builder.CascadeChildCleanup(schema, scope))
	}
	statements = append(statements, r.builder.NodeCleanup(schema, scope))
	for _, rel := range schema.AllRelationships() {
		statements = append(statements, r.builder.RelationshipCleanup(schema, rel, scope))
	}

	result := &Result{}
	for _, cypher := range statements {
		if err := r.runBatched(ctx, cypher, params, result); err != nil {
			return nil, types.WrapRetryableError(types.STORE_CLEANUP_FAILED,
				fmt.Sprintf("cleanup failed for node schema %s", schema.Label), err)
		}
	}

	r.logger.Info("cleanup complete",
		"label", schema.Label,
		"nodes_deleted", result.NodesDeleted,
		"relationships_deleted", result.RelationshipsDeleted)

	return result, nil
}

// CleanupMatchLinks deletes stale relationships for one MatchLink schema. The
// schema's mandatory scoping properties stand in for a scope node, so stale
// links written by one caller never disturb another's.
func (r *Runner) CleanupMatchLinks(ctx context.Context, schema *model.MatchLinkSchema, kwargs model.Kwargs) (*Result, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	// The scoping kwargs are mandatory for MatchLinks; ResolveParams rejects
	// a call that omits them.
	params, err := model.ResolveParams(
		[]string{model.KwargSubResourceLabel, model.KwargSubResourceID}, kwargs)
	if err != nil {
		return nil, err
	}
	params[querybuilder.ParamLimitSize] = r.batchSize

	result := &Result{}
	if err := r.runBatched(ctx, r.builder.MatchLinkCleanup(schema), params, result); err != nil {
		return nil, types.WrapRetryableError(types.STORE_CLEANUP_FAILED,
			fmt.Sprintf("cleanup failed for match link %s-%s-%s",
				schema.SourceLabel, schema.RelLabel, schema.TargetLabel), err)
	}

	r.logger.Info("cleanup complete",
		"rel_label", schema.RelLabel,
		"relationships_deleted", result.RelationshipsDeleted)

	return result, nil
}

func (r *Runner) params(kwargs model.Kwargs, scope *model.Scope) (map[string]any, error) {
	params, err := model.ResolveParams(nil, kwargs)
	if err != nil {
		return nil, err
	}
	params[querybuilder.ParamLimitSize] = r.batchSize
	if scope != nil {
		params[querybuilder.ParamScopeID] = model.NormalizeValue(scope.ID)
	}
	return params, nil
}

// runBatched repeats one bounded delete statement until it removes fewer
// entities than the batch limit, meaning no full batch of stale state
// remains.
func (r *Runner) runBatched(ctx context.Context, cypher string, params map[string]any, result *Result) error {
	for {
		res, err := r.client.Write(ctx, cypher, params)
		if err != nil {
			return err
		}
		deleted := res.Summary.NodesDeleted + res.Summary.RelationshipsDeleted
		result.add(res.Summary)
		if deleted < r.batchSize {
			return nil
		}
	}
}
