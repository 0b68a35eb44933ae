// Package syncer orchestrates one sync run end to end: it stamps the run
// with a single update tag, ensures indexes, loads every registered module's
// collected rows, and finishes with the staleness cleanup post-pass.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vanshika2720/cartography-sub000/internal/cleanup"
	"github.com/vanshika2720/cartography-sub000/internal/graph"
	"github.com/vanshika2720/cartography-sub000/internal/index"
	"github.com/vanshika2720/cartography-sub000/internal/ingest"
	"github.com/vanshika2720/cartography-sub000/internal/model"
	"github.com/vanshika2720/cartography-sub000/internal/types"
)

// NodeBatch couples a node schema with the rows collected for it and the
// per-entity constants its bindings reference. The run's update tag is
// injected by the syncer; modules never supply it.
type NodeBatch struct {
	Schema *model.NodeSchema
	Rows   []model.Row
	Kwargs model.Kwargs
}

// LinkBatch is the MatchLink counterpart of NodeBatch.
type LinkBatch struct {
	Schema *model.MatchLinkSchema
	Rows   []model.Row
	Kwargs model.Kwargs
}

// Dataset is everything one module collected for one run. Node batches are
// loaded in slice order, so modules list root entity types before the types
// whose relationships match against them.
type Dataset struct {
	Nodes []NodeBatch
	Links []LinkBatch
}

// Module is one provider integration. Schemas declares every schema the
// module may ever load (used for index management up front); Collect fetches
// and transforms the source data for one run.
type Module interface {
	Name() string
	Schemas() ([]*model.NodeSchema, []*model.MatchLinkSchema)
	Collect(ctx context.Context, scope *model.Scope) (*Dataset, error)
}

// ModuleResult aggregates load and cleanup statistics for one module.
type ModuleResult struct {
	Rows                 int
	NodesCreated         int
	RelationshipsCreated int
	NodesDeleted         int
	RelationshipsDeleted int

	// Err is set when the module failed; its cleanup is skipped so a failed
	// collection can never delete the entities it did not get to re-stamp.
	Err error
}

// RunResult describes one completed sync run.
type RunResult struct {
	RunID     string
	UpdateTag int64
	Modules   map[string]*ModuleResult
}

// Syncer runs registered modules against one graph. It holds no per-run
// state, so one Syncer may serve concurrent runs over different scopes.
type Syncer struct {
	client   graph.Client
	registry *Registry
	loader   *ingest.Loader
	cleaner  *cleanup.Runner
	indexes  *index.Manager
	logger   *slog.Logger
}

// New creates a Syncer. batchSize bounds cleanup deletion batches; pass 0
// for the default.
func New(client graph.Client, registry *Registry, logger *slog.Logger, batchSize int) *Syncer {
	return &Syncer{
		client:   client,
		registry: registry,
		loader:   ingest.NewLoader(client, logger),
		cleaner:  cleanup.NewRunner(client, logger, batchSize),
		indexes:  index.NewManager(client, logger),
		logger:   logger,
	}
}

// Run executes one sync run over the given scope (nil for unscoped
// deployments).
//
// The run generates a single update tag and passes the identical value to
// every load and cleanup call. Cleanup runs strictly after all modules have
// loaded; a module whose collection or load failed keeps its stale data
// until a later successful run, which is the safe direction to fail in.
//
// Run returns an error when every module failed or indexes could not be
// ensured; individual module failures are reported in the RunResult.
func (s *Syncer) Run(ctx context.Context, scope *model.Scope) (*RunResult, error) {
	modules := s.registry.Modules()
	if len(modules) == 0 {
		return nil, types.NewError(types.SYNC_NO_MODULES, "no modules registered")
	}

	result := &RunResult{
		RunID:     uuid.NewString(),
		UpdateTag: time.Now().Unix(),
		Modules:   make(map[string]*ModuleResult, len(modules)),
	}
	logger := s.logger.With("run_id", result.RunID, "update_tag", result.UpdateTag)
	logger.Info("sync run starting", "modules", len(modules))

	if err := s.ensureIndexes(ctx, modules); err != nil {
		return nil, err
	}

	// Load phase: every module collects and loads before any cleanup runs.
	datasets := make(map[string]*Dataset, len(modules))
	for _, m := range modules {
		mr := &ModuleResult{}
		result.Modules[m.Name()] = mr

		dataset, err := s.loadModule(ctx, logger, m, scope, result.UpdateTag, mr)
		if err != nil {
			mr.Err = err
			logger.Error("module sync failed", "module", m.Name(), "error", err)
			continue
		}
		datasets[m.Name()] = dataset
	}

	// Cleanup post-pass, successful modules only.
	for _, m := range modules {
		dataset, ok := datasets[m.Name()]
		if !ok {
			continue
		}
		mr := result.Modules[m.Name()]
		if err := s.cleanupModule(ctx, dataset, scope, result.UpdateTag, mr); err != nil {
			mr.Err = err
			logger.Error("module cleanup failed", "module", m.Name(), "error", err)
		}
	}

	failed := 0
	for _, mr := range result.Modules {
		if mr.Err != nil {
			failed++
		}
	}
	logger.Info("sync run finished", "failed_modules", failed)

	if failed == len(modules) {
		return result, types.NewError(types.SYNC_MODULE_FAILED, "all modules failed")
	}
	return result, nil
}

func (s *Syncer) ensureIndexes(ctx context.Context, modules []Module) error {
	var nodes []*model.NodeSchema
	var links []*model.MatchLinkSchema
	for _, m := range modules {
		n, l := m.Schemas()
		nodes = append(nodes, n...)
		links = append(links, l...)
	}
	return s.indexes.EnsureIndexes(ctx, nodes, links)
}

func (s *Syncer) loadModule(ctx context.Context, logger *slog.Logger, m Module, scope *model.Scope, tag int64, mr *ModuleResult) (*Dataset, error) {
	dataset, err := m.Collect(ctx, scope)
	if err != nil {
		return nil, types.WrapError(types.SYNC_COLLECTION_FAILED,
			fmt.Sprintf("collection failed for module %s", m.Name()), err)
	}

	for _, batch := range dataset.Nodes {
		loaded, err := s.loader.LoadNodes(ctx, batch.Schema, batch.Rows, withTag(batch.Kwargs, tag))
		if err != nil {
			return nil, err
		}
		mr.Rows += loaded.Rows
		mr.NodesCreated += loaded.NodesCreated
		mr.RelationshipsCreated += loaded.RelationshipsCreated
	}
	for _, batch := range dataset.Links {
		loaded, err := s.loader.LoadMatchLinks(ctx, batch.Schema, batch.Rows, withTag(batch.Kwargs, tag))
		if err != nil {
			return nil, err
		}
		mr.Rows += loaded.Rows
		mr.RelationshipsCreated += loaded.RelationshipsCreated
	}

	logger.Info("module loaded", "module", m.Name(), "rows", mr.Rows)
	return dataset, nil
}

func (s *Syncer) cleanupModule(ctx context.Context, dataset *Dataset, scope *model.Scope, tag int64, mr *ModuleResult) error {
	for _, batch := range dataset.Nodes {
		cleaned, err := s.cleaner.CleanupNodes(ctx, batch.Schema, scope, withTag(batch.Kwargs, tag))
		if err != nil {
			return err
		}
		mr.NodesDeleted += cleaned.NodesDeleted
		mr.RelationshipsDeleted += cleaned.RelationshipsDeleted
	}
	for _, batch := range dataset.Links {
		cleaned, err := s.cleaner.CleanupMatchLinks(ctx, batch.Schema, withTag(batch.Kwargs, tag))
		if err != nil {
			return err
		}
		mr.RelationshipsDeleted += cleaned.RelationshipsDeleted
	}
	return nil
}

// withTag copies the batch kwargs and stamps the run's tag, so every load and
// cleanup call in one run observes the identical value regardless of what a
// module put in its kwargs.
func withTag(kwargs model.Kwargs, tag int64) model.Kwargs {
	out := make(model.Kwargs, len(kwargs)+1)
	for k, v := range kwargs {
		out[k] = v
	}
	out[model.KwargUpdateTag] = tag
	return out
}
