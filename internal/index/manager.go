// Package index derives the lookup indexes a schema universe needs and
// creates them idempotently. Every property used as a node key or referenced
// by a relationship matcher must be indexed for the upsert MATCHes to stay
// cheap, and the staleness property must be indexed for cleanup scans.
package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vanshika2720/cartography-sub000/internal/graph"
	"github.com/vanshika2720/cartography-sub000/internal/model"
	"github.com/vanshika2720/cartography-sub000/internal/querybuilder"
	"github.com/vanshika2720/cartography-sub000/internal/types"
)

// Index is one required lookup index: a (label, property) pair, either on a
// node label or on a relationship type.
type Index struct {
	Label          string
	Property       string
	OnRelationship bool
}

// Manager derives and creates lookup indexes.
// Creation is idempotent: EnsureIndexes can run before every sync and leaves
// an identical index set however many times it runs.
type Manager struct {
	client  graph.Client
	builder *querybuilder.Builder
	logger  *slog.Logger
}

// NewManager creates an index manager on top of the given graph client.
func NewManager(client graph.Client, logger *slog.Logger) *Manager {
	return &Manager{
		client:  client,
		builder: querybuilder.New(),
		logger:  logger,
	}
}

// Collect derives the full index set for a schema universe: every node key
// property, every matcher-referenced property on the target (and source, for
// MatchLinks) label, the staleness property per node label, every property
// flagged for an extra index, and relationship indexes for MatchLink
// staleness and scoping properties. Order is deterministic and duplicates
// are dropped.
func Collect(nodes []*model.NodeSchema, links []*model.MatchLinkSchema) []Index {
	out := make([]Index, 0)
	seen := make(map[Index]bool)

	add := func(idx Index) {
		if !seen[idx] {
			seen[idx] = true
			out = append(out, idx)
		}
	}

	for _, s := range nodes {
		for _, p := range s.Properties {
			if p.Key || p.Binding.ExtraIndex() {
				add(Index{Label: s.Label, Property: p.Name})
			}
		}
		add(Index{Label: s.Label, Property: model.PropLastUpdated})
		for _, rel := range s.AllRelationships() {
			for _, term := range rel.TargetMatcher {
				add(Index{Label: rel.TargetLabel, Property: term.Property})
			}
		}
	}

	for _, s := range links {
		for _, term := range s.SourceMatcher {
			add(Index{Label: s.SourceLabel, Property: term.Property})
		}
		for _, term := range s.TargetMatcher {
			add(Index{Label: s.TargetLabel, Property: term.Property})
		}
		add(Index{Label: s.RelLabel, Property: model.PropLastUpdated, OnRelationship: true})
		add(Index{Label: s.RelLabel, Property: model.PropSubResourceID, OnRelationship: true})
	}

	return out
}

// EnsureIndexes derives the index set for the given schemas and creates
// every index that does not already exist. Schema operations run in their
// own transactions, one statement per index.
func (m *Manager) EnsureIndexes(ctx context.Context, nodes []*model.NodeSchema, links []*model.MatchLinkSchema) error {
	indexes := Collect(nodes, links)

	added := 0
	for _, idx := range indexes {
		var cypher string
		if idx.OnRelationship {
			cypher = m.builder.RelIndexCreate(idx.Label, idx.Property)
		} else {
			cypher = m.builder.IndexCreate(idx.Label, idx.Property)
		}

		result, err := m.client.Write(ctx, cypher, nil)
		if err != nil {
			return types.WrapError(types.STORE_INDEX_FAILED,
				fmt.Sprintf("index creation failed for %s.%s", idx.Label, idx.Property), err)
		}
		added += result.Summary.IndexesAdded
	}

	m.logger.Debug("ensured lookup indexes",
		"required", len(indexes),
		"added", added)
	return nil
}
