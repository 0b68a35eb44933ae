// Package querybuilder compiles schema descriptors into the parameterized
// Cypher statements the sync engine executes: batched node and relationship
// upserts, staleness-driven cleanup deletions, and idempotent index creation.
//
// All statements are generated against the same small parameter surface:
// $rows for the resolved row batch, $UPDATE_TAG for the run's staleness tag,
// $SCOPE_ID / $LIMIT_SIZE for cleanup, plus one parameter per kwargs-bound
// schema property. Values never appear in query text; model validation
// guarantees the interpolated labels, property names, and field names are
// plain identifiers.
package querybuilder
