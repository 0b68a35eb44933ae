// Package graph provides the graph database client abstraction used by the
// sync engine.
//
// The Client interface exposes parameterized Cypher execution with managed
// read and write transactions. WriteBatch runs a slice of statements inside
// one write transaction, which is the atomicity unit for a load batch: the
// node merge statement and every relationship merge statement for one entity
// type either all commit or none do.
//
// Neo4jClient is the production implementation on top of
// neo4j-go-driver/v5. MockClient is an in-memory recording double for unit
// tests. TracedClient decorates any Client with OpenTelemetry spans.
package graph
