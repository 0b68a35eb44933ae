package graph

import "github.com/vanshika2720/cartography-sub000/internal/types"

// Graph database error codes
const (
	// Connection errors
	ErrCodeGraphConnectionFailed types.ErrorCode = "GRAPH_CONNECTION_FAILED"
	ErrCodeGraphConnectionClosed types.ErrorCode = "GRAPH_CONNECTION_CLOSED"

	// Configuration errors
	ErrCodeGraphInvalidConfig types.ErrorCode = "GRAPH_INVALID_CONFIG"

	// Query errors
	ErrCodeGraphQueryFailed types.ErrorCode = "GRAPH_QUERY_FAILED"
	ErrCodeGraphWriteFailed types.ErrorCode = "GRAPH_WRITE_FAILED"
)
