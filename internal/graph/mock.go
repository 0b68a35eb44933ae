package graph

import (
	"context"
	"sync"
	"time"

	"github.com/vanshika2720/cartography-sub000/internal/types"
)

// MockCall represents a recorded method call on the mock graph client.
type MockCall struct {
	Method     string
	Cypher     string
	Params     map[string]any
	Statements []Statement
	Timestamp  time.Time
}

// MockClient is a mock implementation of Client for testing.
// It records every statement it receives and replays configurable
// results, so tests can assert on the exact Cypher and parameters the
// engine produced without a running database.
type MockClient struct {
	mu sync.RWMutex

	connected    bool
	healthStatus types.HealthStatus
	calls        []MockCall

	readResults  []QueryResult
	writeResults []QueryResult
	readError    error
	writeError   error
	connectError error
	closeError   error
}

// NewMockClient creates a new mock graph client for testing.
// It starts connected so tests can issue statements immediately.
func NewMockClient() *MockClient {
	return &MockClient{
		connected:    true,
		healthStatus: types.Healthy("mock graph client"),
		calls:        make([]MockCall, 0),
	}
}

// Connect records the call and simulates connection.
func (m *MockClient) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{Method: "Connect", Timestamp: time.Now()})

	if m.connectError != nil {
		return m.connectError
	}

	m.connected = true
	return nil
}

// Close records the call and simulates disconnection.
func (m *MockClient) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{Method: "Close", Timestamp: time.Now()})

	if m.closeError != nil {
		return m.closeError
	}

	m.connected = false
	return nil
}

// Health records the call and returns the configured health status.
func (m *MockClient) Health(ctx context.Context) types.HealthStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{Method: "Health", Timestamp: time.Now()})

	if !m.connected {
		return types.Unhealthy("not connected")
	}

	return m.healthStatus
}

// Read records the call and returns the next configured read result (FIFO).
func (m *MockClient) Read(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{
		Method:    "Read",
		Cypher:    cypher,
		Params:    params,
		Timestamp: time.Now(),
	})

	if !m.connected {
		return QueryResult{}, types.NewError(ErrCodeGraphConnectionClosed, "not connected")
	}
	if m.readError != nil {
		return QueryResult{}, m.readError
	}

	if len(m.readResults) > 0 {
		result := m.readResults[0]
		m.readResults = m.readResults[1:]
		return result, nil
	}

	return emptyResult(), nil
}

// Write records the call and returns the next configured write result (FIFO).
func (m *MockClient) Write(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{
		Method:    "Write",
		Cypher:    cypher,
		Params:    params,
		Timestamp: time.Now(),
	})

	if !m.connected {
		return QueryResult{}, types.NewError(ErrCodeGraphConnectionClosed, "not connected")
	}
	if m.writeError != nil {
		return QueryResult{}, m.writeError
	}

	return m.nextWriteResult(), nil
}

// WriteBatch records the call with every statement and returns the next
// configured write result (FIFO).
func (m *MockClient) WriteBatch(ctx context.Context, statements []Statement) (QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recorded := make([]Statement, len(statements))
	copy(recorded, statements)
	m.calls = append(m.calls, MockCall{
		Method:     "WriteBatch",
		Statements: recorded,
		Timestamp:  time.Now(),
	})

	if !m.connected {
		return QueryResult{}, types.NewError(ErrCodeGraphConnectionClosed, "not connected")
	}
	if m.writeError != nil {
		return QueryResult{}, m.writeError
	}

	return m.nextWriteResult(), nil
}

func (m *MockClient) nextWriteResult() QueryResult {
	if len(m.writeResults) > 0 {
		result := m.writeResults[0]
		m.writeResults = m.writeResults[1:]
		return result
	}
	return emptyResult()
}

func emptyResult() QueryResult {
	return QueryResult{
		Records: []map[string]any{},
		Columns: []string{},
		Summary: QuerySummary{},
	}
}

// AddReadResult adds a single read result to the FIFO queue.
func (m *MockClient) AddReadResult(result QueryResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readResults = append(m.readResults, result)
}

// AddWriteResult adds a single write result to the FIFO queue.
// Write and WriteBatch share the queue.
func (m *MockClient) AddWriteResult(result QueryResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeResults = append(m.writeResults, result)
}

// SetHealthStatus configures what Health() should return.
func (m *MockClient) SetHealthStatus(status types.HealthStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthStatus = status
}

// SetConnectError configures Connect() to return an error.
func (m *MockClient) SetConnectError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectError = err
}

// SetCloseError configures Close() to return an error.
func (m *MockClient) SetCloseError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeError = err
}

// SetReadError configures Read() to return an error.
func (m *MockClient) SetReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readError = err
}

// SetWriteError configures Write() and WriteBatch() to return an error.
func (m *MockClient) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeError = err
}

// GetCalls returns all recorded method calls.
func (m *MockClient) GetCalls() []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	calls := make([]MockCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// GetCallsByMethod returns all calls to a specific method.
func (m *MockClient) GetCallsByMethod(method string) []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	calls := make([]MockCall, 0)
	for _, call := range m.calls {
		if call.Method == method {
			calls = append(calls, call)
		}
	}
	return calls
}

// WriteStatements returns every statement issued through Write and
// WriteBatch, flattened in execution order.
func (m *MockClient) WriteStatements() []Statement {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statements := make([]Statement, 0)
	for _, call := range m.calls {
		switch call.Method {
		case "Write":
			statements = append(statements, Statement{Cypher: call.Cypher, Params: call.Params})
		case "WriteBatch":
			statements = append(statements, call.Statements...)
		}
	}
	return statements
}

// CallCount returns the total number of method calls.
func (m *MockClient) CallCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.calls)
}

// Reset clears all recorded calls and resets the mock to its initial state.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connected = true
	m.healthStatus = types.Healthy("mock graph client")
	m.calls = make([]MockCall, 0)
	m.readResults = nil
	m.writeResults = nil
	m.readError = nil
	m.writeError = nil
	m.connectError = nil
	m.closeError = nil
}
