package graph

import (
	"context"
	"sync"
	"time"

	"github.com/pathforge/rolegraph/internal/types"
)

// MockCall represents a recorded method call on the mock graph client.
type MockCall struct {
	Method    string
	Args      []any
	Timestamp time.Time
}

// MockClient is a mock implementation of Client for testing. It provides
// configurable responses and tracks all method calls for verification.
type MockClient struct {
	mu sync.RWMutex

	// State
	connected bool
	calls     []MockCall

	// Configurable responses
	readResults  []QueryResult
	writeResults []QueryResult
	connectError error
	closeError   error
	verifyError  error
	readError    error
	writeError   error
}

// NewMockClient creates a new mock graph client for testing.
func NewMockClient() *MockClient {
	return &MockClient{
		calls:        make([]MockCall, 0),
		readResults:  make([]QueryResult, 0),
		writeResults: make([]QueryResult, 0),
	}
}

// Connect records the call and simulates connection.
func (m *MockClient) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("Connect")

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

	m.record("Close")

	if m.closeError != nil {
		return m.closeError
	}

	m.connected = false
	return nil
}

// VerifyConnectivity records the call and returns the configured error.
func (m *MockClient) VerifyConnectivity(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("VerifyConnectivity")

	if !m.connected {
		return types.NewError(ErrCodeNotConnected, "driver not initialized")
	}
	return m.verifyError
}

// IsConnected returns whether the mock is in connected state.
func (m *MockClient) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// ExecuteRead records the call and returns the next configured read result.
func (m *MockClient) ExecuteRead(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("ExecuteRead", cypher, params)

	if !m.connected {
		return QueryResult{}, types.NewError(ErrCodeNotConnected, "driver not connected")
	}
	if m.readError != nil {
		return QueryResult{}, m.readError
	}

	if len(m.readResults) > 0 {
		result := m.readResults[0]
		m.readResults = m.readResults[1:]
		return result, nil
	}

	return QueryResult{Records: []map[string]any{}, Columns: []string{}}, nil
}

// ExecuteWrite records the call and returns the next configured write result.
func (m *MockClient) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("ExecuteWrite", cypher, params)

	if !m.connected {
		return QueryResult{}, types.NewError(ErrCodeNotConnected, "driver not connected")
	}
	if m.writeError != nil {
		return QueryResult{}, m.writeError
	}

	if len(m.writeResults) > 0 {
		result := m.writeResults[0]
		m.writeResults = m.writeResults[1:]
		return result, nil
	}

	return QueryResult{Records: []map[string]any{}, Columns: []string{}}, nil
}

// record appends a call entry. Caller must hold m.mu.
func (m *MockClient) record(method string, args ...any) {
	m.calls = append(m.calls, MockCall{
		Method:    method,
		Args:      args,
		Timestamp: time.Now(),
	})
}

// AddReadResult appends a result to the ExecuteRead FIFO queue.
func (m *MockClient) AddReadResult(result QueryResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readResults = append(m.readResults, result)
}

// AddWriteResult appends a result to the ExecuteWrite FIFO queue.
func (m *MockClient) AddWriteResult(result QueryResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeResults = append(m.writeResults, result)
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

// SetVerifyError configures VerifyConnectivity() to return an error.
func (m *MockClient) SetVerifyError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifyError = err
}

// SetReadError configures ExecuteRead() to return an error.
func (m *MockClient) SetReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readError = err
}

// SetWriteError configures ExecuteWrite() to return an error.
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

	m.connected = false
	m.calls = make([]MockCall, 0)
	m.readResults = make([]QueryResult, 0)
	m.writeResults = make([]QueryResult, 0)
	m.connectError = nil
	m.closeError = nil
	m.verifyError = nil
	m.readError = nil
	m.writeError = nil
}
