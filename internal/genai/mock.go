package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MockClient is a scripted Client for tests. Responses are raw JSON documents
// consumed in order; the final response repeats once the script runs out.
type MockClient struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Requests  []Request
}

// Generate records the request and decodes the next scripted response.
func (m *MockClient) Generate(_ context.Context, req Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return m.Err
	}
	if len(m.Responses) == 0 {
		return fmt.Errorf("mock client has no scripted response for %s", req.SchemaName)
	}
	idx := len(m.Requests) - 1
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	if err := json.Unmarshal([]byte(m.Responses[idx]), req.Out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrStructural, req.SchemaName, err)
	}
	return nil
}

// CallCount reports how many generation calls were made.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}
