package detection

import (
	"context"
	"sync"
	"time"
)

// MockResponse is the canned behaviour for one provider name.
type MockResponse struct {
	Predictions []Prediction
	Err         error

	// Delay holds the call back. A Delay longer than the branch timeout
	// returns ctx.Err().
	Delay time.Duration

	// Panic makes the call panic with this value.
	Panic any
}

// Mock implements Client for testing, keyed by provider name.
type Mock struct {
	// Responses by provider name. Missing names return no predictions.
	Responses map[string]MockResponse

	mu       sync.Mutex
	calls    map[string]int
	payloads []string
}

// NewMock creates a mock with the given responses.
func NewMock(responses map[string]MockResponse) *Mock {
	if responses == nil {
		responses = map[string]MockResponse{}
	}
	return &Mock{Responses: responses, calls: map[string]int{}}
}

// Detect records the call and plays back the canned response.
func (m *Mock) Detect(ctx context.Context, spec ProviderSpec, req Request) ([]Prediction, error) {
	m.mu.Lock()
	m.calls[spec.Name]++
	m.payloads = append(m.payloads, req.Payload)
	resp := m.Responses[spec.Name]
	m.mu.Unlock()

	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if resp.Panic != nil {
		panic(resp.Panic)
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	return append([]Prediction(nil), resp.Predictions...), nil
}

// Calls returns how often the named provider was called.
func (m *Mock) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

// TotalCalls returns the number of calls across all providers.
func (m *Mock) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

// Payloads returns every payload received, in call order.
func (m *Mock) Payloads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.payloads...)
}
