package speech

import (
	"context"
	"sync"
	"time"

	"github.com/teslashibe/go-sensesafe/pkg/audioio"
)

// Mock implements Provider for testing.
type Mock struct {
	ProviderName string

	// Text is returned on success.
	Text string

	// Err is returned from Transcribe.
	Err error

	// ReadyErr is returned from Ready.
	ReadyErr error

	// Delay holds the call back, honouring ctx.
	Delay time.Duration

	// Panic makes Transcribe panic with this value.
	Panic any

	mu        sync.Mutex
	calls     int
	languages []string
}

// NewMock creates a mock that returns text.
func NewMock(name, text string) *Mock {
	return &Mock{ProviderName: name, Text: text}
}

// Name returns the configured name.
func (m *Mock) Name() string { return m.ProviderName }

// Ready returns ReadyErr.
func (m *Mock) Ready() error { return m.ReadyErr }

// Transcribe records the call and plays back the canned answer.
func (m *Mock) Transcribe(ctx context.Context, seg *audioio.Segment, language string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.languages = append(m.languages, language)
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if m.Panic != nil {
		panic(m.Panic)
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}

// Calls returns the number of Transcribe calls.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Languages returns the languages passed to Transcribe.
func (m *Mock) Languages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.languages...)
}
