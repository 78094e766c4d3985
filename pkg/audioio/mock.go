package audioio

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

// FakeClock is a manually advanced clock for capture tests.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock starts a clock at an arbitrary fixed instant.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// MockSource plays a script of per-chunk amplitudes. Each chunk is a square
// wave whose RMS equals the amplitude. When a clock is attached, every Read
// advances it by one buffer duration.
type MockSource struct {
	cfg    Config
	script []int16
	clock  *FakeClock

	// Repeat replays the last amplitude forever instead of ending with io.EOF.
	Repeat bool

	// StartErr is returned by Start.
	StartErr error

	// ReadErr is returned by Read once FailAfter chunks were delivered.
	ReadErr   error
	FailAfter int

	mu      sync.Mutex
	pos     int
	running bool
	starts  int
	stops   int
}

// NewMockSource creates a scripted source.
func NewMockSource(cfg Config, amplitudes ...int16) *MockSource {
	return &MockSource{cfg: cfg, script: amplitudes}
}

// Silence returns n zero-amplitude entries.
func Silence(n int) []int16 { return Tone(0, n) }

// Tone returns n entries of the given amplitude.
func Tone(amplitude int16, n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = amplitude
	}
	return out
}

// WithClock advances clock by one buffer on every Read.
func (m *MockSource) WithClock(clock *FakeClock) *MockSource {
	m.clock = clock
	return m
}

// Start marks the source running.
func (m *MockSource) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts++
	if m.StartErr != nil {
		return m.StartErr
	}
	m.running = true
	return nil
}

// Read returns the next scripted chunk.
func (m *MockSource) Read(ctx context.Context) (AudioChunk, error) {
	if err := ctx.Err(); err != nil {
		return AudioChunk{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return AudioChunk{}, io.EOF
	}
	if m.ReadErr != nil && m.pos >= m.FailAfter {
		return AudioChunk{}, m.ReadErr
	}

	var amp int16
	switch {
	case m.pos < len(m.script):
		amp = m.script[m.pos]
	case m.Repeat && len(m.script) > 0:
		amp = m.script[len(m.script)-1]
	default:
		return AudioChunk{}, io.EOF
	}
	m.pos++

	n := m.cfg.BufferSize() * m.cfg.Channels
	samples := make([]int16, n)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = amp
		} else {
			samples[i] = -amp
		}
	}
	if m.clock != nil {
		m.clock.Advance(m.cfg.BufferDuration)
	}
	return AudioChunk{Samples: samples, SampleRate: m.cfg.SampleRate, Channels: m.cfg.Channels}, nil
}

// Stop marks the source stopped.
func (m *MockSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	m.stops++
	return nil
}

// Config returns the audio configuration.
func (m *MockSource) Config() Config { return m.cfg }

// Name returns "mock".
func (m *MockSource) Name() string { return string(BackendMock) }

// ChunksRead returns how many chunks were delivered.
func (m *MockSource) ChunksRead() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos
}

// Stops returns how many times Stop was called.
func (m *MockSource) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

// ErrMockDevice is a stand-in device failure.
var ErrMockDevice = errors.New("mock device failure")
