// Package audioio captures PCM16 audio and cuts it into utterances.
//
// Backends:
//   - ALSA via the arecord command (Linux devices)
//   - Push, fed by network clients (websocket voice sessions)
//   - Mock, scripted amplitudes for tests
package audioio

import (
	"fmt"
	"time"
)

// Backend represents the audio backend type.
type Backend string

const (
	// BackendAuto selects the best available backend.
	BackendAuto Backend = "auto"
	// BackendALSA records through arecord.
	BackendALSA Backend = "alsa"
	// BackendPush reads frames pushed by the caller.
	BackendPush Backend = "push"
	// BackendMock plays a scripted signal.
	BackendMock Backend = "mock"
)

// DefaultSampleRate is what the speech providers expect.
const DefaultSampleRate = 16000

// Config holds audio configuration.
type Config struct {
	// Backend specifies which audio backend to use.
	Backend Backend `yaml:"backend" json:"backend"`

	// SampleRate is the audio sample rate in Hz.
	SampleRate int `yaml:"sample_rate" json:"sample_rate"`

	// Channels is the number of audio channels.
	Channels int `yaml:"channels" json:"channels"`

	// BufferDuration is the size of one read.
	// Default: 100ms (1600 samples at 16kHz)
	BufferDuration time.Duration `yaml:"buffer_duration" json:"buffer_duration"`

	// Device is the ALSA device name, e.g. "default", "plughw:1,0".
	Device string `yaml:"device" json:"device"`
}

// DefaultConfig returns 16 kHz mono with 100 ms buffers.
func DefaultConfig() Config {
	return Config{
		Backend:        BackendAuto,
		SampleRate:     DefaultSampleRate,
		Channels:       1,
		BufferDuration: 100 * time.Millisecond,
		Device:         "default",
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("channels must be positive, got %d", c.Channels)
	}
	if c.BufferDuration <= 0 {
		return fmt.Errorf("buffer_duration must be positive, got %v", c.BufferDuration)
	}
	return nil
}

// BufferSize returns the number of samples per channel in one buffer.
func (c *Config) BufferSize() int {
	return int(float64(c.SampleRate) * c.BufferDuration.Seconds())
}

// BufferBytes returns the size of a buffer in bytes.
func (c *Config) BufferBytes() int {
	return c.BufferSize() * c.Channels * 2
}
