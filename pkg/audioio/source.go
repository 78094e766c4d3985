package audioio

import (
	"context"
	"time"
)

// AudioChunk is one read of interleaved PCM16 samples.
type AudioChunk struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Bytes returns the chunk as little-endian PCM16.
func (c *AudioChunk) Bytes() []byte {
	return SamplesToBytes(c.Samples)
}

// FromBytes populates the chunk from little-endian PCM16.
func (c *AudioChunk) FromBytes(data []byte, sampleRate, channels int) {
	c.SampleRate = sampleRate
	c.Channels = channels
	c.Samples = BytesToSamples(data)
}

// Duration returns the playback length of the chunk.
func (c *AudioChunk) Duration() time.Duration {
	if c.SampleRate == 0 || c.Channels == 0 {
		return 0
	}
	frames := len(c.Samples) / c.Channels
	return time.Duration(frames) * time.Second / time.Duration(c.SampleRate)
}

// RMS returns the root mean square amplitude in raw sample units.
func (c *AudioChunk) RMS() float64 {
	return RMS(c.Samples)
}

// Source captures audio from a microphone or other input.
type Source interface {
	// Start begins capture.
	Start(ctx context.Context) error

	// Read returns the next chunk, blocking if necessary.
	// Returns io.EOF once the input has ended.
	Read(ctx context.Context) (AudioChunk, error)

	// Stop halts capture. It is safe to call Stop multiple times.
	Stop() error

	// Config returns the audio configuration.
	Config() Config

	// Name returns the backend name.
	Name() string
}

// SourceStats contains statistics about a source.
type SourceStats struct {
	ChunksRead  int64  `json:"chunks_read"`
	SamplesRead int64  `json:"samples_read"`
	Overruns    int64  `json:"overruns"`
	Running     bool   `json:"running"`
	Backend     string `json:"backend"`
}

// SourceWithStats extends Source with statistics.
type SourceWithStats interface {
	Source
	Stats() SourceStats
}
