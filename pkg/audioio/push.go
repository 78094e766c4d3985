package audioio

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
)

// ErrPushClosed is returned when pushing to a closed PushSource.
var ErrPushClosed = errors.New("audioio: push source closed")

// PushSource is a Source fed by the caller, one frame at a time. Frames are
// re-sliced into BufferDuration chunks. Read returns io.EOF once CloseInput
// was called and every buffered frame was consumed.
type PushSource struct {
	cfg    Config
	frames chan []byte

	pending []byte

	closeOnce sync.Once
	closed    atomic.Bool

	chunksRead  atomic.Int64
	samplesRead atomic.Int64
	overruns    atomic.Int64
	running     atomic.Bool
}

// NewPushSource creates a push source buffering up to depth frames.
func NewPushSource(cfg Config, depth int) *PushSource {
	if depth <= 0 {
		depth = 64
	}
	return &PushSource{cfg: cfg, frames: make(chan []byte, depth)}
}

// Push queues a PCM16 frame. It never blocks; a full queue drops the frame.
func (p *PushSource) Push(frame []byte) error {
	if p.closed.Load() {
		return ErrPushClosed
	}
	cp := append([]byte(nil), frame...)
	select {
	case p.frames <- cp:
		return nil
	default:
		p.overruns.Add(1)
		return nil
	}
}

// CloseInput marks the end of input.
func (p *PushSource) CloseInput() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.frames)
	})
}

// Start marks the source running.
func (p *PushSource) Start(ctx context.Context) error {
	p.running.Store(true)
	return nil
}

// Read returns the next full buffer, or a short final buffer at end of input.
func (p *PushSource) Read(ctx context.Context) (AudioChunk, error) {
	want := p.cfg.BufferBytes()
	for len(p.pending) < want {
		select {
		case f, ok := <-p.frames:
			if !ok {
				return p.flush()
			}
			p.pending = append(p.pending, f...)
		case <-ctx.Done():
			return AudioChunk{}, ctx.Err()
		}
	}
	data := p.pending[:want]
	p.pending = append([]byte(nil), p.pending[want:]...)
	return p.chunk(data), nil
}

func (p *PushSource) flush() (AudioChunk, error) {
	n := len(p.pending) &^ 1
	if n == 0 {
		return AudioChunk{}, io.EOF
	}
	data := p.pending[:n]
	p.pending = nil
	return p.chunk(data), nil
}

func (p *PushSource) chunk(data []byte) AudioChunk {
	var c AudioChunk
	c.FromBytes(data, p.cfg.SampleRate, p.cfg.Channels)
	p.chunksRead.Add(1)
	p.samplesRead.Add(int64(len(c.Samples)))
	return c
}

// Stop marks the source stopped. Buffered frames stay readable.
func (p *PushSource) Stop() error {
	p.running.Store(false)
	return nil
}

// Config returns the audio configuration.
func (p *PushSource) Config() Config { return p.cfg }

// Name returns "push".
func (p *PushSource) Name() string { return string(BackendPush) }

// Stats returns capture statistics.
func (p *PushSource) Stats() SourceStats {
	return SourceStats{
		ChunksRead:  p.chunksRead.Load(),
		SamplesRead: p.samplesRead.Load(),
		Overruns:    p.overruns.Load(),
		Running:     p.running.Load(),
		Backend:     p.Name(),
	}
}
