package audioio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
)

// ExecSource reads raw PCM16 from the stdout of a capture command,
// by default arecord.
type ExecSource struct {
	cfg    Config
	name   string
	args   []string
	logger *slog.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdout io.ReadCloser

	chunksRead  atomic.Int64
	samplesRead atomic.Int64
	running     atomic.Bool
}

// NewALSASource records from cfg.Device through arecord.
func NewALSASource(cfg Config, logger *slog.Logger) *ExecSource {
	device := cfg.Device
	if device == "" {
		device = "default"
	}
	args := []string{
		"-q",
		"-D", device,
		"-f", "S16_LE",
		"-r", strconv.Itoa(cfg.SampleRate),
		"-c", strconv.Itoa(cfg.Channels),
		"-t", "raw",
	}
	return NewExecSource(cfg, logger, "arecord", args...)
}

// NewExecSource runs name with args and reads raw PCM16 matching cfg from
// its stdout.
func NewExecSource(cfg Config, logger *slog.Logger, name string, args ...string) *ExecSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecSource{
		cfg:    cfg,
		name:   name,
		args:   args,
		logger: logger.With("component", "audioio.exec", "command", name),
	}
}

// Start launches the capture command.
func (s *ExecSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd != nil {
		return nil
	}

	cmd := exec.CommandContext(ctx, s.name, s.args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("audioio: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("audioio: start %s: %w", s.name, err)
	}
	s.cmd = cmd
	s.stdout = stdout
	s.running.Store(true)
	s.logger.Info("capture started",
		"sample_rate", s.cfg.SampleRate,
		"channels", s.cfg.Channels,
		"device", s.cfg.Device,
	)
	return nil
}

// Read reads one buffer. A short final read is returned before io.EOF.
func (s *ExecSource) Read(ctx context.Context) (AudioChunk, error) {
	if err := ctx.Err(); err != nil {
		return AudioChunk{}, err
	}
	s.mu.Lock()
	stdout := s.stdout
	s.mu.Unlock()
	if stdout == nil {
		return AudioChunk{}, io.EOF
	}

	buf := make([]byte, s.cfg.BufferBytes())
	n, err := io.ReadFull(stdout, buf)
	n &^= 1
	switch {
	case err == nil:
	case errors.Is(err, io.ErrUnexpectedEOF) && n > 0:
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.ErrClosedPipe):
		return AudioChunk{}, io.EOF
	default:
		if !s.running.Load() {
			return AudioChunk{}, io.EOF
		}
		return AudioChunk{}, fmt.Errorf("audioio: read: %w", err)
	}

	var c AudioChunk
	c.FromBytes(buf[:n], s.cfg.SampleRate, s.cfg.Channels)
	s.chunksRead.Add(1)
	s.samplesRead.Add(int64(len(c.Samples)))
	return c, nil
}

// Stop kills the capture command. It is safe to call Stop multiple times.
func (s *ExecSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil {
		return nil
	}
	s.running.Store(false)
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
	s.cmd = nil
	s.stdout = nil
	s.logger.Info("capture stopped", "chunks", s.chunksRead.Load())
	return nil
}

// Config returns the audio configuration.
func (s *ExecSource) Config() Config { return s.cfg }

// Name returns the backend name.
func (s *ExecSource) Name() string { return string(BackendALSA) }

// Stats returns capture statistics.
func (s *ExecSource) Stats() SourceStats {
	return SourceStats{
		ChunksRead:  s.chunksRead.Load(),
		SamplesRead: s.samplesRead.Load(),
		Running:     s.running.Load(),
		Backend:     s.Name(),
	}
}
