package audioio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/teslashibe/go-sensesafe/internal/metrics"
)

// VAD defaults.
const (
	DefaultSilenceThreshold = 200
	DefaultSilenceDuration  = 1500 * time.Millisecond
	DefaultMaxDuration      = 10 * time.Second
	DefaultWarmUp           = 2 * time.Second
)

// Stop reasons reported on a Segment.
const (
	StopSilence     = "silence"
	StopMaxDuration = "max_duration"
	StopEndOfInput  = "end_of_input"
)

// VADConfig controls when an utterance ends.
type VADConfig struct {
	// Threshold is the RMS above which a chunk counts as speech.
	Threshold float64 `yaml:"threshold" json:"threshold"`

	// SilenceDuration of quiet after the last loud chunk ends the utterance.
	SilenceDuration time.Duration `yaml:"silence_duration" json:"silence_duration"`

	// MaxDuration caps the utterance.
	MaxDuration time.Duration `yaml:"max_duration" json:"max_duration"`

	// WarmUp suppresses the silence stop right after capture starts.
	WarmUp time.Duration `yaml:"warm_up" json:"warm_up"`
}

// DefaultVADConfig returns the speech defaults.
func DefaultVADConfig() VADConfig {
	return VADConfig{
		Threshold:       DefaultSilenceThreshold,
		SilenceDuration: DefaultSilenceDuration,
		MaxDuration:     DefaultMaxDuration,
		WarmUp:          DefaultWarmUp,
	}
}

// Segment is one captured utterance.
type Segment struct {
	PCM        []byte
	SampleRate int
	Channels   int
	Duration   time.Duration
	StopReason string
}

// WAV returns the segment wrapped in a WAV header.
func (s *Segment) WAV() []byte {
	return EncodeWAV(s.PCM, s.SampleRate, s.Channels)
}

// Empty reports whether the segment holds no audio.
func (s *Segment) Empty() bool {
	return s == nil || len(s.PCM) == 0
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Opener returns the source for one capture.
type Opener func(ctx context.Context) (Source, error)

// StaticOpener always returns src.
func StaticOpener(src Source) Opener {
	return func(context.Context) (Source, error) { return src, nil }
}

// Recorder captures one utterance at a time.
type Recorder struct {
	open   Opener
	vad    VADConfig
	clock  Clock
	logger *slog.Logger
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithVAD sets the voice activity parameters.
func WithVAD(v VADConfig) RecorderOption {
	return func(r *Recorder) { r.vad = v }
}

// WithClock replaces the wall clock.
func WithClock(c Clock) RecorderOption {
	return func(r *Recorder) { r.clock = c }
}

// WithRecorderLogger sets the logger.
func WithRecorderLogger(l *slog.Logger) RecorderOption {
	return func(r *Recorder) { r.logger = l }
}

// NewRecorder creates a recorder that opens a fresh source per capture.
func NewRecorder(open Opener, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		open:   open,
		vad:    DefaultVADConfig(),
		clock:  systemClock{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "audioio.recorder")
	return r
}

// CaptureUtterance records until silence follows speech, the maximum
// duration passes, or the input ends. Reads are bounded by MaxDuration of
// wall time, so a stalled source still ends with StopMaxDuration. It returns
// nil when the source cannot be opened, a read fails, ctx is cancelled, or
// nothing was captured.
func (r *Recorder) CaptureUtterance(ctx context.Context) *Segment {
	src, err := r.open(ctx)
	if err != nil || src == nil {
		r.logger.Warn("audio source unavailable", "error", err)
		metrics.CapturesTotal.WithLabelValues("open_failed").Inc()
		return nil
	}
	if err := src.Start(ctx); err != nil {
		r.logger.Warn("audio source failed to start", "source", src.Name(), "error", err)
		metrics.CapturesTotal.WithLabelValues("open_failed").Inc()
		return nil
	}
	defer src.Stop()

	readCtx := ctx
	if r.vad.MaxDuration > 0 {
		var cancel context.CancelFunc
		readCtx, cancel = context.WithTimeout(ctx, r.vad.MaxDuration)
		defer cancel()
	}

	cfg := src.Config()
	var buf []byte
	start := r.clock.Now()
	lastLoud := start
	reason := ""

	for reason == "" {
		chunk, err := src.Read(readCtx)
		if errors.Is(err, io.EOF) {
			reason = StopEndOfInput
			break
		}
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			reason = StopMaxDuration
			break
		}
		if err != nil {
			r.logger.Warn("capture aborted", "source", src.Name(), "error", err)
			metrics.CapturesTotal.WithLabelValues("read_failed").Inc()
			return nil
		}
		if len(chunk.Samples) == 0 {
			continue
		}

		buf = append(buf, chunk.Bytes()...)
		if chunk.RMS() > r.vad.Threshold {
			lastLoud = r.clock.Now()
		}

		now := r.clock.Now()
		elapsed := now.Sub(start)
		switch {
		case elapsed > r.vad.MaxDuration:
			reason = StopMaxDuration
		case now.Sub(lastLoud) > r.vad.SilenceDuration && elapsed > r.vad.WarmUp:
			reason = StopSilence
		}
	}

	metrics.CapturesTotal.WithLabelValues(reason).Inc()
	if len(buf) == 0 {
		r.logger.Debug("capture ended empty", "reason", reason)
		return nil
	}

	seg := &Segment{
		PCM:        buf,
		SampleRate: cfg.SampleRate,
		Channels:   cfg.Channels,
		StopReason: reason,
	}
	if frame := cfg.SampleRate * cfg.Channels * 2; frame > 0 {
		seg.Duration = time.Duration(len(buf)) * time.Second / time.Duration(frame)
	}
	r.logger.Info("utterance captured",
		"reason", reason,
		"bytes", len(buf),
		"duration_ms", seg.Duration.Milliseconds(),
	)
	return seg
}
