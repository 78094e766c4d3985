package speech

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/teslashibe/go-sensesafe/internal/metrics"
	"github.com/teslashibe/go-sensesafe/pkg/audioio"
	"github.com/teslashibe/go-sensesafe/pkg/connectivity"
	"github.com/teslashibe/go-sensesafe/pkg/provider"
)

// DefaultTimeout bounds each link of the chain.
const DefaultTimeout = 30 * time.Second

// Attempt records one link of a chain run.
type Attempt struct {
	Provider string        `json:"provider"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// Skipped reports whether the provider was never contacted.
func (a Attempt) Skipped() bool { return provider.IsConfiguration(a.Err) }

// Result is the outcome of a chain run.
type Result struct {
	Text     string    `json:"text"`
	Provider string    `json:"provider,omitempty"`
	Degraded bool      `json:"degraded"`
	Attempts []Attempt `json:"-"`
}

// Chain tries providers in order. The first success wins; when all fail the
// result is DegradedMessage.
type Chain struct {
	providers []Provider
	timeout   time.Duration
	gate      connectivity.Gate
	logger    *slog.Logger
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithTimeout sets the per-link timeout.
func WithTimeout(d time.Duration) ChainOption {
	return func(c *Chain) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithGate makes every link fail fast while the device is offline.
func WithGate(g connectivity.Gate) ChainOption {
	return func(c *Chain) { c.gate = g }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ChainOption {
	return func(c *Chain) { c.logger = l }
}

// NewChain creates a chain. The order of providers is fixed.
func NewChain(providers []Provider, opts ...ChainOption) *Chain {
	c := &Chain{
		providers: append([]Provider(nil), providers...),
		timeout:   DefaultTimeout,
		gate:      connectivity.Static(true),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "speech.chain")
	return c
}

// Providers returns the provider names in order.
func (c *Chain) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Configured reports whether at least one provider is ready.
func (c *Chain) Configured() bool {
	for _, p := range c.providers {
		if p.Ready() == nil {
			return true
		}
	}
	return false
}

// Transcribe returns the first successful transcript or DegradedMessage.
func (c *Chain) Transcribe(ctx context.Context, seg *audioio.Segment, language string) string {
	return c.TranscribeDetailed(ctx, seg, language).Text
}

// TranscribeDetailed runs the chain and reports every attempt.
func (c *Chain) TranscribeDetailed(ctx context.Context, seg *audioio.Segment, language string) (res Result) {
	if language == "" {
		language = DefaultLanguage
	}
	defer func() {
		if v := recover(); v != nil {
			c.logger.Error("transcription panicked", "panic", v)
			res = Result{Text: DegradedMessage, Degraded: true, Attempts: res.Attempts}
		}
		metrics.ObserveTranscription(res.Provider, res.Degraded)
	}()

	if seg.Empty() {
		c.logger.Info("nothing to transcribe")
		return Result{Text: DegradedMessage, Degraded: true}
	}
	online := c.gate.Reachable()

	for i, p := range c.providers {
		a := c.try(ctx, p, seg, language, online)
		res.Attempts = append(res.Attempts, a.Attempt)
		if a.Err == nil {
			if i > 0 {
				c.logger.Info("fallback provider succeeded", "provider", p.Name(), "provider_index", i)
			}
			res.Text = a.text
			res.Provider = p.Name()
			return res
		}
		c.logger.Warn("provider failed, trying next",
			"provider", p.Name(),
			"provider_index", i,
			"kind", provider.KindOf(a.Err).String(),
			"error", a.Err,
		)
	}

	c.logger.Error("all transcription providers failed", "attempts", len(res.Attempts))
	res.Text = DegradedMessage
	res.Degraded = true
	return res
}

type linkResult struct {
	Attempt
	text string
}

func (c *Chain) try(ctx context.Context, p Provider, seg *audioio.Segment, language string, online bool) (out linkResult) {
	name := p.Name()
	out.Provider = name
	start := time.Now()

	defer func() {
		if v := recover(); v != nil {
			out.Err = provider.Panic(name, v)
			out.text = ""
		}
		out.Duration = time.Since(start)
		result := metrics.ResultOK
		switch {
		case out.Skipped():
			result = metrics.ResultSkipped
		case out.Err != nil:
			result = metrics.ResultError
		}
		metrics.ObserveProvider(metrics.PipelineTranscribe, name, result, out.Duration)
	}()

	if err := p.Ready(); err != nil {
		out.Err = asConfiguration(name, err)
		return out
	}
	if !online {
		out.Err = provider.Connectivity(name)
		return out
	}

	lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	text, err := p.Transcribe(lctx, seg, language)
	if err != nil {
		var pe *provider.Error
		if !errors.As(err, &pe) {
			err = provider.Transport(name, err)
		}
		out.Err = err
		return out
	}
	text = strings.TrimSpace(text)
	if text == "" {
		out.Err = provider.Rejected(name, provider.ErrEmptyResult.Error())
		return out
	}
	out.text = text
	return out
}

func asConfiguration(name string, err error) error {
	var pe *provider.Error
	if errors.As(err, &pe) && pe.Kind == provider.KindConfiguration {
		return err
	}
	return provider.Configuration(name, err)
}
