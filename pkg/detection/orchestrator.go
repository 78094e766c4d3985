package detection

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/teslashibe/go-sensesafe/internal/metrics"
	"github.com/teslashibe/go-sensesafe/pkg/provider"
)

// Orchestrator dispatches a scan to every enabled provider in parallel.
// Specs are fixed at construction and shared read-only between scans.
type Orchestrator struct {
	specs  []ProviderSpec
	cfg    Config
	logger *slog.Logger
}

// New creates an orchestrator over specs, kept in the given order.
func New(specs []ProviderSpec, opts ...Option) *Orchestrator {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Client == nil {
		cfg.Client = NewRoboflow(nil, cfg.Logger)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Orchestrator{
		specs:  append([]ProviderSpec(nil), specs...),
		cfg:    cfg,
		logger: cfg.Logger.With("component", "detection.orchestrator"),
	}
}

// Specs returns a copy of the provider specs in dispatch order.
func (o *Orchestrator) Specs() []ProviderSpec {
	return append([]ProviderSpec(nil), o.specs...)
}

// ProvidersConfigured reports whether at least one provider is enabled.
func (o *Orchestrator) ProvidersConfigured() bool {
	for _, s := range o.specs {
		if s.Enabled() {
			return true
		}
	}
	return false
}

// Detect encodes img once and scans it against every enabled provider.
func (o *Orchestrator) Detect(ctx context.Context, img image.Image) (res Result) {
	defer o.recoverScan(&res)
	if r, done := o.precheck(); done {
		return r
	}
	payload, err := o.cfg.Encoder.Base64(img)
	if err != nil {
		o.logger.Warn("image encode failed", "error", err)
		return o.finish(Result{Predictions: []Prediction{}, Summary: SummaryInvalidImage})
	}
	return o.scan(ctx, Request{Payload: payload, Encoding: EncodingJPEG})
}

// DetectEncoded scans an already encoded JPEG.
func (o *Orchestrator) DetectEncoded(ctx context.Context, jpegData []byte) (res Result) {
	defer o.recoverScan(&res)
	if r, done := o.precheck(); done {
		return r
	}
	if len(jpegData) == 0 {
		return o.finish(Result{Predictions: []Prediction{}, Summary: SummaryInvalidImage})
	}
	payload := base64.StdEncoding.EncodeToString(jpegData)
	return o.scan(ctx, Request{Payload: payload, Encoding: EncodingJPEG})
}

// recoverScan turns a panic outside the provider branches into an empty
// result.
func (o *Orchestrator) recoverScan(res *Result) {
	if p := recover(); p != nil {
		o.logger.Error("scan panicked", "panic", p)
		*res = o.finish(Result{Predictions: []Prediction{}, Summary: SummaryNoExits})
	}
}

func (o *Orchestrator) precheck() (Result, bool) {
	if !o.cfg.Gate.Reachable() {
		o.logger.Info("scan skipped", "reason", "offline")
		return o.finish(Result{Predictions: []Prediction{}, Summary: SummaryNoInternet}), true
	}
	if !o.ProvidersConfigured() {
		o.logger.Info("scan skipped", "reason", "no providers configured")
		return o.finish(Result{Predictions: []Prediction{}, Summary: SummaryNotConfigured}), true
	}
	return Result{}, false
}

func (o *Orchestrator) scan(ctx context.Context, req Request) Result {
	start := time.Now()
	outcomes := make([]ModelOutcome, len(o.specs))

	var g errgroup.Group
	for i, spec := range o.specs {
		if !spec.Enabled() {
			outcomes[i] = ModelOutcome{Provider: spec.Name, Err: spec.configError()}
			metrics.ObserveProvider(metrics.PipelineDetect, spec.Name, metrics.ResultSkipped, 0)
			continue
		}
		g.Go(func() error {
			outcomes[i] = o.branch(ctx, spec, req)
			return nil
		})
	}
	_ = g.Wait()

	r := merge(outcomes)
	o.logger.Info("scan complete",
		"predictions", len(r.Predictions),
		"has_exits", r.HasExits,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return o.finish(r)
}

// branch runs one provider call under its own timeout. Caller cancellation
// does not reach it; only the per-provider deadline does.
func (o *Orchestrator) branch(ctx context.Context, spec ProviderSpec, req Request) (out ModelOutcome) {
	start := time.Now()
	out.Provider = spec.Name

	defer func() {
		if v := recover(); v != nil {
			out.Predictions = nil
			out.Err = provider.Panic(spec.Name, v)
		}
		result := metrics.ResultOK
		if out.Err != nil {
			result = metrics.ResultError
			o.logger.Warn("provider failed",
				"provider", spec.Name,
				"kind", provider.KindOf(out.Err).String(),
				"error", out.Err,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		}
		metrics.ObserveProvider(metrics.PipelineDetect, spec.Name, result, time.Since(start))
	}()

	bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.Timeout)
	defer cancel()

	preds, err := o.cfg.Client.Detect(bctx, spec, req)
	if err != nil {
		var pe *provider.Error
		switch {
		case bctx.Err() != nil && provider.KindOf(err) == provider.KindProvider:
			err = provider.Transport(spec.Name, fmt.Errorf("%w after %s", bctx.Err(), o.cfg.Timeout))
		case !errors.As(err, &pe):
			err = provider.Transport(spec.Name, err)
		}
		out.Err = err
		return out
	}
	if preds == nil {
		preds = []Prediction{}
	}
	out.Predictions = preds
	return out
}

func (o *Orchestrator) finish(r Result) Result {
	r.ID = uuid.NewString()
	metrics.ScansTotal.WithLabelValues(r.Summary).Inc()
	return r
}
