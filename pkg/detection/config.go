package detection

import (
	"log/slog"
	"time"

	"github.com/teslashibe/go-sensesafe/pkg/connectivity"
	"github.com/teslashibe/go-sensesafe/pkg/imaging"
)

// DefaultTimeout bounds each provider call.
const DefaultTimeout = 15 * time.Second

// Config holds orchestrator configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// Client performs provider calls. Defaults to a Roboflow client.
	Client Client

	// Gate is consulted once per scan. Defaults to always reachable.
	Gate connectivity.Gate

	// Timeout applies to each branch separately.
	Timeout time.Duration

	// Encoder turns images into the shared payload.
	Encoder imaging.Encoder

	Logger *slog.Logger
}

// Option is a functional option for configuring the orchestrator.
type Option func(*Config)

// WithClient sets the provider client.
func WithClient(c Client) Option {
	return func(cfg *Config) {
		cfg.Client = c
	}
}

// WithGate sets the connectivity gate.
func WithGate(g connectivity.Gate) Option {
	return func(cfg *Config) {
		cfg.Gate = g
	}
}

// WithTimeout sets the per-provider timeout.
func WithTimeout(d time.Duration) Option {
	return func(cfg *Config) {
		cfg.Timeout = d
	}
}

// WithEncoder sets the image encoder.
func WithEncoder(e imaging.Encoder) Option {
	return func(cfg *Config) {
		cfg.Encoder = e
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *Config) {
		cfg.Logger = l
	}
}

// DefaultConfig returns the defaults used by New.
func DefaultConfig() Config {
	return Config{
		Gate:    connectivity.Static(true),
		Timeout: DefaultTimeout,
		Encoder: imaging.NewEncoder(imaging.DefaultQuality, 0),
		Logger:  slog.Default(),
	}
}
