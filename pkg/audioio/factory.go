package audioio

import (
	"fmt"
	"log/slog"
	"os/exec"
)

// NewSource creates a capture source for cfg.Backend.
// BackendAuto picks ALSA when arecord is installed.
func NewSource(cfg Config, logger *slog.Logger) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	backend := cfg.Backend
	if backend == BackendAuto {
		backend = detectBestBackend()
	}

	logger.Info("creating audio source",
		"backend", backend,
		"sample_rate", cfg.SampleRate,
		"channels", cfg.Channels,
		"buffer_ms", cfg.BufferDuration.Milliseconds(),
	)

	switch backend {
	case BackendALSA:
		return NewALSASource(cfg, logger), nil
	case BackendPush:
		return NewPushSource(cfg, 0), nil
	case BackendMock:
		return NewMockSource(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}

func detectBestBackend() Backend {
	if _, err := exec.LookPath("arecord"); err == nil {
		return BackendALSA
	}
	return BackendMock
}

// AvailableBackends returns the backends usable on this host.
func AvailableBackends() []Backend {
	backends := []Backend{BackendPush, BackendMock}
	if _, err := exec.LookPath("arecord"); err == nil {
		backends = append(backends, BackendALSA)
	}
	return backends
}
