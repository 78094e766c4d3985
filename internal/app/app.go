// Package app assembles the scanning and voice components from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teslashibe/go-sensesafe/internal/config"
	"github.com/teslashibe/go-sensesafe/internal/httpc"
	"github.com/teslashibe/go-sensesafe/pkg/assistant"
	"github.com/teslashibe/go-sensesafe/pkg/audioio"
	"github.com/teslashibe/go-sensesafe/pkg/command"
	"github.com/teslashibe/go-sensesafe/pkg/connectivity"
	"github.com/teslashibe/go-sensesafe/pkg/detection"
	"github.com/teslashibe/go-sensesafe/pkg/hub"
	"github.com/teslashibe/go-sensesafe/pkg/imaging"
	"github.com/teslashibe/go-sensesafe/pkg/speech"
	"github.com/teslashibe/go-sensesafe/pkg/web"
)

// App holds the wired components.
type App struct {
	Config     *config.Config
	Gate       connectivity.Gate
	Detector   *detection.Orchestrator
	Chain      *speech.Chain
	Assistant  *assistant.Assistant
	Translator speech.Translator

	logger *slog.Logger
}

// New builds every component from cfg. client is shared by all providers;
// nil uses a client with the default transport.
func New(ctx context.Context, cfg *config.Config, client httpc.Doer, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = httpc.New(0)
	}

	var gate connectivity.Gate = connectivity.Static(true)
	if cfg.ConnectivityCheck {
		gate = connectivity.NewNetGate(connectivity.WithLogger(logger))
	}

	det := detection.New(cfg.DetectorSpecs(),
		detection.WithClient(detection.NewRoboflow(client, logger)),
		detection.WithGate(gate),
		detection.WithTimeout(cfg.Detect.Timeout),
		detection.WithEncoder(imaging.NewEncoder(cfg.Detect.JPEGQuality, cfg.Detect.MaxDimension)),
		detection.WithLogger(logger),
	)

	providers, err := speech.BuildProviders(ctx, cfg.Speech.Chain, settings(cfg.Speech), client, logger)
	if err != nil {
		return nil, fmt.Errorf("transcription chain: %w", err)
	}
	chain := speech.NewChain(providers,
		speech.WithTimeout(cfg.Speech.Timeout),
		speech.WithGate(gate),
		speech.WithLogger(logger),
	)

	norm, err := command.Load(cfg.VocabularyFile, cfg.WakeWord)
	if err != nil {
		return nil, err
	}

	var tr speech.Translator = speech.NoopTranslator{}
	if cfg.Speech.LibreTranslateURL != "" {
		tr = speech.NewLibreTranslate(cfg.Speech.LibreTranslateURL, client, logger)
	}

	a := &App{
		Config:     cfg,
		Gate:       gate,
		Detector:   det,
		Chain:      chain,
		Assistant:  assistant.New(chain, norm, cfg.Speech.TargetLanguage, logger),
		Translator: tr,
		logger:     logger,
	}
	st := det.Status()
	logger.Info("components ready",
		"detectors", st.Summary,
		"transcription", chain.Providers(),
		"transcription_configured", chain.Configured(),
		"vocabulary", norm.Keys(),
	)
	return a, nil
}

func settings(c config.SpeechConfig) speech.Settings {
	return speech.Settings{
		AzureKey:              c.AzureKey,
		AzureEndpoint:         c.AzureEndpoint,
		SpeechTextKey:         c.SpeechTextKey,
		SpeechTextURL:         c.SpeechTextURL,
		OpenAIKey:             c.OpenAIKey,
		OpenAIBaseURL:         c.OpenAIBaseURL,
		WhisperModel:          c.WhisperModel,
		GoogleAPIKey:          c.GoogleAPIKey,
		GoogleCredentialsFile: c.GoogleCredentialsFile,
	}
}

// VAD returns the voice activity settings.
func (a *App) VAD() audioio.VADConfig {
	c := a.Config.Audio
	return audioio.VADConfig{
		Threshold:       c.SilenceThreshold,
		SilenceDuration: c.SilenceDuration,
		MaxDuration:     c.MaxDuration,
		WarmUp:          c.WarmUp,
	}
}

// AudioConfig returns the capture format for local microphones.
func (a *App) AudioConfig() audioio.Config {
	cfg := audioio.DefaultConfig()
	cfg.Device = a.Config.Audio.Device
	cfg.SampleRate = a.Config.Audio.SampleRate
	return cfg
}

// Microphone returns an opener creating a fresh capture source per utterance.
func (a *App) Microphone() audioio.Opener {
	return func(context.Context) (audioio.Source, error) {
		return audioio.NewSource(a.AudioConfig(), a.logger)
	}
}

// Recorder returns a recorder on the local microphone.
func (a *App) Recorder() *audioio.Recorder {
	return audioio.NewRecorder(a.Microphone(),
		audioio.WithVAD(a.VAD()),
		audioio.WithRecorderLogger(a.logger),
	)
}

// Server returns the HTTP front end.
func (a *App) Server() *web.Server {
	return web.NewServer(web.Options{
		Addr:       a.Config.HTTPAddr,
		Detector:   a.Detector,
		Chain:      a.Chain,
		Assistant:  a.Assistant,
		Translator: a.Translator,
		Gate:       a.Gate,
		Hub:        hub.New(a.logger),
		VAD:        a.VAD(),
		Logger:     a.logger,
	})
}
