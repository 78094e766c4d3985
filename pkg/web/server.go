// Package web exposes scanning and voice commands over HTTP and websockets.
package web

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teslashibe/go-sensesafe/pkg/assistant"
	"github.com/teslashibe/go-sensesafe/pkg/audioio"
	"github.com/teslashibe/go-sensesafe/pkg/connectivity"
	"github.com/teslashibe/go-sensesafe/pkg/detection"
	"github.com/teslashibe/go-sensesafe/pkg/hub"
	"github.com/teslashibe/go-sensesafe/pkg/speech"
)

const (
	defaultBodyLimit    = 16 * 1024 * 1024
	defaultVoiceTimeout = 60 * time.Second
)

// Options configures a Server. Detector, Chain and Assistant are required.
type Options struct {
	Addr       string
	Detector   *detection.Orchestrator
	Chain      *speech.Chain
	Assistant  *assistant.Assistant
	Translator speech.Translator
	Gate       connectivity.Gate
	Hub        *hub.Hub

	// VAD controls utterance capture on /ws/voice.
	VAD          audioio.VADConfig
	VoiceTimeout time.Duration
	BodyLimit    int

	Logger *slog.Logger
}

// Server is the HTTP front end.
type Server struct {
	app  *fiber.App
	addr string

	detector   *detection.Orchestrator
	chain      *speech.Chain
	assistant  *assistant.Assistant
	translator speech.Translator
	gate       connectivity.Gate
	hub        *hub.Hub

	vad          audioio.VADConfig
	voiceTimeout time.Duration

	logger *slog.Logger
}

// NewServer builds the fiber app and registers every route.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		addr:         opts.Addr,
		detector:     opts.Detector,
		chain:        opts.Chain,
		assistant:    opts.Assistant,
		translator:   opts.Translator,
		gate:         opts.Gate,
		hub:          opts.Hub,
		vad:          opts.VAD,
		voiceTimeout: opts.VoiceTimeout,
		logger:       logger.With("component", "web.server"),
	}
	if s.translator == nil {
		s.translator = speech.NoopTranslator{}
	}
	if s.gate == nil {
		s.gate = connectivity.Static(true)
	}
	if s.hub == nil {
		s.hub = hub.New(logger)
	}
	if s.vad == (audioio.VADConfig{}) {
		s.vad = audioio.DefaultVADConfig()
	}
	if s.voiceTimeout <= 0 {
		s.voiceTimeout = defaultVoiceTimeout
	}
	bodyLimit := opts.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = defaultBodyLimit
	}

	app := fiber.New(fiber.Config{
		AppName:               "SenseSafe",
		DisableStartupMessage: true,
		BodyLimit:             bodyLimit,
		ErrorHandler:          s.handleError,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(cors.New())
	app.Use(s.observe)

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/scan", s.handleScan)
	api.Post("/transcribe", s.handleTranscribe)
	api.Post("/command", s.handleCommand)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/voice", websocket.New(s.handleVoiceWS))
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Hub returns the event hub.
func (s *Server) Hub() *hub.Hub {
	return s.hub
}

// Start runs the event hub and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go s.hub.Run(ctx)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errc <- s.app.Listen(s.addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		if err := s.app.ShutdownWithTimeout(10 * time.Second); err != nil {
			return err
		}
		return nil
	}
}

// Shutdown stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
