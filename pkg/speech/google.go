package speech

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gspeech "google.golang.org/api/speech/v1"

	"github.com/teslashibe/go-sensesafe/pkg/audioio"
	"github.com/teslashibe/go-sensesafe/pkg/provider"
)

// GoogleConfig selects how the Cloud Speech client authenticates.
// CredentialsFile wins over APIKey.
type GoogleConfig struct {
	APIKey          string
	CredentialsFile string

	// Endpoint and HTTPClient override the API location and transport.
	Endpoint   string
	HTTPClient *http.Client
}

// Google transcribes through Cloud Speech-to-Text v1.
type Google struct {
	svc    *gspeech.Service
	err    error
	logger *slog.Logger
}

// NewGoogle creates a Google provider. Missing or unreadable credentials
// are reported by Ready rather than here.
func NewGoogle(ctx context.Context, cfg GoogleConfig, logger *slog.Logger) *Google {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Google{logger: logger.With("component", "speech.google")}

	var opts []option.ClientOption
	switch {
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			g.err = provider.Configuration(g.Name(), fmt.Errorf("%w: %v", provider.ErrMissingCredential, err))
			return g
		}
		creds, err := google.CredentialsFromJSON(ctx, data, gspeech.CloudPlatformScope)
		if err != nil {
			g.err = provider.Configuration(g.Name(), fmt.Errorf("%w: %v", provider.ErrMissingCredential, err))
			return g
		}
		opts = append(opts, option.WithCredentials(creds))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	default:
		g.err = provider.Configuration(g.Name(), provider.ErrMissingCredential)
		return g
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	svc, err := gspeech.NewService(ctx, opts...)
	if err != nil {
		g.err = provider.Configuration(g.Name(), err)
		return g
	}
	g.svc = svc
	return g
}

// Name returns "google".
func (g *Google) Name() string { return "google" }

// Ready reports credential problems found at construction.
func (g *Google) Ready() error { return g.err }

// Transcribe sends the utterance inline as LINEAR16.
func (g *Google) Transcribe(ctx context.Context, seg *audioio.Segment, language string) (string, error) {
	if g.svc == nil {
		return "", g.err
	}
	req := &gspeech.RecognizeRequest{
		Config: &gspeech.RecognitionConfig{
			Encoding:          "LINEAR16",
			SampleRateHertz:   int64(seg.SampleRate),
			AudioChannelCount: int64(seg.Channels),
			LanguageCode:      language,
		},
		Audio: &gspeech.RecognitionAudio{
			Content: base64.StdEncoding.EncodeToString(seg.PCM),
		},
	}

	resp, err := g.svc.Speech.Recognize(req).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return "", provider.Status(g.Name(), gerr.Code, []byte(gerr.Message))
		}
		return "", provider.Transport(g.Name(), err)
	}

	var parts []string
	for _, r := range resp.Results {
		if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
			continue
		}
		parts = append(parts, strings.TrimSpace(r.Alternatives[0].Transcript))
	}
	if len(parts) == 0 {
		return "", provider.Rejected(g.Name(), "no speech recognized")
	}
	g.logger.Debug("transcribed", "results", len(parts))
	return strings.Join(parts, " "), nil
}
