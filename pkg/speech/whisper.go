package speech

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/teslashibe/go-sensesafe/internal/httpc"
	"github.com/teslashibe/go-sensesafe/pkg/audioio"
	"github.com/teslashibe/go-sensesafe/pkg/provider"
)

// Whisper transcribes through the OpenAI audio API.
type Whisper struct {
	key    string
	model  string
	client *openai.Client
	logger *slog.Logger
}

// NewWhisper creates a Whisper provider. baseURL may point at any
// OpenAI-compatible server; empty uses api.openai.com.
func NewWhisper(key, baseURL, model string, client httpc.Doer, logger *slog.Logger) *Whisper {
	if model == "" {
		model = openai.Whisper1
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg := openai.DefaultConfig(key)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = httpc.OrDefault(client)

	return &Whisper{
		key:    key,
		model:  model,
		client: openai.NewClientWithConfig(cfg),
		logger: logger.With("component", "speech.whisper"),
	}
}

// Name returns "whisper".
func (w *Whisper) Name() string { return "whisper" }

// Ready checks the API key.
func (w *Whisper) Ready() error {
	if !provider.HasCredential(w.key) {
		return provider.Configuration(w.Name(), provider.ErrMissingCredential)
	}
	return nil
}

// Transcribe uploads the utterance as WAV.
func (w *Whisper) Transcribe(ctx context.Context, seg *audioio.Segment, language string) (string, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: "audio.wav",
		Reader:   bytes.NewReader(seg.WAV()),
		Language: ISO639(language),
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", w.classify(err)
	}
	w.logger.Debug("transcribed", "model", w.model, "chars", len(resp.Text))
	return resp.Text, nil
}

func (w *Whisper) classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return provider.Status(w.Name(), apiErr.HTTPStatusCode, []byte(apiErr.Message))
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return provider.Status(w.Name(), reqErr.HTTPStatusCode, reqErr.Body)
	}
	return provider.Transport(w.Name(), err)
}
