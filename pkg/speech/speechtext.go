package speech

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/teslashibe/go-sensesafe/internal/httpc"
	"github.com/teslashibe/go-sensesafe/pkg/audioio"
	"github.com/teslashibe/go-sensesafe/pkg/provider"
)

// DefaultSpeechTextURL is the SpeechText.AI recognition endpoint.
const DefaultSpeechTextURL = "https://api.speechtext.ai/recognize"

// SpeechText calls the SpeechText.AI recognition API.
type SpeechText struct {
	key    string
	url    string
	client httpc.Doer
	logger *slog.Logger
}

// NewSpeechText creates a SpeechText provider. An empty url uses the
// public endpoint.
func NewSpeechText(key, url string, client httpc.Doer, logger *slog.Logger) *SpeechText {
	if url == "" {
		url = DefaultSpeechTextURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SpeechText{
		key:    key,
		url:    url,
		client: httpc.OrDefault(client),
		logger: logger.With("component", "speech.speechtext"),
	}
}

// Name returns "speechtext".
func (s *SpeechText) Name() string { return "speechtext" }

// Ready checks the API key.
func (s *SpeechText) Ready() error {
	if !provider.HasCredential(s.key) {
		return provider.Configuration(s.Name(), provider.ErrMissingCredential)
	}
	return nil
}

// Transcribe uploads the utterance as a multipart WAV file and reads a
// plain-text transcript.
func (s *SpeechText) Transcribe(ctx context.Context, seg *audioio.Segment, language string) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", provider.Parse(s.Name(), fmt.Errorf("create form file: %w", err))
	}
	if _, err := part.Write(seg.WAV()); err != nil {
		return "", provider.Parse(s.Name(), fmt.Errorf("write audio: %w", err))
	}
	if err := w.WriteField("language", language); err != nil {
		return "", provider.Parse(s.Name(), fmt.Errorf("write language field: %w", err))
	}
	if err := w.WriteField("output", "txt"); err != nil {
		return "", provider.Parse(s.Name(), fmt.Errorf("write output field: %w", err))
	}
	if err := w.Close(); err != nil {
		return "", provider.Parse(s.Name(), fmt.Errorf("close multipart: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, &body)
	if err != nil {
		return "", provider.Configuration(s.Name(), fmt.Errorf("%w: %v", provider.ErrMissingEndpoint, err))
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.key)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", provider.Transport(s.Name(), err)
	}
	data, err := provider.ReadBody(s.Name(), resp, 1<<20)
	if err != nil {
		return "", err
	}

	s.logger.Debug("transcribed", "language", language, "chars", len(data))
	return string(data), nil
}
