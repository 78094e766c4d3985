package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/teslashibe/go-sensesafe/internal/httpc"
	"github.com/teslashibe/go-sensesafe/pkg/audioio"
	"github.com/teslashibe/go-sensesafe/pkg/provider"
)

const azurePath = "speech/recognition/conversation/cognitiveservices/v1"

// Azure calls the Azure short-audio speech-to-text REST API.
type Azure struct {
	key      string
	endpoint string
	client   httpc.Doer
	logger   *slog.Logger
}

// NewAzure creates an Azure provider. endpoint is the regional base URL,
// e.g. https://westeurope.stt.speech.microsoft.com.
func NewAzure(key, endpoint string, client httpc.Doer, logger *slog.Logger) *Azure {
	if logger == nil {
		logger = slog.Default()
	}
	return &Azure{
		key:      key,
		endpoint: endpoint,
		client:   httpc.OrDefault(client),
		logger:   logger.With("component", "speech.azure"),
	}
}

// Name returns "azure".
func (a *Azure) Name() string { return "azure" }

// Ready checks the key and endpoint.
func (a *Azure) Ready() error {
	if !provider.HasCredential(a.key) {
		return provider.Configuration(a.Name(), provider.ErrMissingCredential)
	}
	if provider.IsPlaceholder(a.endpoint) {
		return provider.Configuration(a.Name(), provider.ErrMissingEndpoint)
	}
	return nil
}

type azureResponse struct {
	RecognitionStatus *string `json:"RecognitionStatus"`
	DisplayText       *string `json:"DisplayText"`
}

// Transcribe posts the utterance as WAV.
func (a *Azure) Transcribe(ctx context.Context, seg *audioio.Segment, language string) (string, error) {
	u := provider.JoinURL(a.endpoint, azurePath) + "?language=" + url.QueryEscape(language)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(seg.WAV()))
	if err != nil {
		return "", provider.Configuration(a.Name(), fmt.Errorf("%w: %v", provider.ErrMissingEndpoint, err))
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", a.key)
	req.Header.Set("Content-Type", fmt.Sprintf("audio/wav; codecs=audio/pcm; samplerate=%d", seg.SampleRate))
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", provider.Transport(a.Name(), err)
	}
	body, err := provider.ReadBody(a.Name(), resp, 1<<20)
	if err != nil {
		return "", err
	}

	var parsed azureResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", provider.Parse(a.Name(), err)
	}
	if parsed.RecognitionStatus == nil {
		return "", provider.Parse(a.Name(), fmt.Errorf("missing RecognitionStatus"))
	}
	if *parsed.RecognitionStatus != "Success" {
		return "", provider.Rejected(a.Name(), "recognition status "+*parsed.RecognitionStatus)
	}
	if parsed.DisplayText == nil {
		return "", provider.Parse(a.Name(), fmt.Errorf("missing DisplayText"))
	}

	a.logger.Debug("transcribed", "language", language, "chars", len(*parsed.DisplayText))
	return *parsed.DisplayText, nil
}
