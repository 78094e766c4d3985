package speech

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/teslashibe/go-sensesafe/internal/httpc"
)

// Settings carries the credentials for every known provider.
type Settings struct {
	AzureKey      string
	AzureEndpoint string

	SpeechTextKey string
	SpeechTextURL string

	OpenAIKey     string
	OpenAIBaseURL string
	WhisperModel  string

	GoogleAPIKey          string
	GoogleCredentialsFile string
}

// NewProvider builds the provider registered under name.
func NewProvider(ctx context.Context, name string, s Settings, client httpc.Doer, logger *slog.Logger) (Provider, error) {
	switch name {
	case "azure":
		return NewAzure(s.AzureKey, s.AzureEndpoint, client, logger), nil
	case "speechtext":
		return NewSpeechText(s.SpeechTextKey, s.SpeechTextURL, client, logger), nil
	case "whisper", "openai":
		return NewWhisper(s.OpenAIKey, s.OpenAIBaseURL, s.WhisperModel, client, logger), nil
	case "google":
		gc := GoogleConfig{APIKey: s.GoogleAPIKey, CredentialsFile: s.GoogleCredentialsFile}
		if hc, ok := client.(*http.Client); ok {
			gc.HTTPClient = hc
		}
		return NewGoogle(ctx, gc, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
}

// BuildProviders builds providers for names, in order.
func BuildProviders(ctx context.Context, names []string, s Settings, client httpc.Doer, logger *slog.Logger) ([]Provider, error) {
	if len(names) == 0 {
		return nil, ErrNoProviders
	}
	providers := make([]Provider, 0, len(names))
	for _, n := range names {
		p, err := NewProvider(ctx, n, s, client, logger)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, nil
}
