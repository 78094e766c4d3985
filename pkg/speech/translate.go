package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/teslashibe/go-sensesafe/internal/httpc"
	"github.com/teslashibe/go-sensesafe/internal/metrics"
	"github.com/teslashibe/go-sensesafe/pkg/provider"
)

// Translator translates user-facing text. It never fails: on any problem
// the input comes back unchanged.
type Translator interface {
	Translate(ctx context.Context, text, target string) string
}

// NoopTranslator returns text as is.
type NoopTranslator struct{}

// Translate returns text.
func (NoopTranslator) Translate(_ context.Context, text, _ string) string { return text }

// LibreTranslate calls a LibreTranslate server. Source text is English.
type LibreTranslate struct {
	baseURL string
	client  httpc.Doer
	timeout time.Duration
	logger  *slog.Logger
}

// NewLibreTranslate creates a translator for the server at baseURL.
func NewLibreTranslate(baseURL string, client httpc.Doer, logger *slog.Logger) *LibreTranslate {
	if logger == nil {
		logger = slog.Default()
	}
	return &LibreTranslate{
		baseURL: baseURL,
		client:  httpc.OrDefault(client),
		timeout: 10 * time.Second,
		logger:  logger.With("component", "speech.translate"),
	}
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type translateResponse struct {
	TranslatedText *string `json:"translatedText"`
}

// Translate returns text in target, or text itself when target is English,
// the server is not configured, or the call fails.
func (l *LibreTranslate) Translate(ctx context.Context, text, target string) string {
	out, err := l.TranslateE(ctx, text, target)
	if err != nil {
		l.logger.Warn("translation failed", "target", target, "error", err)
		return text
	}
	return out
}

// TranslateE is Translate with the error exposed.
func (l *LibreTranslate) TranslateE(ctx context.Context, text, target string) (string, error) {
	lang := ISO639(target)
	if text == "" || lang == "" || lang == "en" {
		return text, nil
	}
	if provider.IsPlaceholder(l.baseURL) {
		return text, provider.Configuration("libretranslate", provider.ErrMissingEndpoint)
	}

	start := time.Now()
	out, err := l.call(ctx, text, lang)
	result := metrics.ResultOK
	if err != nil {
		result = metrics.ResultError
	}
	metrics.ObserveProvider(metrics.PipelineTranslate, "libretranslate", result, time.Since(start))
	return out, err
}

func (l *LibreTranslate) call(ctx context.Context, text, lang string) (string, error) {
	const name = "libretranslate"
	body, _ := json.Marshal(translateRequest{Q: text, Source: "en", Target: lang, Format: "text"})

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, provider.JoinURL(l.baseURL, "translate"), bytes.NewReader(body))
	if err != nil {
		return "", provider.Configuration(name, fmt.Errorf("%w: %v", provider.ErrMissingEndpoint, err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", provider.Transport(name, err)
	}
	data, err := provider.ReadBody(name, resp, 1<<20)
	if err != nil {
		return "", err
	}
	var parsed translateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", provider.Parse(name, err)
	}
	if parsed.TranslatedText == nil {
		return "", provider.Parse(name, fmt.Errorf("missing translatedText"))
	}
	return *parsed.TranslatedText, nil
}
