// Package speech turns captured utterances into text through an ordered
// chain of transcription providers.
package speech

import (
	"context"
	"errors"
	"strings"

	"github.com/teslashibe/go-sensesafe/pkg/audioio"
)

// DegradedMessage is returned when every provider failed.
const DegradedMessage = "Speech services are not configured yet."

// DefaultLanguage is used when the caller passes no language.
const DefaultLanguage = "en-US"

// Sentinel errors for common error conditions.
var (
	// ErrNoProviders is returned when building a chain from no names.
	ErrNoProviders = errors.New("speech: no providers configured")

	// ErrUnknownProvider is returned for a chain name with no implementation.
	ErrUnknownProvider = errors.New("speech: unknown provider")

	// ErrEmptyAudio means there was nothing to transcribe.
	ErrEmptyAudio = errors.New("speech: empty audio")
)

// Provider transcribes one utterance.
type Provider interface {
	// Name identifies the provider in logs and results.
	Name() string

	// Ready returns nil when credentials and endpoint are present.
	// It never touches the network.
	Ready() error

	// Transcribe sends the utterance once and returns the transcript.
	Transcribe(ctx context.Context, seg *audioio.Segment, language string) (string, error)
}

// ISO639 reduces a locale like "en-US" to its two-letter language code.
func ISO639(language string) string {
	language = strings.TrimSpace(language)
	if i := strings.IndexAny(language, "-_"); i > 0 {
		language = language[:i]
	}
	return strings.ToLower(language)
}
