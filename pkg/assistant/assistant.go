// Package assistant wires the voice path: capture an utterance, transcribe
// it, normalize it into an action key.
package assistant

import (
	"context"
	"log/slog"

	"github.com/teslashibe/go-sensesafe/pkg/audioio"
	"github.com/teslashibe/go-sensesafe/pkg/command"
	"github.com/teslashibe/go-sensesafe/pkg/speech"
)

// Transcriber is the part of speech.Chain the assistant needs.
type Transcriber interface {
	TranscribeDetailed(ctx context.Context, seg *audioio.Segment, language string) speech.Result
}

// Reply is the outcome of one voice turn.
type Reply struct {
	Transcript string          `json:"transcript"`
	Provider   string          `json:"provider,omitempty"`
	Degraded   bool            `json:"degraded"`
	Command    command.Command `json:"command"`
	Captured   bool            `json:"captured"`
}

// Assistant runs voice turns.
type Assistant struct {
	transcriber Transcriber
	normalizer  *command.Normalizer
	language    string
	logger      *slog.Logger
}

// New creates an assistant. language is the default recognition locale.
func New(t Transcriber, n *command.Normalizer, language string, logger *slog.Logger) *Assistant {
	if n == nil {
		n = command.Default()
	}
	if language == "" {
		language = speech.DefaultLanguage
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		transcriber: t,
		normalizer:  n,
		language:    language,
		logger:      logger.With("component", "assistant"),
	}
}

// Listen captures one utterance with rec and handles it. When nothing was
// captured the reply is degraded and Captured is false.
func (a *Assistant) Listen(ctx context.Context, rec *audioio.Recorder, language string) Reply {
	seg := rec.CaptureUtterance(ctx)
	if seg.Empty() {
		a.logger.Info("no utterance captured")
		return Reply{
			Transcript: speech.DegradedMessage,
			Degraded:   true,
			Command:    a.normalizer.Recognize(""),
		}
	}
	return a.Handle(ctx, seg, language)
}

// Handle transcribes seg and normalizes the transcript. A degraded
// transcript is never treated as a command.
func (a *Assistant) Handle(ctx context.Context, seg *audioio.Segment, language string) Reply {
	if language == "" {
		language = a.language
	}
	res := a.transcriber.TranscribeDetailed(ctx, seg, language)

	reply := Reply{
		Transcript: res.Text,
		Provider:   res.Provider,
		Degraded:   res.Degraded,
		Captured:   !seg.Empty(),
	}
	if res.Degraded {
		reply.Command = command.Command{Raw: res.Text}
	} else {
		reply.Command = a.normalizer.Recognize(res.Text)
	}

	a.logger.Info("voice turn",
		"provider", res.Provider,
		"degraded", res.Degraded,
		"command", reply.Command.Key,
		"recognized", reply.Command.Recognized,
	)
	return reply
}

// Normalize exposes the normalizer for text input.
func (a *Assistant) Normalize(text string) command.Command {
	return a.normalizer.Recognize(text)
}
