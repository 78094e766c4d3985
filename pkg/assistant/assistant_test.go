package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teslashibe/go-sensesafe/internal/log"
	"github.com/teslashibe/go-sensesafe/pkg/audioio"
	"github.com/teslashibe/go-sensesafe/pkg/command"
	"github.com/teslashibe/go-sensesafe/pkg/speech"
)

func newChain(providers ...speech.Provider) *speech.Chain {
	return speech.NewChain(providers, speech.WithLogger(log.Discard()))
}

func loudRecorder() *audioio.Recorder {
	clock := audioio.NewFakeClock()
	src := audioio.NewMockSource(audioio.DefaultConfig(), audioio.Tone(900, 10)...).WithClock(clock)
	return audioio.NewRecorder(audioio.StaticOpener(src), audioio.WithClock(clock), audioio.WithRecorderLogger(log.Discard()))
}

func TestListenEndToEnd(t *testing.T) {
	azure := speech.NewMock("azure", "")
	azure.Err = errors.New("dns failure")
	st := speech.NewMock("speechtext", "Sensa, scan the area")

	a := New(newChain(azure, st), command.Default(), "en-US", log.Discard())
	reply := a.Listen(context.Background(), loudRecorder(), "")

	assert.True(t, reply.Captured)
	assert.False(t, reply.Degraded)
	assert.Equal(t, "speechtext", reply.Provider)
	assert.Equal(t, "Sensa, scan the area", reply.Transcript)
	assert.Equal(t, command.KeyScan, reply.Command.Key)
	assert.True(t, reply.Command.Recognized)
	assert.Equal(t, []string{"en-US"}, st.Languages())
}

func TestListenNothingCaptured(t *testing.T) {
	p := speech.NewMock("azure", "help")
	rec := audioio.NewRecorder(func(context.Context) (audioio.Source, error) {
		return nil, audioio.ErrMockDevice
	}, audioio.WithRecorderLogger(log.Discard()))

	reply := New(newChain(p), nil, "", log.Discard()).Listen(context.Background(), rec, "")

	assert.False(t, reply.Captured)
	assert.True(t, reply.Degraded)
	assert.Equal(t, speech.DegradedMessage, reply.Transcript)
	assert.Equal(t, 0, p.Calls())
}

func TestHandleDegradedIsNotACommand(t *testing.T) {
	p := speech.NewMock("azure", "")
	p.Err = errors.New("down")

	seg := &audioio.Segment{PCM: make([]byte, 320), SampleRate: 16000, Channels: 1}
	reply := New(newChain(p), nil, "", log.Discard()).Handle(context.Background(), seg, "fr-FR")

	assert.True(t, reply.Degraded)
	assert.False(t, reply.Command.Recognized)
	assert.Equal(t, speech.DegradedMessage, reply.Command.Raw)
	assert.Equal(t, []string{"fr-FR"}, p.Languages())
}

func TestNormalize(t *testing.T) {
	a := New(newChain(), nil, "", log.Discard())
	assert.Equal(t, command.KeyTrapped, a.Normalize("I'm blocked in").Key)
}
