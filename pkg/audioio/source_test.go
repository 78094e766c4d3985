package audioio

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-sensesafe/internal/log"
)

func TestPushSource(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BufferDuration = 10 * time.Millisecond // 160 samples, 320 bytes
	p := NewPushSource(cfg, 4)
	ctx := context.Background()
	require.NoError(t, p.Start(ctx))

	require.NoError(t, p.Push(make([]byte, 200)))
	require.NoError(t, p.Push(make([]byte, 200)))
	p.CloseInput()

	c, err := p.Read(ctx)
	require.NoError(t, err)
	assert.Len(t, c.Samples, 160)

	c, err = p.Read(ctx)
	require.NoError(t, err)
	assert.Len(t, c.Samples, 40)

	_, err = p.Read(ctx)
	assert.ErrorIs(t, err, io.EOF)

	assert.ErrorIs(t, p.Push([]byte{1, 2}), ErrPushClosed)
	assert.Equal(t, int64(2), p.Stats().ChunksRead)
}

func TestPushSourceOverrun(t *testing.T) {
	p := NewPushSource(DefaultConfig(), 1)
	require.NoError(t, p.Push([]byte{1, 2}))
	require.NoError(t, p.Push([]byte{3, 4}))
	assert.Equal(t, int64(1), p.Stats().Overruns)
}

func TestPushSourceReadHonoursContext(t *testing.T) {
	p := NewPushSource(DefaultConfig(), 1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Read(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExecSource(t *testing.T) {
	catPath, err := exec.LookPath("cat")
	if err != nil {
		t.Skip("cat not available")
	}

	path := filepath.Join(t.TempDir(), "speech.raw")
	require.NoError(t, os.WriteFile(path, SamplesToBytes(make([]int16, 2000)), 0o600))

	cfg := DefaultConfig()
	src := NewExecSource(cfg, log.Discard(), catPath, path)
	ctx := context.Background()
	require.NoError(t, src.Start(ctx))
	defer src.Stop()

	c, err := src.Read(ctx)
	require.NoError(t, err)
	assert.Len(t, c.Samples, 1600)

	c, err = src.Read(ctx)
	require.NoError(t, err)
	assert.Len(t, c.Samples, 400)

	_, err = src.Read(ctx)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "alsa", src.Name())
}

func TestExecSourceMissingCommand(t *testing.T) {
	src := NewExecSource(DefaultConfig(), log.Discard(), "definitely-not-a-recorder")
	assert.Error(t, src.Start(context.Background()))
}

func TestNewSource(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = BackendPush
	src, err := NewSource(cfg, log.Discard())
	require.NoError(t, err)
	assert.Equal(t, "push", src.Name())

	cfg.Backend = BackendMock
	src, err = NewSource(cfg, log.Discard())
	require.NoError(t, err)
	assert.Equal(t, "mock", src.Name())

	cfg.Backend = "coreaudio"
	_, err = NewSource(cfg, log.Discard())
	assert.Error(t, err)

	cfg.SampleRate = 0
	_, err = NewSource(cfg, log.Discard())
	assert.Error(t, err)

	assert.Contains(t, AvailableBackends(), BackendPush)
}
