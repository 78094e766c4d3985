package hub

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-sensesafe/internal/log"
)

// fakeConn blocks reads until closed and records text writes.
type fakeConn struct {
	mu     sync.Mutex
	writes [][]byte
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn { return &fakeConn{closed: make(chan struct{})} }

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	<-f.closed
	return 0, nil, errors.New("closed")
}

func (f *fakeConn) WriteMessage(mt int, data []byte) error {
	select {
	case <-f.closed:
		return errors.New("closed")
	default:
	}
	if mt == websocket.TextMessage {
		f.mu.Lock()
		f.writes = append(f.writes, append([]byte(nil), data...))
		f.mu.Unlock()
	}
	return nil
}

func (f *fakeConn) SetReadLimit(int64) {}
func (f *fakeConn) SetReadDeadline(time.Time) error { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }
func (f *fakeConn) SetPongHandler(func(string) error) {}
func (f *fakeConn) Close() error { f.once.Do(func() { close(f.closed) }); return nil }

func (f *fakeConn) messages() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.writes...)
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := New(log.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	require.Eventually(t, h.IsRunning, time.Second, 5*time.Millisecond)
	t.Cleanup(cancel)
	return h, cancel
}

func TestHubBroadcastsToSubscribers(t *testing.T) {
	h, _ := startHub(t)

	a, b := newFakeConn(), newFakeConn()
	ca := h.Subscribe(context.Background(), a)
	cb := h.Subscribe(context.Background(), b)
	require.NotNil(t, ca)
	require.NotNil(t, cb)
	go ca.Serve()
	go cb.Serve()
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	h.Publish(NewEvent(EventScan, "scan-1", map[string]any{"summary": "Exit found, follow highlighted area"}))

	for _, conn := range []*fakeConn{a, b} {
		require.Eventually(t, func() bool { return len(conn.messages()) == 1 }, time.Second, 5*time.Millisecond)
		var got Event
		require.NoError(t, json.Unmarshal(conn.messages()[0], &got))
		assert.Equal(t, EventScan, got.Type)
		assert.Equal(t, "scan-1", got.ID)
		assert.False(t, got.Time.IsZero())
	}
}

func TestHubUnregistersClosedConnection(t *testing.T) {
	h, _ := startHub(t)

	conn := newFakeConn()
	c := h.Subscribe(context.Background(), conn)
	require.NotNil(t, c)
	done := make(chan struct{})
	go func() {
		c.Serve()
		close(done)
	}()
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	<-done
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubStopsWithContext(t *testing.T) {
	h, cancel := startHub(t)

	conn := newFakeConn()
	c := h.Subscribe(context.Background(), conn)
	require.NotNil(t, c)
	go c.Serve()
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool { return !h.IsRunning() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, h.ClientCount())

	select {
	case <-conn.closed:
	case <-time.After(time.Second):
		t.Fatal("connection not closed after hub shutdown")
	}
}

func TestSubscribeWithoutRunningHub(t *testing.T) {
	h := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Nil(t, h.Subscribe(ctx, newFakeConn()))
}

func TestPublishNeverBlocks(t *testing.T) {
	h := New(log.Discard())
	for i := 0; i < cap(h.broadcast)+10; i++ {
		h.Publish(NewEvent(EventCommand, "", "scan"))
	}
	assert.Equal(t, int64(10), h.Dropped())
}
