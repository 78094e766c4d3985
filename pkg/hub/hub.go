package hub

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/teslashibe/go-sensesafe/internal/metrics"
)

// Hub maintains the set of active subscribers and broadcasts events to them.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	running atomic.Bool
	dropped atomic.Int64
	logger  *slog.Logger
}

// New creates a hub.
func New(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With("component", "hub"),
	}
}

// Run serves register, unregister and broadcast requests until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	h.running.Store(true)
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			metrics.WSConnectionsActive.Inc()
			h.logger.Info("subscriber connected", "total", n)

		case c := <-h.unregister:
			h.remove(c, "disconnected")

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					delete(h.clients, c)
					close(c.send)
					metrics.WSConnectionsActive.Dec()
					h.logger.Warn("dropped slow subscriber")
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) remove(c *Client, reason string) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		metrics.WSConnectionsActive.Dec()
		h.logger.Info("subscriber "+reason, "remaining", n)
	}
}

func (h *Hub) shutdown() {
	h.running.Store(false)
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		metrics.WSConnectionsActive.Dec()
	}
	h.mu.Unlock()
}

// Publish queues an event for every subscriber. It never blocks; when the
// queue is full the event is dropped.
func (h *Hub) Publish(e Event) {
	data, err := e.Encode()
	if err != nil {
		h.logger.Warn("event encode failed", "type", e.Type, "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.dropped.Add(1)
		h.logger.Warn("broadcast queue full, dropping event", "type", e.Type)
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// IsRunning returns whether Run is active.
func (h *Hub) IsRunning() bool {
	return h.running.Load()
}

// Dropped returns the number of events lost to a full queue.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}
