package socket

import (
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/hr-console/internal/observability"
)

// Hub tracks connected clients and fans messages out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger, metrics *observability.Metrics) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
		metrics: metrics,
	}
}

// Register adds c to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	count := len(h.clients)
	h.mu.Unlock()

	h.metrics.ClientConnected()
	h.logger.Info("socket client connected",
		zap.String("client_id", c.ID),
		zap.String("user_id", c.userID()),
		zap.Int("clients", count))
}

// Unregister removes c and closes its send queue. Calling it twice is safe.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	current, ok := h.clients[c.ID]
	if ok && current == c {
		delete(h.clients, c.ID)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if !ok || current != c {
		return
	}
	c.closeSend()
	h.metrics.ClientDisconnected()
	h.logger.Info("socket client disconnected",
		zap.String("client_id", c.ID),
		zap.String("user_id", c.userID()),
		zap.Int("clients", count))
}

// Broadcast queues message for every connected client.
func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		h.deliver(c, message)
	}
}

// SendToUser queues message for every connection of userID.
func (h *Hub) SendToUser(userID string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if c.userID() == userID {
			h.deliver(c, message)
		}
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) deliver(c *Client, message []byte) {
	if !c.enqueue(message) {
		h.logger.Warn("socket send buffer full, dropping message",
			zap.String("client_id", c.ID),
			zap.String("user_id", c.userID()))
	}
}
