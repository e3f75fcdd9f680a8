package realtime

import (
	"sync"

	"go.uber.org/zap"
)

// Event is one server-sent event delivered to subscribed views. Data is the
// already-encoded JSON body, carrying the changed row under a "new" key.
type Event struct {
	Name string
	Data []byte
}

// Client is one connected SSE subscriber. A non-nil ProcessID narrows the
// feed to change events for that process, mirroring the server-side filter of
// the original change channel.
type Client struct {
	ID        string
	UserID    string
	ProcessID *int
	Events    chan Event
}

// Hub fans change events out to all connected SSE clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{clients: make(map[string]*Client), logger: logger}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	h.logger.Info("sse client registered",
		zap.String("client", client.ID),
		zap.String("user", client.UserID),
		zap.Int("total", len(h.clients)))
}

// Unregister removes a client and closes its channel.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		h.logger.Info("sse client unregistered",
			zap.String("client", clientID),
			zap.Int("total", len(h.clients)))
	}
}

// Broadcast delivers the event to every client whose filter accepts the
// changed row's process id. Slow clients are skipped rather than blocked on.
func (h *Hub) Broadcast(event Event, processID int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.ProcessID != nil && *client.ProcessID != processID {
			continue
		}
		select {
		case client.Events <- event:
		default:
			h.logger.Warn("sse client buffer full, dropping event",
				zap.String("client", client.ID),
				zap.String("event", event.Name))
		}
	}
}
