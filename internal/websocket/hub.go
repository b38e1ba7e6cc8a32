package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xelth-com/ecktms/internal/logger"
	"github.com/xelth-com/ecktms/internal/notify"
	"go.uber.org/zap"
)

// Event is the message pushed to every connected client
type Event struct {
	Type string `json:"type"`
}

// Hub maintains the set of active clients and broadcasts change events
type Hub struct {
	// Registered clients map: ClientID -> Client
	clients map[string]*Client

	// Register requests
	register chan *Client

	// Unregister requests
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	log *zap.SugaredLogger
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string]*Client),
		done:       make(chan struct{}),
		log:        logger.For("websocket"),
	}
}

// Run starts the hub's main loop until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				close(client.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			// If the client connects again, close the old connection
			if old, ok := h.clients[client.ID]; ok {
				close(old.send)
			}
			h.clients[client.ID] = client
			h.mu.Unlock()
			h.log.Debugf("📱 Client connected: %s", client.ID)

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.ID]; ok && current == client {
				delete(h.clients, client.ID)
				close(client.send)
				h.log.Debugf("📴 Client disconnected: %s", client.ID)
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends a message to every connected client.
// Clients with a full buffer miss the message; the next event refreshes them anyway.
func (h *Hub) Broadcast(message interface{}) (int, error) {
	jsonMsg, err := json.Marshal(message)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal broadcast: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for id, client := range h.clients {
		select {
		case client.send <- jsonMsg:
			delivered++
		default:
			h.log.Warnf("⚠️ Client %s is not keeping up, dropped %s", id, jsonMsg)
		}
	}
	return delivered, nil
}

// Attach forwards every change event of the notifier to the connected clients
func (h *Hub) Attach(n *notify.Notifier) (detach func()) {
	return n.Subscribe(notify.EventDataSynced, func(event string) {
		if _, err := h.Broadcast(Event{Type: event}); err != nil {
			h.log.Errorf("🔴 Failed to push %s: %v", event, err)
		}
	})
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
