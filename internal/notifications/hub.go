// Package notifications provides real-time fan-out of chat traffic over
// websockets. Delivery is at-most-once: there are no acks, and slow consumers
// have messages dropped rather than being allowed to stall the hub.
package notifications

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"lifeboard/internal/middleware"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Hub tracks every connected chat client on the single shared topic.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// Register wraps the connection in a Client and starts tracking it. Returns
// nil when the hub is already shut down.
func (h *Hub) Register(conn *websocket.Conn) *Client {
	client := &Client{
		hub:  h,
		Conn: conn,
		Send: make(chan []byte, 256),
		ID:   uuid.NewString(),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.clients[client] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	middleware.ActiveWebSockets.Inc()
	log.Printf("Hub: registered client %s (connected: %d)", client.ID, total)
	return client
}

// Unregister removes the client and closes its send channel. Safe to call
// more than once per client.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	total := len(h.clients)
	h.mu.Unlock()

	close(client.Send)
	middleware.ActiveWebSockets.Dec()
	log.Printf("Hub: unregistered client %s (connected: %d)", client.ID, total)
}

// BroadcastAll fans the payload out to every connected client. The payload is
// marshalled once; per-client delivery never blocks.
func (h *Hub) BroadcastAll(payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Hub: failed to marshal broadcast: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		client.TrySend(data)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown closes every connection and stops accepting registrations. The
// context bounds how long the shutdown is allowed to take; client goroutines
// wind down on their own once their connections close.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		close(c.Send)
		if c.Conn != nil {
			_ = c.Conn.Close()
		}
		middleware.ActiveWebSockets.Dec()
	}
	return nil
}
