package realtime

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Client represents a single websocket client connection.
// The network conn itself is managed in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Hub maintains active user connections and pushes notice events to them.
type Hub struct {
	mu              sync.RWMutex
	userIDToClients map[string]map[Client]struct{}
}

func NewHub() *Hub {
	return &Hub{userIDToClients: make(map[string]map[Client]struct{})}
}

// Register adds a client under a user ID.
func (h *Hub) Register(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.userIDToClients[userID]; !ok {
		h.userIDToClients[userID] = make(map[Client]struct{})
	}
	h.userIDToClients[userID][client] = struct{}{}
}

// Unregister removes a client; if user has no more clients, cleans up map.
func (h *Hub) Unregister(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.userIDToClients[userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.userIDToClients, userID)
		}
	}
}

// Connections returns the number of live clients of a user.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userIDToClients[userID])
}

// Broadcast sends a message to all clients of a user. Sends happen
// outside the lock. Failed clients are left for their handler to
// unregister.
func (h *Hub) Broadcast(userID string, message []byte) {
	h.mu.RLock()
	clients := make([]Client, 0, len(h.userIDToClients[userID]))
	for c := range h.userIDToClients[userID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if ok := c.Send(message); !ok {
			log.WithField("user", userID).Debug("websocket send failed")
		}
	}
}
