package realtime

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Hub tracks which users have a live WebSocket connection and which
// connections are watching which component. It is constructor-injected
// wherever push delivery is needed; there is no package-level instance.
type Hub struct {
	mu sync.RWMutex

	// users maps a user ID to its single live connection. A user opening a
	// second connection displaces the first: last registered wins.
	users map[string]*Client

	// watchers maps a topic (component ID) to the connections streaming
	// its live events.
	watchers map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		users:    make(map[string]*Client),
		watchers: make(map[string]map[*Client]bool),
	}
}

// RegisterUser binds an authenticated connection to a user ID. Any
// previously registered connection for the same user is displaced but left
// open; its eventual disconnect will not evict the newer registration.
func (h *Hub) RegisterUser(userID string, client *Client) {
	h.mu.Lock()
	// Re-authenticating under a new identity releases the old binding, so
	// pushes for the previous user can never reach this connection.
	if client.userID != "" && client.userID != userID && h.users[client.userID] == client {
		delete(h.users, client.userID)
	}
	prev := h.users[userID]
	h.users[userID] = client
	client.userID = userID
	h.mu.Unlock()

	if prev != nil && prev != client {
		log.Info().Str("user_id", userID).Msg("displaced previous connection for user")
	}
	log.Info().Str("user_id", userID).Str("client_id", client.ID).Msg("user connected")
}

// Unregister removes a connection from the user registry and all watch
// topics. The user entry is only cleared when this exact connection still
// owns it, so a stale connection's disconnect cannot log out a newer one.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if client.userID != "" && h.users[client.userID] == client {
		delete(h.users, client.userID)
	}
	for topic := range client.topics {
		if set, ok := h.watchers[topic]; ok {
			delete(set, client)
			if len(set) == 0 {
				delete(h.watchers, topic)
			}
		}
	}
	h.mu.Unlock()

	client.closeSend()
}

// Watch subscribes a connection to a component's live events.
func (h *Hub) Watch(client *Client, topic string) {
	h.mu.Lock()
	if _, ok := h.watchers[topic]; !ok {
		h.watchers[topic] = make(map[*Client]bool)
	}
	h.watchers[topic][client] = true
	client.topics[topic] = true
	h.mu.Unlock()
}

// Push delivers a payload to the user's live connection, if any. Reports
// whether a connection was found; a full send buffer drops the client
// rather than blocking the caller.
func (h *Hub) Push(userID string, payload []byte) bool {
	h.mu.RLock()
	client := h.users[userID]
	h.mu.RUnlock()

	if client == nil {
		return false
	}

	if !client.TrySend(payload) {
		log.Warn().Str("user_id", userID).Msg("client closed or send buffer full, dropping client")
		h.Unregister(client)
		return false
	}
	return true
}

// Broadcast delivers a payload to every connection watching a topic.
func (h *Hub) Broadcast(topic string, payload []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.watchers[topic]))
	for client := range h.watchers[topic] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if !client.TrySend(payload) {
			h.Unregister(client)
		}
	}
}

// IsOnline reports whether a user currently has a registered connection.
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.users[userID] != nil
}
