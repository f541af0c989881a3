package sse

import (
	"sync"

	"github.com/quadvote/quadvote/internal/domain/render"
)

// Hub manages SSE clients subscribed to poll updates.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*render.Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*render.Client),
	}
}

func (h *Hub) Register(client *render.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ClientID] = client
}

func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[clientID]; ok {
		c.Close()
		delete(h.clients, clientID)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastToPoll sends an event to every client watching a poll.
func (h *Hub) BroadcastToPoll(pollID string, event *render.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if c.PollID == pollID {
			trySend(c, event)
		}
	}
}

// SendToUser sends an event to a user's clients on a poll. Returns
// render.ErrClientNotFound when the user has no client on the poll, and
// render.ErrChannelFull when every matching client was too slow to take it.
func (h *Hub) SendToUser(pollID, userID string, event *render.Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	found := false
	delivered := false
	for _, c := range h.clients {
		if c.PollID == pollID && c.UserID != nil && *c.UserID == userID {
			found = true
			if trySend(c, event) {
				delivered = true
			}
		}
	}
	if !found {
		return render.ErrClientNotFound
	}
	if !delivered {
		return render.ErrChannelFull
	}
	return nil
}

func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		c.Close()
		delete(h.clients, id)
	}
}

// trySend drops the event instead of blocking on a slow client; the next
// summary render supersedes it anyway.
func trySend(c *render.Client, event *render.Event) bool {
	select {
	case c.Events <- event:
		return true
	default:
		return false
	}
}
