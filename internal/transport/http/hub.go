package http

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"quizlet-service/internal/domain"
)

const clientBuffer = 16

// Hub fans encoded events out to every connected websocket client.
// Delivery is at-most-once: a client whose buffer is full loses its oldest pending message.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	id   string
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Publish encodes the event and broadcasts it to every local client.
func (h *Hub) Publish(_ context.Context, event domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	h.Broadcast(data)
	return nil
}

func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		deliverLocked(c, msg)
	}
}

// Len reports the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) subscribe() (*client, func()) {
	c := &client{id: uuid.NewString(), send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.clients[c]; ok {
			delete(h.clients, c)
			close(c.send)
		}
		h.mu.Unlock()
	}
	return c, cancel
}

// sendTo delivers a message to a single client, e.g. an error reply.
func (h *Hub) sendTo(c *client, msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		deliverLocked(c, msg)
	}
}

func deliverLocked(c *client, msg []byte) {
	select {
	case c.send <- msg:
		return
	default:
	}
	// Full: drop the oldest pending message so slow clients never block the broadcast.
	select {
	case <-c.send:
	default:
	}
	select {
	case c.send <- msg:
	default:
	}
}
