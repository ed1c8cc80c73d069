package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/tradefund/pkg/logging"
)

// Hub tracks which local sockets sit in which room. A room is subscribed on the
// broker while at least one local socket is joined.
type Hub struct {
	broker Broker
	ctx    context.Context

	mu    sync.Mutex
	rooms map[uuid.UUID]*room
}

type room struct {
	clients map[*Client]struct{}
	cancel  func()
}

// NewHub builds a hub; ctx bounds the lifetime of broker subscriptions.
func NewHub(ctx context.Context, broker Broker) *Hub {
	return &Hub{broker: broker, ctx: ctx, rooms: map[uuid.UUID]*room{}}
}

func (h *Hub) Join(c *Client, chatID uuid.UUID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[chatID]
	if !ok {
		cancel, err := h.broker.Subscribe(h.ctx, chatID, func(b []byte) { h.deliver(chatID, b) })
		if err != nil {
			return err
		}
		r = &room{clients: map[*Client]struct{}{}, cancel: cancel}
		h.rooms[chatID] = r
	}
	r.clients[c] = struct{}{}
	return nil
}

func (h *Hub) Leave(c *Client, chatID uuid.UUID) {
	h.mu.Lock()
	r, ok := h.rooms[chatID]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(r.clients, c)
	var cancel func()
	if len(r.clients) == 0 {
		delete(h.rooms, chatID)
		cancel = r.cancel
	}
	h.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// LeaveAll drops the client from every room it joined.
func (h *Hub) LeaveAll(c *Client) {
	h.mu.Lock()
	ids := make([]uuid.UUID, 0)
	for id, r := range h.rooms {
		if _, ok := r.clients[c]; ok {
			ids = append(ids, id)
		}
	}
	h.mu.Unlock()

	for _, id := range ids {
		h.Leave(c, id)
	}
}

// Members is the number of local sockets in the room.
func (h *Hub) Members(chatID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[chatID]; ok {
		return len(r.clients)
	}
	return 0
}

// Broadcast publishes a frame to the room on every instance.
func (h *Hub) Broadcast(ctx context.Context, f Frame) error {
	if f.At.IsZero() {
		f.At = time.Now().UTC()
	}
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return h.broker.Publish(ctx, f.ChatID, b)
}

func (h *Hub) deliver(chatID uuid.UUID, b []byte) {
	h.mu.Lock()
	r, ok := h.rooms[chatID]
	if !ok {
		h.mu.Unlock()
		return
	}
	clients := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if !c.enqueue(b) {
			logging.FromContext(h.ctx).Warn("chat_client_slow", "chat_id", chatID, "user_id", c.UserID)
		}
	}
}

// Close releases every broker subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	rooms := h.rooms
	h.rooms = map[uuid.UUID]*room{}
	h.mu.Unlock()

	for _, r := range rooms {
		r.cancel()
	}
}
