package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxFrameSize   = 8 << 10
	sendBufferSize = 64
)

// Access decides whether a user may join a chat room.
type Access interface {
	CanJoin(ctx context.Context, userID uuid.UUID, role string, chatID uuid.UUID) error
}

// Client is one authenticated websocket connection.
type Client struct {
	UserID uuid.UUID
	Role   string

	hub    *Hub
	access Access
	conn   *websocket.Conn
	log    *slog.Logger

	send   chan []byte
	mu     sync.Mutex
	joined map[uuid.UUID]bool
}

func NewClient(hub *Hub, access Access, conn *websocket.Conn, userID uuid.UUID, role string, log *slog.Logger) *Client {
	return &Client{
		UserID: userID,
		Role:   role,
		hub:    hub,
		access: access,
		conn:   conn,
		log:    log.With("user_id", userID),
		send:   make(chan []byte, sendBufferSize),
		joined: map[uuid.UUID]bool{},
	}
}

// Serve runs the socket until the peer goes away or ctx ends.
func (c *Client) Serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer c.hub.LeaveAll(c)

	go c.writeLoop(ctx)
	c.readLoop(ctx)
}

// enqueue drops the frame when the client cannot keep up.
func (c *Client) enqueue(b []byte) bool {
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

func (c *Client) reply(f Frame) {
	if f.At.IsZero() {
		f.At = time.Now().UTC()
	}
	b, err := json.Marshal(f)
	if err != nil {
		return
	}
	c.enqueue(b)
}

func (c *Client) readLoop(ctx context.Context) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var in Frame
		if err := c.conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("chat_socket_read_error", "error", err)
			}
			return
		}
		c.handle(ctx, in)
	}
}

func (c *Client) handle(ctx context.Context, in Frame) {
	switch in.Type {
	case FrameJoin:
		if err := c.access.CanJoin(ctx, c.UserID, c.Role, in.ChatID); err != nil {
			c.reply(Frame{Type: FrameError, ChatID: in.ChatID, Error: err.Error()})
			return
		}
		if err := c.hub.Join(c, in.ChatID); err != nil {
			c.log.Error("chat_join_failed", "chat_id", in.ChatID, "error", err)
			c.reply(Frame{Type: FrameError, ChatID: in.ChatID, Error: "join failed"})
			return
		}
		c.mu.Lock()
		c.joined[in.ChatID] = true
		c.mu.Unlock()
		c.reply(Frame{Type: FrameJoined, ChatID: in.ChatID, UserID: c.UserID})
	case FrameLeave:
		c.mu.Lock()
		delete(c.joined, in.ChatID)
		c.mu.Unlock()
		c.hub.Leave(c, in.ChatID)
	case FrameTyping:
		if !c.inRoom(in.ChatID) {
			c.reply(Frame{Type: FrameError, ChatID: in.ChatID, Error: "not joined"})
			return
		}
		// typing frames are relayed, never stored
		if err := c.hub.Broadcast(ctx, Frame{Type: FrameTyping, ChatID: in.ChatID, UserID: c.UserID}); err != nil {
			c.log.Warn("chat_typing_broadcast_failed", "chat_id", in.ChatID, "error", err)
		}
	default:
		c.reply(Frame{Type: FrameError, ChatID: in.ChatID, Error: "unknown frame type"})
	}
}

func (c *Client) inRoom(chatID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.joined[chatID]
}

func (c *Client) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case b := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				c.log.Warn("chat_socket_write_error", "error", err)
				c.conn.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.conn.Close()
				return
			}
		}
	}
}
