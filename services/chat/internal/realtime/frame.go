package realtime

import (
	"time"

	"github.com/google/uuid"
)

const (
	FrameMessage = "message"
	FrameTyping  = "typing"
	FrameRead    = "read"
	FrameJoin    = "join"
	FrameLeave   = "leave"
	FrameJoined  = "joined"
	FrameError   = "error"
)

// Frame is what travels over the socket in both directions and between chat instances.
type Frame struct {
	Type    string    `json:"type"`
	ChatID  uuid.UUID `json:"chat_id"`
	UserID  uuid.UUID `json:"user_id,omitempty"`
	Message any       `json:"message,omitempty"`
	Error   string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}
