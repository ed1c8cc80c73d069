package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatKind string

const (
	ChatDirect  ChatKind = "DIRECT"
	ChatOrder   ChatKind = "ORDER"
	ChatProject ChatKind = "PROJECT"
)

func (k ChatKind) Valid() bool {
	switch k {
	case ChatDirect, ChatOrder, ChatProject:
		return true
	}
	return false
}

// Chat is a room. RefID points at the order or project an ORDER/PROJECT chat belongs to.
type Chat struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey"                   json:"id"`
	Kind         ChatKind      `gorm:"type:varchar(16);not null;index:idx_chat_ref" json:"kind"`
	RefID        *uuid.UUID    `gorm:"type:uuid;index:idx_chat_ref"           json:"ref_id,omitempty"`
	Title        string        `gorm:"not null;default:''"                    json:"title"`
	CreatedBy    uuid.UUID     `gorm:"type:uuid;not null"                     json:"created_by"`
	Participants []Participant `gorm:"foreignKey:ChatID"                      json:"participants,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `gorm:"index"                                  json:"updated_at"`
}

func (Chat) TableName() string { return "chats" }

func (c *Chat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Participant struct {
	ChatID     uuid.UUID  `gorm:"type:uuid;primaryKey"         json:"chat_id"`
	UserID     uuid.UUID  `gorm:"type:uuid;primaryKey;index"   json:"user_id"`
	LastReadAt *time.Time `json:"last_read_at,omitempty"`
	JoinedAt   time.Time  `gorm:"autoCreateTime"               json:"joined_at"`
}

func (Participant) TableName() string { return "chat_participants" }

type Message struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"              json:"id"`
	ChatID    uuid.UUID `gorm:"type:uuid;not null;index:idx_msg_chat_time" json:"chat_id"`
	SenderID  uuid.UUID `gorm:"type:uuid;not null"                json:"sender_id"`
	Body      string    `gorm:"type:text;not null"                json:"body"`
	CreatedAt time.Time `gorm:"index:idx_msg_chat_time"           json:"created_at"`
}

func (Message) TableName() string { return "chat_messages" }

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Summary is a chat as listed for one participant.
type Summary struct {
	Chat
	LastMessage *Message `gorm:"-" json:"last_message,omitempty"`
	Unread      int64    `gorm:"-" json:"unread"`
}

func All() []any {
	return []any{&Chat{}, &Participant{}, &Message{}}
}
