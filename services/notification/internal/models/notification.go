package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification is one message for one user. EventID and UserID together make
// redelivered events idempotent.
type Notification struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"                                json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_event_user" json:"user_id"`
	EventID   string         `gorm:"not null;uniqueIndex:idx_event_user"                 json:"event_id"`
	Type      string         `gorm:"index;not null"                                      json:"type"`
	Title     string         `gorm:"not null"                                            json:"title"`
	Body      string         `gorm:"not null;default:''"                                 json:"body"`
	Link      string         `gorm:"not null;default:''"                                 json:"link,omitempty"`
	Payload   datatypes.JSON `json:"payload,omitempty"`
	ReadAt    *time.Time     `gorm:"index"                                               json:"read_at,omitempty"`
	CreatedAt time.Time      `gorm:"index"                                               json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
