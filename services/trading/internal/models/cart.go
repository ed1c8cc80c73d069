package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                       json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_line" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_line" json:"product_id"`
	Currency  string    `gorm:"size:3;not null;uniqueIndex:idx_cart_line"   json:"currency"`
	Quantity  int       `gorm:"not null"                                   json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CartItem) TableName() string { return "cart_items" }

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// All lists every trading model for migrations.
func All() []any {
	return []any{&Product{}, &ProductPrice{}, &Order{}, &OrderItem{}, &Shipment{}, &SellerProfile{}, &CartItem{}}
}
