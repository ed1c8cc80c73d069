package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProductStatus string

const (
	ProductPending  ProductStatus = "PENDING"
	ProductApproved ProductStatus = "APPROVED"
	ProductRejected ProductStatus = "REJECTED"
)

// An approved product that is edited goes back to moderation. Rejection is final.
var productNext = map[ProductStatus]map[ProductStatus]bool{
	ProductPending:  {ProductApproved: true, ProductRejected: true},
	ProductApproved: {ProductPending: true},
	ProductRejected: {},
}

func (s ProductStatus) CanTransition(to ProductStatus) bool {
	return productNext[s][to]
}

type Product struct {
	ID            uuid.UUID                   `gorm:"type:uuid;primaryKey"          json:"id"`
	SellerID      uuid.UUID                   `gorm:"type:uuid;index;not null"      json:"seller_id"`
	Name          string                      `gorm:"not null"                      json:"name"`
	Description   string                      `gorm:"not null;default:''"           json:"description"`
	Unit          string                      `gorm:"not null;default:'pcs'"        json:"unit"`
	WeightKg      decimal.Decimal             `gorm:"type:numeric(14,3);default:0"  json:"weight_kg"`
	VolumeCBM     decimal.Decimal             `gorm:"type:numeric(14,4);default:0"  json:"volume_cbm"`
	Status        ProductStatus               `gorm:"index;not null"                json:"status"`
	RejectReason  string                      `gorm:"not null;default:''"           json:"reject_reason,omitempty"`
	CoverImageURL string                      `gorm:"not null;default:''"           json:"cover_image_url"`
	PreviewImages datatypes.JSONSlice[string] `json:"preview_images"`
	Prices        []ProductPrice              `gorm:"constraint:OnDelete:CASCADE"   json:"prices"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PriceIn returns the list price for a currency.
func (p *Product) PriceIn(currency string) (decimal.Decimal, bool) {
	for _, pr := range p.Prices {
		if pr.Currency == currency {
			return pr.Amount, true
		}
	}
	return decimal.Zero, false
}

type ProductPrice struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"                                 json:"-"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_currency" json:"-"`
	Currency  string          `gorm:"size:3;not null;uniqueIndex:idx_product_currency"    json:"currency"`
	Amount    decimal.Decimal `gorm:"type:numeric(20,4);not null"                         json:"amount"`
}

func (ProductPrice) TableName() string { return "product_prices" }

func (p *ProductPrice) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
