package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderDraft     OrderStatus = "DRAFT"
	OrderPending   OrderStatus = "PENDING"
	OrderPriceSet  OrderStatus = "PRICE_SET"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
)

var orderNext = map[OrderStatus]map[OrderStatus]bool{
	OrderPending:   {OrderPriceSet: true, OrderConfirmed: true, OrderCancelled: true},
	OrderDraft:     {OrderPriceSet: true, OrderConfirmed: true, OrderCancelled: true},
	OrderPriceSet:  {OrderConfirmed: true, OrderCancelled: true},
	OrderConfirmed: {OrderShipped: true, OrderCancelled: true},
	OrderShipped:   {OrderCompleted: true, OrderCancelled: true},
	OrderCompleted: {},
	OrderCancelled: {},
}

func (s OrderStatus) CanTransition(to OrderStatus) bool {
	return orderNext[s][to]
}

func (s OrderStatus) Valid() bool {
	_, ok := orderNext[s]
	return ok
}

// Pricing is still open while the order has not been confirmed.
func (s OrderStatus) Priceable() bool {
	return s == OrderPending || s == OrderDraft || s == OrderPriceSet
}

type PriceMode string

const (
	PriceEstimate PriceMode = "ESTIMATE"
	PriceFixed    PriceMode = "FIXED"
)

type Order struct {
	ID                    uuid.UUID   `gorm:"type:uuid;primaryKey"     json:"id"`
	BuyerID               uuid.UUID   `gorm:"type:uuid;index;not null" json:"buyer_id"`
	Status                OrderStatus `gorm:"index;not null"           json:"status"`
	PriceMode             PriceMode   `gorm:"not null"                 json:"price_mode"`
	DestinationCountry    string      `gorm:"not null;default:''"      json:"destination_country"`
	DestinationState      string      `gorm:"not null;default:''"      json:"destination_state"`
	DestinationCity       string      `gorm:"not null;default:''"      json:"destination_city"`
	DestinationAddress    string      `gorm:"not null;default:''"      json:"destination_address"`
	DestinationPostalCode string      `gorm:"not null;default:''"      json:"destination_postal_code"`
	Incoterm              string      `gorm:"not null;default:''"      json:"incoterm"`
	Notes                 string      `gorm:"not null;default:''"      json:"notes"`
	Items                 []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	Totals                []Total     `gorm:"-"                        json:"totals"`
	CreatedAt             time.Time   `gorm:"index"                    json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (o *Order) AfterFind(tx *gorm.DB) error {
	o.Totals = o.ComputeTotals()
	return nil
}

// SellerIDs lists each seller with at least one line in the order.
func (o *Order) SellerIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(o.Items))
	out := make([]uuid.UUID, 0, len(o.Items))
	for _, it := range o.Items {
		if !seen[it.SellerID] {
			seen[it.SellerID] = true
			out = append(out, it.SellerID)
		}
	}
	return out
}

type OrderItem struct {
	ID                uuid.UUID           `gorm:"type:uuid;primaryKey"          json:"id"`
	OrderID           uuid.UUID           `gorm:"type:uuid;index;not null"      json:"order_id"`
	ProductID         uuid.UUID           `gorm:"type:uuid;index;not null"      json:"product_id"`
	SellerID          uuid.UUID           `gorm:"type:uuid;index;not null"      json:"seller_id"`
	ProductName       string              `gorm:"not null"                      json:"product_name"`
	Quantity          int                 `gorm:"not null"                      json:"quantity"`
	EstimateCurrency  string              `gorm:"size:3;not null"               json:"estimate_currency"`
	UnitPriceEstimate decimal.Decimal     `gorm:"type:numeric(20,4);not null"   json:"unit_price_estimate"`
	Currency          string              `gorm:"size:3;not null"               json:"currency"`
	FixedUnitPrice    decimal.NullDecimal `gorm:"type:numeric(20,4)"            json:"fixed_unit_price"`
}

func (OrderItem) TableName() string { return "order_items" }

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Applicable returns the currency and unit price that count toward the order total.
// The estimate stays on the row either way.
func (i OrderItem) Applicable(mode PriceMode) (string, decimal.Decimal) {
	if mode == PriceFixed && i.FixedUnitPrice.Valid {
		return i.Currency, i.FixedUnitPrice.Decimal
	}
	return i.EstimateCurrency, i.UnitPriceEstimate
}

type Total struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// ComputeTotals sums quantity times the applicable unit price per currency.
// Currencies are never converted into each other.
func (o *Order) ComputeTotals() []Total {
	sums := map[string]decimal.Decimal{}
	for _, it := range o.Items {
		cur, unit := it.Applicable(o.PriceMode)
		sums[cur] = sums[cur].Add(unit.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	out := make([]Total, 0, len(sums))
	for cur, amt := range sums {
		out = append(out, Total{Currency: cur, Amount: amt})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Currency < out[b].Currency })
	return out
}

// TotalIn is the total for one currency, zero when the order has nothing in it.
func (o *Order) TotalIn(currency string) decimal.Decimal {
	for _, t := range o.ComputeTotals() {
		if t.Currency == currency {
			return t.Amount
		}
	}
	return decimal.Zero
}
