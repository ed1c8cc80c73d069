// Package models holds read-only views of the tables owned by the trading,
// investment, billing and auth services. The dashboard never writes to them.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Role      string
	CreatedAt time.Time
}

func (User) TableName() string { return "users" }

type Project struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID      uuid.UUID `gorm:"type:uuid"`
	Title        string
	Currency     string
	TargetAmount decimal.Decimal `gorm:"type:numeric(20,2)"`
	RaisedAmount decimal.Decimal `gorm:"type:numeric(20,2)"`
	Status       string
	CreatedAt    time.Time
}

func (Project) TableName() string { return "projects" }

type Investment struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProjectID  uuid.UUID       `gorm:"type:uuid"`
	InvestorID uuid.UUID       `gorm:"type:uuid"`
	Amount     decimal.Decimal `gorm:"type:numeric(20,2)"`
	Currency   string
	Status     string
	CreatedAt  time.Time
}

func (Investment) TableName() string { return "investments" }

type DividendPayout struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DividendID uuid.UUID       `gorm:"type:uuid"`
	ProjectID  uuid.UUID       `gorm:"type:uuid"`
	InvestorID uuid.UUID       `gorm:"type:uuid"`
	Amount     decimal.Decimal `gorm:"type:numeric(20,2)"`
	Currency   string
	CreatedAt  time.Time
}

func (DividendPayout) TableName() string { return "dividend_payouts" }

type Product struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	SellerID  uuid.UUID `gorm:"type:uuid"`
	Name      string
	Status    string
	CreatedAt time.Time
}

func (Product) TableName() string { return "products" }

type Order struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BuyerID   uuid.UUID `gorm:"type:uuid"`
	Status    string
	PriceMode string
	Items     []OrderItem
	CreatedAt time.Time
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID           uuid.UUID `gorm:"type:uuid"`
	ProductID         uuid.UUID `gorm:"type:uuid"`
	SellerID          uuid.UUID `gorm:"type:uuid"`
	ProductName       string
	Quantity          int
	EstimateCurrency  string
	UnitPriceEstimate decimal.Decimal `gorm:"type:numeric(20,4)"`
	Currency          string
	FixedUnitPrice    decimal.NullDecimal `gorm:"type:numeric(20,4)"`
}

func (OrderItem) TableName() string { return "order_items" }

// Line is the currency and amount one item contributes to its order total.
// Fixed prices count only once the order is in FIXED mode.
func (i OrderItem) Line(priceMode string) (string, decimal.Decimal) {
	cur, unit := i.EstimateCurrency, i.UnitPriceEstimate
	if priceMode == "FIXED" && i.FixedUnitPrice.Valid {
		cur, unit = i.Currency, i.FixedUnitPrice.Decimal
	}
	return cur, unit.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SellerLine is one order item joined with the state of its order.
type SellerLine struct {
	OrderID           uuid.UUID
	ProductID         uuid.UUID
	ProductName       string
	Quantity          int
	EstimateCurrency  string
	UnitPriceEstimate decimal.Decimal
	Currency          string
	FixedUnitPrice    decimal.NullDecimal
	OrderStatus       string
	PriceMode         string
	OrderCreatedAt    time.Time
}

func (l SellerLine) Item() OrderItem {
	return OrderItem{
		OrderID:           l.OrderID,
		ProductID:         l.ProductID,
		ProductName:       l.ProductName,
		Quantity:          l.Quantity,
		EstimateCurrency:  l.EstimateCurrency,
		UnitPriceEstimate: l.UnitPriceEstimate,
		Currency:          l.Currency,
		FixedUnitPrice:    l.FixedUnitPrice,
	}
}

type Subscription struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid"`
	PlanCode  string
	Status    string
	CreatedAt time.Time
}

func (Subscription) TableName() string { return "subscriptions" }

type Payment struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	SubscriptionID uuid.UUID `gorm:"type:uuid"`
	UserID         uuid.UUID `gorm:"type:uuid"`
	Provider       string
	Amount         decimal.Decimal `gorm:"type:numeric(20,2)"`
	Currency       string
	Status         string
	PaidAt         *time.Time
	CreatedAt      time.Time
}

func (Payment) TableName() string { return "payments" }

// All is used by tests to create the tables this service reads.
func All() []any {
	return []any{
		&User{}, &Project{}, &Investment{}, &DividendPayout{},
		&Product{}, &Order{}, &OrderItem{}, &Subscription{}, &Payment{},
	}
}
