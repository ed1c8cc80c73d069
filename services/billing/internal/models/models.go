package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Plan struct {
	Code       string          `gorm:"primaryKey;size:64"          json:"code"`
	Name       string          `gorm:"not null"                    json:"name"`
	Audience   string          `gorm:"size:32;not null;default:''" json:"audience,omitempty"`
	Price      decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"price"`
	Currency   string          `gorm:"size:3;not null"             json:"currency"`
	PeriodDays int             `gorm:"not null"                    json:"period_days"`
	Active     bool            `gorm:"not null"                    json:"active"`
}

func (Plan) TableName() string { return "plans" }

// Period is how long one paid cycle lasts.
func (p Plan) Period() time.Duration { return time.Duration(p.PeriodDays) * 24 * time.Hour }

type SubscriptionStatus string

const (
	SubscriptionPending   SubscriptionStatus = "PENDING"
	SubscriptionActive    SubscriptionStatus = "ACTIVE"
	SubscriptionExpired   SubscriptionStatus = "EXPIRED"
	SubscriptionCancelled SubscriptionStatus = "CANCELLED"
)

var subscriptionNext = map[SubscriptionStatus]map[SubscriptionStatus]bool{
	SubscriptionPending: {SubscriptionActive: true, SubscriptionCancelled: true},
	SubscriptionActive:  {SubscriptionExpired: true, SubscriptionCancelled: true},
}

func (s SubscriptionStatus) CanTransition(to SubscriptionStatus) bool {
	return subscriptionNext[s][to]
}

type Subscription struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey"          json:"id"`
	UserID      uuid.UUID          `gorm:"type:uuid;index;not null"      json:"user_id"`
	PlanCode    string             `gorm:"size:64;index;not null"        json:"plan_code"`
	Plan        *Plan              `gorm:"foreignKey:PlanCode;references:Code" json:"plan,omitempty"`
	Status      SubscriptionStatus `gorm:"size:16;index;not null"        json:"status"`
	StartedAt   *time.Time         `json:"started_at,omitempty"`
	ExpiresAt   *time.Time         `gorm:"index"                         json:"expires_at,omitempty"`
	CancelledAt *time.Time         `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func (Subscription) TableName() string { return "subscriptions" }

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

func (s PaymentStatus) Final() bool { return s == PaymentPaid || s == PaymentFailed }

type Payment struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"          json:"id"`
	SubscriptionID uuid.UUID       `gorm:"type:uuid;index;not null"      json:"subscription_id"`
	UserID         uuid.UUID       `gorm:"type:uuid;index;not null"      json:"user_id"`
	Provider       string          `gorm:"size:32;index;not null"        json:"provider"`
	ProviderRef    string          `gorm:"size:64;uniqueIndex;not null"  json:"provider_ref"`
	Amount         decimal.Decimal `gorm:"type:numeric(20,2);not null"   json:"amount"`
	Currency       string          `gorm:"size:3;not null"               json:"currency"`
	Status         PaymentStatus   `gorm:"size:16;index;not null"        json:"status"`
	PaidAt         *time.Time      `gorm:"index"                         json:"paid_at,omitempty"`
	Callback       datatypes.JSON  `json:"callback,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// DefaultPlans are inserted at start when missing.
func DefaultPlans() []Plan {
	return []Plan{
		{Code: "seller-pro", Name: "Seller Pro", Audience: "SELLER", Price: decimal.NewFromInt(29), Currency: "USD", PeriodDays: 30, Active: true},
		{Code: "seller-pro-annual", Name: "Seller Pro (annual)", Audience: "SELLER", Price: decimal.NewFromInt(290), Currency: "USD", PeriodDays: 365, Active: true},
		{Code: "investor-plus", Name: "Investor Plus", Audience: "INVESTOR", Price: decimal.NewFromInt(19), Currency: "USD", PeriodDays: 30, Active: true},
		{Code: "owner-growth", Name: "Project Owner Growth", Audience: "PROJECT_OWNER", Price: decimal.NewFromInt(49), Currency: "USD", PeriodDays: 30, Active: true},
		{Code: "buyer-trade", Name: "Buyer Trade Desk", Audience: "BUYER", Price: decimal.NewFromInt(250000), Currency: "IDR", PeriodDays: 30, Active: true},
	}
}

func All() []any {
	return []any{&Plan{}, &Subscription{}, &Payment{}}
}
