package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ProductSubmitted = "product_submitted"
	ProductApproved  = "product_approved"
	ProductRejected  = "product_rejected"

	OrderCreated       = "order_created"
	OrderPricesFixed   = "order_prices_fixed"
	OrderStatusChanged = "order_status_changed"
	ShipmentCreated    = "shipment_created"
	ShipmentUpdated    = "shipment_updated"

	ProjectSubmitted    = "project_submitted"
	ProjectApproved     = "project_approved"
	ProjectRejected     = "project_rejected"
	ProjectFunded       = "project_funded"
	InvestmentCreated   = "investment_created"
	InvestmentConfirmed = "investment_confirmed"
	InvestmentRejected  = "investment_rejected"
	DividendDistributed = "dividend_distributed"
	ReportPublished     = "report_published"

	SubscriptionActivated = "subscription_activated"
	SubscriptionExpired   = "subscription_expired"

	UserRegistered = "user_registered"
	KYCReviewed    = "kyc_reviewed"
)

type CurrencyAmount struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

type ProductModerated struct {
	ProductID uuid.UUID `json:"product_id"`
	SellerID  uuid.UUID `json:"seller_id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
}

type OrderPlaced struct {
	OrderID   uuid.UUID   `json:"order_id"`
	BuyerID   uuid.UUID   `json:"buyer_id"`
	Status    string      `json:"status"`
	SellerIDs []uuid.UUID `json:"seller_ids"`
	ItemCount int         `json:"item_count"`
	Notes     string      `json:"notes,omitempty"`
}

type OrderPriced struct {
	OrderID uuid.UUID        `json:"order_id"`
	BuyerID uuid.UUID        `json:"buyer_id"`
	Totals  []CurrencyAmount `json:"totals"`
}

type OrderTransition struct {
	OrderID uuid.UUID `json:"order_id"`
	BuyerID uuid.UUID `json:"buyer_id"`
	ActorID uuid.UUID `json:"actor_id"`
	From    string    `json:"from"`
	To      string    `json:"to"`
}

type ShipmentChanged struct {
	ShipmentID     uuid.UUID `json:"shipment_id"`
	OrderID        uuid.UUID `json:"order_id"`
	BuyerID        uuid.UUID `json:"buyer_id"`
	Method         string    `json:"method"`
	Status         string    `json:"status"`
	TrackingNumber string    `json:"tracking_number,omitempty"`
}

type ProjectReviewed struct {
	ProjectID uuid.UUID `json:"project_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
}

type InvestmentReviewed struct {
	InvestmentID uuid.UUID       `json:"investment_id"`
	ProjectID    uuid.UUID       `json:"project_id"`
	InvestorID   uuid.UUID       `json:"investor_id"`
	OwnerID      uuid.UUID       `json:"owner_id"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Status       string          `json:"status"`
}

type DividendPayout struct {
	InvestorID uuid.UUID       `json:"investor_id"`
	Amount     decimal.Decimal `json:"amount"`
}

type DividendIssued struct {
	DividendID uuid.UUID        `json:"dividend_id"`
	ProjectID  uuid.UUID        `json:"project_id"`
	Period     string           `json:"period"`
	Currency   string           `json:"currency"`
	Payouts    []DividendPayout `json:"payouts"`
}

type ReportIssued struct {
	ReportID    uuid.UUID   `json:"report_id"`
	ProjectID   uuid.UUID   `json:"project_id"`
	Title       string      `json:"title"`
	InvestorIDs []uuid.UUID `json:"investor_ids"`
}

type SubscriptionChanged struct {
	SubscriptionID uuid.UUID  `json:"subscription_id"`
	UserID         uuid.UUID  `json:"user_id"`
	PlanCode       string     `json:"plan_code"`
	Status         string     `json:"status"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

type UserChanged struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	Status string    `json:"status,omitempty"`
}
