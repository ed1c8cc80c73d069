package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Dividend struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey"     json:"id"`
	ProjectID     uuid.UUID        `gorm:"type:uuid;index;not null" json:"project_id"`
	Period        string           `gorm:"not null"                 json:"period"`
	Amount        decimal.Decimal  `gorm:"type:numeric(20,2);not null" json:"amount"`
	Currency      string           `gorm:"size:3;not null"          json:"currency"`
	DistributedBy uuid.UUID        `gorm:"type:uuid;not null"       json:"distributed_by"`
	Payouts       []DividendPayout `gorm:"constraint:OnDelete:CASCADE" json:"payouts,omitempty"`
	CreatedAt     time.Time        `gorm:"index"                    json:"created_at"`
}

func (Dividend) TableName() string { return "dividends" }

func (d *Dividend) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

type DividendPayout struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"     json:"id"`
	DividendID uuid.UUID       `gorm:"type:uuid;index;not null" json:"dividend_id"`
	ProjectID  uuid.UUID       `gorm:"type:uuid;index;not null" json:"project_id"`
	InvestorID uuid.UUID       `gorm:"type:uuid;index;not null" json:"investor_id"`
	Amount     decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Currency   string          `gorm:"size:3;not null"          json:"currency"`
	CreatedAt  time.Time       `gorm:"index"                    json:"created_at"`
}

func (DividendPayout) TableName() string { return "dividend_payouts" }

func (p *DividendPayout) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Holding is one investor's confirmed stake in a project.
type Holding struct {
	InvestorID uuid.UUID
	Amount     decimal.Decimal
}

// Split divides amount across holdings in proportion to their stake, rounded to cents.
// Holdings with a zero stake get nothing. The order of the result follows holdings.
func Split(amount decimal.Decimal, holdings []Holding) []DividendPayout {
	total := decimal.Zero
	for _, h := range holdings {
		total = total.Add(h.Amount)
	}
	if !total.IsPositive() {
		return nil
	}
	out := make([]DividendPayout, 0, len(holdings))
	for _, h := range holdings {
		if !h.Amount.IsPositive() {
			continue
		}
		share := amount.Mul(h.Amount).Div(total).Round(2)
		out = append(out, DividendPayout{InvestorID: h.InvestorID, Amount: share})
	}
	return out
}
