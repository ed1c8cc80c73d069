package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvestmentStatus string

const (
	InvestmentPending   InvestmentStatus = "PENDING"
	InvestmentConfirmed InvestmentStatus = "CONFIRMED"
	InvestmentRejected  InvestmentStatus = "REJECTED"
)

var investmentNext = map[InvestmentStatus]map[InvestmentStatus]bool{
	InvestmentPending:   {InvestmentConfirmed: true, InvestmentRejected: true},
	InvestmentConfirmed: {},
	InvestmentRejected:  {},
}

func (s InvestmentStatus) CanTransition(to InvestmentStatus) bool {
	return investmentNext[s][to]
}

type Investment struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey"     json:"id"`
	ProjectID        uuid.UUID        `gorm:"type:uuid;index;not null" json:"project_id"`
	InvestorID       uuid.UUID        `gorm:"type:uuid;index;not null" json:"investor_id"`
	Amount           decimal.Decimal  `gorm:"type:numeric(20,2);not null" json:"amount"`
	Currency         string           `gorm:"size:3;not null"          json:"currency"`
	TransferProofURL string           `gorm:"not null"                 json:"transfer_proof_url"`
	Status           InvestmentStatus `gorm:"index;not null"           json:"status"`
	RejectReason     string           `gorm:"not null;default:''"      json:"reject_reason,omitempty"`
	ReviewedBy       *uuid.UUID       `gorm:"type:uuid"                json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time       `json:"reviewed_at,omitempty"`
	CreatedAt        time.Time        `gorm:"index"                    json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (Investment) TableName() string { return "investments" }

func (i *Investment) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
