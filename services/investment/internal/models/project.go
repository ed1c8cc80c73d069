package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectDraft         ProjectStatus = "DRAFT"
	ProjectPendingReview ProjectStatus = "PENDING_REVIEW"
	ProjectOpen          ProjectStatus = "OPEN"
	ProjectFunded        ProjectStatus = "FUNDED"
	ProjectClosed        ProjectStatus = "CLOSED"
	ProjectRejected      ProjectStatus = "REJECTED"
)

var projectNext = map[ProjectStatus]map[ProjectStatus]bool{
	ProjectDraft:         {ProjectPendingReview: true},
	ProjectPendingReview: {ProjectOpen: true, ProjectRejected: true},
	ProjectOpen:          {ProjectFunded: true, ProjectClosed: true},
	ProjectFunded:        {ProjectClosed: true},
	ProjectClosed:        {},
	ProjectRejected:      {},
}

func (s ProjectStatus) CanTransition(to ProjectStatus) bool {
	return projectNext[s][to]
}

func (s ProjectStatus) Valid() bool {
	_, ok := projectNext[s]
	return ok
}

// Public reports whether anyone may see a project in this status.
func (s ProjectStatus) Public() bool {
	return s == ProjectOpen || s == ProjectFunded || s == ProjectClosed
}

// Editable is true while the owner can still change the pitch.
func (s ProjectStatus) Editable() bool {
	return s == ProjectDraft || s == ProjectPendingReview
}

type Project struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"     json:"id"`
	OwnerID       uuid.UUID       `gorm:"type:uuid;index;not null" json:"owner_id"`
	Title         string          `gorm:"not null"                 json:"title"`
	Description   string          `gorm:"not null;default:''"      json:"description"`
	Sector        string          `gorm:"index;not null;default:''" json:"sector"`
	Currency      string          `gorm:"size:3;not null"          json:"currency"`
	TargetAmount  decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"target_amount"`
	MinInvestment decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"min_investment"`
	RaisedAmount  decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"raised_amount"`
	ProspectusURL string          `gorm:"not null;default:''"      json:"prospectus_url"`
	StartDate     *time.Time      `json:"start_date,omitempty"`
	EndDate       *time.Time      `json:"end_date,omitempty"`
	Status        ProjectStatus   `gorm:"index;not null"           json:"status"`
	RejectReason  string          `gorm:"not null;default:''"      json:"reject_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Project) TableName() string { return "projects" }

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Progress is the raised share of the target, 0..1 and beyond when overfunded.
func (p *Project) Progress() decimal.Decimal {
	if !p.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	return p.RaisedAmount.Div(p.TargetAmount).Round(4)
}
