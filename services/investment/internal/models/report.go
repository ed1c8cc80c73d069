package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FinancialReport struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;index;not null" json:"project_id"`
	OwnerID   uuid.UUID `gorm:"type:uuid;index;not null" json:"owner_id"`
	Title     string    `gorm:"not null"                 json:"title"`
	Period    string    `gorm:"not null;default:''"      json:"period"`
	Summary   string    `gorm:"not null;default:''"      json:"summary"`
	FileURL   string    `gorm:"not null;default:''"      json:"file_url"`
	CreatedAt time.Time `gorm:"index"                    json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (FinancialReport) TableName() string { return "financial_reports" }

func (r *FinancialReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func All() []any {
	return []any{&Project{}, &Investment{}, &Dividend{}, &DividendPayout{}, &FinancialReport{}}
}
