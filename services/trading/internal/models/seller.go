package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SellerProfile struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"           json:"id"`
	SellerID          uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"seller_id"`
	CompanyName       string    `gorm:"not null"                       json:"company_name"`
	LogoURL           string    `gorm:"not null;default:''"            json:"logo_url"`
	Description       string    `gorm:"not null;default:''"            json:"description"`
	Country           string    `gorm:"not null;default:''"            json:"country"`
	Address           string    `gorm:"not null;default:''"            json:"address"`
	CompanyProfileURL string    `gorm:"not null;default:''"            json:"company_profile_url"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (SellerProfile) TableName() string { return "seller_profiles" }

func (p *SellerProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
