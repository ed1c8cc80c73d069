package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type KYCStatus string

const (
	KYCNone     KYCStatus = "NONE"
	KYCPending  KYCStatus = "PENDING"
	KYCVerified KYCStatus = "VERIFIED"
	KYCRejected KYCStatus = "REJECTED"
)

var kycNext = map[KYCStatus]map[KYCStatus]bool{
	KYCNone:     {KYCPending: true},
	KYCPending:  {KYCPending: true, KYCVerified: true, KYCRejected: true},
	KYCRejected: {KYCPending: true},
	KYCVerified: {},
}

func (s KYCStatus) CanTransition(to KYCStatus) bool {
	return kycNext[s][to]
}

type User struct {
	ID             uuid.UUID `gorm:"primaryKey"                json:"id"`
	Email          string    `gorm:"uniqueIndex;not null"      json:"email"`
	PasswordHash   string    `gorm:"not null"                  json:"-"`
	FullName       string    `gorm:"not null;default:''"       json:"full_name"`
	Phone          string    `gorm:"not null;default:''"       json:"phone"`
	Role           string    `gorm:"index;not null"            json:"role"`
	KYCStatus      KYCStatus `gorm:"not null;default:'NONE'"   json:"kyc_status"`
	KYCDocumentURL string    `gorm:"not null;default:''"       json:"kyc_document_url,omitempty"`
	KYCNote        string    `gorm:"not null;default:''"       json:"kyc_note,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.KYCStatus == "" {
		u.KYCStatus = KYCNone
	}
	return nil
}

func (User) TableName() string { return "users" }

type RefreshToken struct {
	ID        uuid.UUID `gorm:"primaryKey"           json:"id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	UserID    uuid.UUID `gorm:"index;not null"       json:"user_id"`
	JTI       string    `gorm:"uniqueIndex;not null" json:"jti"`
	ExpiresAt int64     `gorm:"not null"             json:"expires_at"`
	Revoked   bool      `gorm:"default:false"        json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (RefreshToken) TableName() string { return "refresh_tokens" }
