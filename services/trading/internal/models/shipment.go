package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ShipmentMethod string

const (
	MethodAir     ShipmentMethod = "AIR"
	MethodSea     ShipmentMethod = "SEA"
	MethodExpress ShipmentMethod = "EXPRESS"
)

func (m ShipmentMethod) Valid() bool {
	return m == MethodAir || m == MethodSea || m == MethodExpress
}

type ShipmentStatus string

const (
	ShipmentPending   ShipmentStatus = "PENDING"
	ShipmentInTransit ShipmentStatus = "IN_TRANSIT"
	ShipmentDelivered ShipmentStatus = "DELIVERED"
)

var shipmentNext = map[ShipmentStatus]map[ShipmentStatus]bool{
	ShipmentPending:   {ShipmentInTransit: true},
	ShipmentInTransit: {ShipmentDelivered: true},
	ShipmentDelivered: {},
}

func (s ShipmentStatus) Valid() bool {
	_, ok := shipmentNext[s]
	return ok
}

func (s ShipmentStatus) CanTransition(to ShipmentStatus) bool {
	return shipmentNext[s][to]
}

type SeaPricingMode string

const (
	SeaByCBM       SeaPricingMode = "CBM"
	SeaByContainer SeaPricingMode = "CONTAINER"
)

var ContainerTypes = []string{"20FT", "40FT", "40HC"}

type Shipment struct {
	ID              uuid.UUID           `gorm:"type:uuid;primaryKey"            json:"id"`
	OrderID         uuid.UUID           `gorm:"type:uuid;uniqueIndex;not null"  json:"order_id"`
	Method          ShipmentMethod      `gorm:"not null"                        json:"method"`
	Status          ShipmentStatus      `gorm:"index;not null"                  json:"status"`
	Carrier         string              `gorm:"not null;default:''"             json:"carrier"`
	TrackingNumber  string              `gorm:"not null;default:''"             json:"tracking_number"`
	TrackingURL     string              `gorm:"not null;default:''"             json:"tracking_url"`
	SeaPricingMode  SeaPricingMode      `gorm:"not null;default:''"             json:"sea_pricing_mode,omitempty"`
	ContainerType   string              `gorm:"not null;default:''"             json:"container_type,omitempty"`
	CBMVolume       decimal.NullDecimal `gorm:"type:numeric(14,4)"              json:"cbm_volume"`
	FreightCost     decimal.NullDecimal `gorm:"type:numeric(20,4)"              json:"freight_cost"`
	FreightCurrency string              `gorm:"size:3;not null;default:''"     json:"freight_currency,omitempty"`
	ShippedAt       *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func (Shipment) TableName() string { return "shipments" }

func (s *Shipment) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
