package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/tradefund/services/trading/internal/models"
)

func (r *GormRepo) CreateShipment(ctx context.Context, s *models.Shipment) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *GormRepo) GetShipment(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	var s models.Shipment
	if err := r.DB.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormRepo) LockShipment(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	var s models.Shipment
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormRepo) ShipmentByOrder(ctx context.Context, orderID uuid.UUID) (*models.Shipment, error) {
	var s models.Shipment
	if err := r.DB.WithContext(ctx).First(&s, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormRepo) SaveShipment(ctx context.Context, s *models.Shipment) error {
	return r.DB.WithContext(ctx).Save(s).Error
}
