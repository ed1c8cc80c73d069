package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/tradefund/services/trading/internal/models"
)

type OrderFilter struct {
	BuyerID  *uuid.UUID
	SellerID *uuid.UUID
	Status   models.OrderStatus
}

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.DB.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	order.Totals = order.ComputeTotals()
	return order, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// LockOrder reads an order with its items for update inside a transaction.
func (r *GormRepo) LockOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Where("order_id = ?", id).Order("id ASC").Find(&o.Items).Error; err != nil {
		return nil, err
	}
	o.Totals = o.ComputeTotals()
	return &o, nil
}

func (r *GormRepo) SaveOrder(ctx context.Context, o *models.Order) error {
	return r.DB.WithContext(ctx).Omit("Items").Save(o).Error
}

func (r *GormRepo) SaveOrderItem(ctx context.Context, it *models.OrderItem) error {
	return r.DB.WithContext(ctx).Save(it).Error
}

func (r *GormRepo) ListOrders(ctx context.Context, f OrderFilter, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if f.BuyerID != nil {
		q = q.Where("buyer_id = ?", *f.BuyerID)
	}
	if f.SellerID != nil {
		q = q.Where("id IN (?)", r.DB.Model(&models.OrderItem{}).Select("order_id").Where("seller_id = ?", *f.SellerID))
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Order, 0, limit)
	if err := q.Preload("Items").Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}
