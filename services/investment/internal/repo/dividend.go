package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/tradefund/services/investment/internal/models"
)

// CreateDividend stores the dividend together with its payouts.
func (r *GormRepo) CreateDividend(ctx context.Context, d *models.Dividend) error {
	return r.DB.WithContext(ctx).Create(d).Error
}

func (r *GormRepo) ListDividends(ctx context.Context, projectID uuid.UUID) ([]models.Dividend, error) {
	var items []models.Dividend
	if err := r.DB.WithContext(ctx).
		Preload("Payouts").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) ListPayouts(ctx context.Context, investorID uuid.UUID, offset, limit int) (int64, []models.DividendPayout, error) {
	q := r.DB.WithContext(ctx).Model(&models.DividendPayout{}).Where("investor_id = ?", investorID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}
	items := make([]models.DividendPayout, 0, limit)
	if err := q.Order("created_at DESC").Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}
