package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/tradefund/services/dashboard/internal/models"
)

// GormRepo only reads. Every call recomputes from the source tables.
type GormRepo struct {
	DB *gorm.DB
}

type bucket struct {
	K string
	N int64
}

// CountBy counts rows of model grouped by column. The column name must be a constant.
func (r *GormRepo) CountBy(ctx context.Context, model any, column string, where string, args ...any) (map[string]int64, error) {
	q := r.DB.WithContext(ctx).Model(model).Select(column + " AS k, COUNT(*) AS n")
	if where != "" {
		q = q.Where(where, args...)
	}
	var rows []bucket
	if err := q.Group(column).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, b := range rows {
		out[b.K] = b.N
	}
	return out, nil
}

func (r *GormRepo) Count(ctx context.Context, model any, where string, args ...any) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(model).Where(where, args...).Count(&n).Error
	return n, err
}

func (r *GormRepo) InvestmentsByInvestor(ctx context.Context, investorID uuid.UUID) ([]models.Investment, error) {
	var out []models.Investment
	err := r.DB.WithContext(ctx).Where("investor_id = ?", investorID).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *GormRepo) InvestmentsForProjects(ctx context.Context, projectIDs []uuid.UUID) ([]models.Investment, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	var out []models.Investment
	err := r.DB.WithContext(ctx).Where("project_id IN ?", projectIDs).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *GormRepo) InvestmentsByStatus(ctx context.Context, status string) ([]models.Investment, error) {
	var out []models.Investment
	err := r.DB.WithContext(ctx).Where("status = ?", status).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *GormRepo) PayoutsByInvestor(ctx context.Context, investorID uuid.UUID) ([]models.DividendPayout, error) {
	var out []models.DividendPayout
	err := r.DB.WithContext(ctx).Where("investor_id = ?", investorID).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *GormRepo) PayoutsForProjects(ctx context.Context, projectIDs []uuid.UUID) ([]models.DividendPayout, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	var out []models.DividendPayout
	err := r.DB.WithContext(ctx).Where("project_id IN ?", projectIDs).Find(&out).Error
	return out, err
}

func (r *GormRepo) Payouts(ctx context.Context) ([]models.DividendPayout, error) {
	var out []models.DividendPayout
	err := r.DB.WithContext(ctx).Find(&out).Error
	return out, err
}

func (r *GormRepo) ProjectsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Project, error) {
	var out []models.Project
	err := r.DB.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *GormRepo) Projects(ctx context.Context) ([]models.Project, error) {
	var out []models.Project
	err := r.DB.WithContext(ctx).Find(&out).Error
	return out, err
}

func (r *GormRepo) OrdersByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error) {
	var out []models.Order
	err := r.DB.WithContext(ctx).Preload("Items").Where("buyer_id = ?", buyerID).Find(&out).Error
	return out, err
}

func (r *GormRepo) OrdersByStatus(ctx context.Context, statuses []string) ([]models.Order, error) {
	var out []models.Order
	err := r.DB.WithContext(ctx).Preload("Items").Where("status IN ?", statuses).Find(&out).Error
	return out, err
}

// SellerLines returns every order item sold by the seller with its order's state.
func (r *GormRepo) SellerLines(ctx context.Context, sellerID uuid.UUID) ([]models.SellerLine, error) {
	var out []models.SellerLine
	err := r.DB.WithContext(ctx).
		Table("order_items AS i").
		Select(`i.order_id, i.product_id, i.product_name, i.quantity,
			i.estimate_currency, i.unit_price_estimate, i.currency, i.fixed_unit_price,
			o.status AS order_status, o.price_mode, o.created_at AS order_created_at`).
		Joins("JOIN orders o ON o.id = i.order_id").
		Where("i.seller_id = ?", sellerID).
		Scan(&out).Error
	return out, err
}

func (r *GormRepo) PaymentsByStatus(ctx context.Context, status string) ([]models.Payment, error) {
	var out []models.Payment
	err := r.DB.WithContext(ctx).Where("status = ?", status).Find(&out).Error
	return out, err
}
