package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/tradefund/services/investment/internal/models"
)

type InvestmentFilter struct {
	ProjectID  *uuid.UUID
	InvestorID *uuid.UUID
	Status     models.InvestmentStatus
}

func (r *GormRepo) CreateInvestment(ctx context.Context, inv *models.Investment) error {
	return r.DB.WithContext(ctx).Create(inv).Error
}

func (r *GormRepo) GetInvestment(ctx context.Context, id uuid.UUID) (*models.Investment, error) {
	var inv models.Investment
	if err := r.DB.WithContext(ctx).First(&inv, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *GormRepo) LockInvestment(ctx context.Context, id uuid.UUID) (*models.Investment, error) {
	var inv models.Investment
	if err := r.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&inv, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *GormRepo) SaveInvestment(ctx context.Context, inv *models.Investment) error {
	return r.DB.WithContext(ctx).Save(inv).Error
}

func (r *GormRepo) ListInvestments(ctx context.Context, f InvestmentFilter, offset, limit int) (int64, []models.Investment, error) {
	q := r.DB.WithContext(ctx).Model(&models.Investment{})
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}
	if f.InvestorID != nil {
		q = q.Where("investor_id = ?", *f.InvestorID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}
	items := make([]models.Investment, 0, limit)
	if err := q.Order("created_at DESC").Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// Holdings sums confirmed investments per investor for a project, ordered by investor id.
func (r *GormRepo) Holdings(ctx context.Context, projectID uuid.UUID) ([]models.Holding, error) {
	var rows []models.Investment
	if err := r.DB.WithContext(ctx).
		Where("project_id = ? AND status = ?", projectID, models.InvestmentConfirmed).
		Order("investor_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.Holding, 0, len(rows))
	for _, inv := range rows {
		if n := len(out); n > 0 && out[n-1].InvestorID == inv.InvestorID {
			out[n-1].Amount = out[n-1].Amount.Add(inv.Amount)
			continue
		}
		out = append(out, models.Holding{InvestorID: inv.InvestorID, Amount: inv.Amount})
	}
	return out, nil
}

// HasConfirmed reports whether the investor holds a confirmed stake in the project.
func (r *GormRepo) HasConfirmed(ctx context.Context, projectID, investorID uuid.UUID) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Investment{}).
		Where("project_id = ? AND investor_id = ? AND status = ?", projectID, investorID, models.InvestmentConfirmed).
		Count(&n).Error
	return n > 0, err
}
