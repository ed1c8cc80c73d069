package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/tradefund/services/investment/internal/models"
)

func (r *GormRepo) CreateReport(ctx context.Context, rep *models.FinancialReport) error {
	return r.DB.WithContext(ctx).Create(rep).Error
}

func (r *GormRepo) GetReport(ctx context.Context, id uuid.UUID) (*models.FinancialReport, error) {
	var rep models.FinancialReport
	if err := r.DB.WithContext(ctx).First(&rep, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *GormRepo) SaveReport(ctx context.Context, rep *models.FinancialReport) error {
	return r.DB.WithContext(ctx).Save(rep).Error
}

func (r *GormRepo) DeleteReport(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Delete(&models.FinancialReport{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ListReports(ctx context.Context, projectID uuid.UUID) ([]models.FinancialReport, error) {
	var items []models.FinancialReport
	if err := r.DB.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// InvestorIDs lists investors with a confirmed stake in the project.
func (r *GormRepo) InvestorIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.DB.WithContext(ctx).Model(&models.Investment{}).
		Where("project_id = ? AND status = ?", projectID, models.InvestmentConfirmed).
		Distinct().Order("investor_id ASC").Pluck("investor_id", &ids).Error
	return ids, err
}
