package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/tradefund/services/investment/internal/models"
)

type ProjectFilter struct {
	OwnerID  *uuid.UUID
	Statuses []models.ProjectStatus
	Sector   string
	Query    string
}

func (r *GormRepo) CreateProject(ctx context.Context, p *models.Project) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	if err := r.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) LockProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	if err := r.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) SaveProject(ctx context.Context, p *models.Project) error {
	return r.DB.WithContext(ctx).Save(p).Error
}

func (r *GormRepo) ListProjects(ctx context.Context, f ProjectFilter, offset, limit int) (int64, []models.Project, error) {
	q := r.DB.WithContext(ctx).Model(&models.Project{})
	if f.OwnerID != nil {
		q = q.Where("owner_id = ?", *f.OwnerID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if s := strings.TrimSpace(f.Sector); s != "" {
		q = q.Where("LOWER(sector) = ?", strings.ToLower(s))
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}
	items := make([]models.Project, 0, limit)
	if err := q.Order("created_at DESC").Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}
