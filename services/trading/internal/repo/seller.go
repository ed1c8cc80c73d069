package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/tradefund/services/trading/internal/models"
)

func (r *GormRepo) GetSellerProfile(ctx context.Context, sellerID uuid.UUID) (*models.SellerProfile, error) {
	var p models.SellerProfile
	if err := r.DB.WithContext(ctx).First(&p, "seller_id = ?", sellerID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertSellerProfile inserts the profile or overwrites the existing one for the same seller.
func (r *GormRepo) UpsertSellerProfile(ctx context.Context, p *models.SellerProfile) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "seller_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"company_name", "logo_url", "description", "country", "address", "company_profile_url", "updated_at",
		}),
	}).Create(p).Error
}
