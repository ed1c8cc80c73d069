package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	jwthelp "github.com/Skotchmaster/tradefund/pkg/jwt"
	"github.com/Skotchmaster/tradefund/services/auth/internal/models"
)

func (r *GormRepo) AddRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func (r *GormRepo) FindRefreshByJTI(ctx context.Context, jti string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("jti = ?", jti).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func expiredOrRevoked(t *models.RefreshToken) bool {
	return t.Revoked || t.ExpiresAt < time.Now().Unix()
}

// RotateRefreshToken revokes oldJTI and stores newToken atomically. The old token must be live
// and must match rawOld.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldJTI, rawOld string, newToken *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old models.RefreshToken
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("jti = ?", oldJTI).First(&old).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTokenRevoked
			}
			return err
		}
		if expiredOrRevoked(&old) || old.Token != jwthelp.Sha256Hex(rawOld) {
			return ErrTokenRevoked
		}
		if err := tx.Model(&old).Update("revoked", true).Error; err != nil {
			return err
		}
		return tx.Create(newToken).Error
	})
}

func (r *GormRepo) RevokeRefreshToken(ctx context.Context, rawToken string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ?", jwthelp.Sha256Hex(rawToken)).
		Update("revoked", true).Error
}
