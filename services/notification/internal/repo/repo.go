package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/tradefund/services/notification/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

// CreateMany inserts notifications, skipping ones already stored for the same event and user.
func (r *GormRepo) CreateMany(ctx context.Context, items []models.Notification) error {
	if len(items) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}, {Name: "event_id"}}, DoNothing: true}).
		Create(&items).Error
}

func (r *GormRepo) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, offset, limit int) (int64, []models.Notification, error) {
	q := r.DB.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}
	items := make([]models.Notification, 0, limit)
	if err := q.Order("created_at DESC").Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).Count(&n).Error
	return n, err
}

// MarkRead marks one notification of the user as read. Marking twice is not an error.
func (r *GormRepo) MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) error {
	var n models.Notification
	if err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		return err
	}
	if n.ReadAt != nil {
		return nil
	}
	return r.DB.WithContext(ctx).Model(&n).Update("read_at", at).Error
}

func (r *GormRepo) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", at)
	return res.RowsAffected, res.Error
}
