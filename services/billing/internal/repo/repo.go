package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/tradefund/services/billing/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) InTx(ctx context.Context, fn func(tx *GormRepo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}

// SeedPlans inserts the plans that do not exist yet and leaves edited ones alone.
func (r *GormRepo) SeedPlans(ctx context.Context, plans []models.Plan) error {
	if len(plans) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&plans).Error
}

func (r *GormRepo) ListPlans(ctx context.Context, activeOnly bool) ([]models.Plan, error) {
	q := r.DB.WithContext(ctx)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var out []models.Plan
	err := q.Order("price ASC").Order("code ASC").Find(&out).Error
	return out, err
}

func (r *GormRepo) GetPlan(ctx context.Context, code string) (*models.Plan, error) {
	var p models.Plan
	if err := r.DB.WithContext(ctx).First(&p, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) CreateSubscription(ctx context.Context, s *models.Subscription) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *GormRepo) CreatePayment(ctx context.Context, p *models.Payment) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) GetSubscription(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	var s models.Subscription
	if err := r.DB.WithContext(ctx).Preload("Plan").First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormRepo) LockSubscription(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	var s models.Subscription
	err := r.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormRepo) SaveSubscription(ctx context.Context, s *models.Subscription) error {
	return r.DB.WithContext(ctx).Omit("Plan").Save(s).Error
}

// OpenSubscription returns the user's PENDING or ACTIVE subscription to the plan, if any.
func (r *GormRepo) OpenSubscription(ctx context.Context, userID uuid.UUID, planCode string) (*models.Subscription, error) {
	var s models.Subscription
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND plan_code = ? AND status IN ?", userID, planCode,
			[]models.SubscriptionStatus{models.SubscriptionPending, models.SubscriptionActive}).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormRepo) ListSubscriptions(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error) {
	var out []models.Subscription
	err := r.DB.WithContext(ctx).Preload("Plan").
		Where("user_id = ?", userID).
		Order("created_at DESC").Find(&out).Error
	return out, err
}

// DueForExpiry locks ACTIVE subscriptions whose period ended at or before now.
func (r *GormRepo) DueForExpiry(ctx context.Context, now time.Time, limit int) ([]models.Subscription, error) {
	var out []models.Subscription
	err := r.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ? AND expires_at <= ?", models.SubscriptionActive, now).
		Order("expires_at ASC").Limit(limit).Find(&out).Error
	return out, err
}

func (r *GormRepo) LockPaymentByRef(ctx context.Context, ref string) (*models.Payment, error) {
	var p models.Payment
	err := r.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "provider_ref = ?", ref).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) SavePayment(ctx context.Context, p *models.Payment) error {
	return r.DB.WithContext(ctx).Save(p).Error
}

func (r *GormRepo) PaymentsForSubscription(ctx context.Context, subID uuid.UUID) ([]models.Payment, error) {
	var out []models.Payment
	err := r.DB.WithContext(ctx).Where("subscription_id = ?", subID).Order("created_at ASC").Find(&out).Error
	return out, err
}

type PaymentFilter struct {
	UserID   *uuid.UUID
	Status   models.PaymentStatus
	Provider string
}

func (r *GormRepo) ListPayments(ctx context.Context, f PaymentFilter, offset, limit int) (int64, []models.Payment, error) {
	q := r.DB.WithContext(ctx).Model(&models.Payment{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Provider != "" {
		q = q.Where("provider = ?", f.Provider)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}
	items := make([]models.Payment, 0, limit)
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}
