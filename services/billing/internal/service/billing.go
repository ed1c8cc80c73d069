package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Skotchmaster/tradefund/pkg/events"
	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/pkg/roles"
	"github.com/Skotchmaster/tradefund/services/billing/internal/models"
	"github.com/Skotchmaster/tradefund/services/billing/internal/repo"
	"github.com/Skotchmaster/tradefund/services/billing/internal/transport"
)

type BillingService struct {
	Repo      *repo.GormRepo
	Events    *events.BestEffort
	Providers []string
	// CallbackSecret signs provider callbacks with HMAC-SHA256 over the raw body.
	CallbackSecret []byte
	CheckoutURL    string
	Now            func() time.Time
}

func (s *BillingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

type Checkout struct {
	Subscription *models.Subscription `json:"subscription"`
	Payment      *models.Payment      `json:"payment"`
	RedirectURL  string               `json:"redirect_url,omitempty"`
}

func (s *BillingService) ListPlans(ctx context.Context) ([]models.Plan, error) {
	return s.Repo.ListPlans(ctx, true)
}

// Subscribe opens a PENDING subscription with a PENDING payment at the chosen provider.
func (s *BillingService) Subscribe(ctx context.Context, a Actor, req transport.SubscribeRequest) (*Checkout, error) {
	provider := strings.ToLower(strings.TrimSpace(req.Provider))
	if !slices.Contains(s.Providers, provider) {
		return nil, fmt.Errorf("%w: unknown payment provider %q", ErrValidation, req.Provider)
	}
	plan, err := s.Repo.GetPlan(ctx, strings.TrimSpace(req.PlanCode))
	if err != nil {
		return nil, notFound(err, "plan")
	}
	if !plan.Active {
		return nil, fmt.Errorf("%w: plan is no longer offered", ErrValidation)
	}
	if plan.Audience != "" && plan.Audience != a.Role {
		return nil, fmt.Errorf("%w: plan %s is for %s accounts", ErrForbidden, plan.Code, strings.ToLower(plan.Audience))
	}

	out := &Checkout{}
	err = s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		_, err := tx.OpenSubscription(ctx, a.ID, plan.Code)
		switch {
		case err == nil:
			return fmt.Errorf("%w: already subscribed or awaiting payment for %s", ErrConflict, plan.Code)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		sub := &models.Subscription{UserID: a.ID, PlanCode: plan.Code, Status: models.SubscriptionPending}
		if err := tx.CreateSubscription(ctx, sub); err != nil {
			return err
		}
		pay := &models.Payment{
			SubscriptionID: sub.ID,
			UserID:         a.ID,
			Provider:       provider,
			ProviderRef:    "pay_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
			Amount:         plan.Price,
			Currency:       plan.Currency,
			Status:         models.PaymentPending,
		}
		if err := tx.CreatePayment(ctx, pay); err != nil {
			return err
		}
		sub.Plan = plan
		out.Subscription, out.Payment = sub, pay
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.CheckoutURL != "" {
		out.RedirectURL = s.CheckoutURL + "?provider=" + provider + "&ref=" + out.Payment.ProviderRef
	}
	return out, nil
}

// VerifySignature checks the hex HMAC-SHA256 of body under the callback secret.
func (s *BillingService) VerifySignature(body []byte, signature string) error {
	if len(s.CallbackSecret) == 0 {
		return fmt.Errorf("%w: callbacks are not configured", ErrUnauthorized)
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return fmt.Errorf("%w: malformed signature", ErrUnauthorized)
	}
	if !hmac.Equal(got, Sign(s.CallbackSecret, body)) {
		return fmt.Errorf("%w: signature mismatch", ErrUnauthorized)
	}
	return nil
}

func Sign(secret, body []byte) []byte {
	m := hmac.New(sha256.New, secret)
	m.Write(body)
	return m.Sum(nil)
}

// HandleCallback settles a payment. A PAID payment activates its subscription for one
// plan period; a FAILED one cancels it. Settled payments ignore later callbacks.
func (s *BillingService) HandleCallback(ctx context.Context, provider string, req transport.CallbackRequest, raw []byte) (*models.Subscription, error) {
	status := models.PaymentStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if status != models.PaymentPaid && status != models.PaymentFailed {
		return nil, fmt.Errorf("%w: status must be PAID or FAILED", ErrValidation)
	}
	if req.ProviderRef == "" {
		return nil, fmt.Errorf("%w: provider_ref is required", ErrValidation)
	}

	var (
		sub       *models.Subscription
		activated bool
	)
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		pay, err := tx.LockPaymentByRef(ctx, req.ProviderRef)
		if err != nil {
			return notFound(err, "payment")
		}
		if pay.Provider != provider {
			return fmt.Errorf("%w: payment belongs to another provider", ErrValidation)
		}
		if sub, err = tx.LockSubscription(ctx, pay.SubscriptionID); err != nil {
			return notFound(err, "subscription")
		}
		if pay.Status.Final() {
			return nil
		}

		now := s.now()
		pay.Status = status
		pay.Callback = datatypes.JSON(raw)
		if status == models.PaymentFailed {
			if err := tx.SavePayment(ctx, pay); err != nil {
				return err
			}
			if sub.Status.CanTransition(models.SubscriptionCancelled) {
				sub.Status = models.SubscriptionCancelled
				sub.CancelledAt = &now
				return tx.SaveSubscription(ctx, sub)
			}
			return nil
		}

		pay.PaidAt = &now
		if err := tx.SavePayment(ctx, pay); err != nil {
			return err
		}
		if !sub.Status.CanTransition(models.SubscriptionActive) {
			// paid after the user cancelled; money is kept for a manual refund
			logging.FromContext(ctx).Warn("payment_for_closed_subscription", "subscription_id", sub.ID, "status", sub.Status)
			return nil
		}
		plan, err := tx.GetPlan(ctx, sub.PlanCode)
		if err != nil {
			return notFound(err, "plan")
		}
		expires := now.Add(plan.Period())
		sub.Status = models.SubscriptionActive
		sub.StartedAt = &now
		sub.ExpiresAt = &expires
		activated = true
		return tx.SaveSubscription(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	if activated {
		s.emit(ctx, events.SubscriptionActivated, sub)
	}
	return sub, nil
}

func (s *BillingService) Cancel(ctx context.Context, a Actor, id uuid.UUID) (*models.Subscription, error) {
	var sub *models.Subscription
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		var err error
		if sub, err = tx.LockSubscription(ctx, id); err != nil {
			return notFound(err, "subscription")
		}
		if sub.UserID != a.ID && a.Role != roles.SuperAdmin {
			return fmt.Errorf("%w: not your subscription", ErrForbidden)
		}
		if !sub.Status.CanTransition(models.SubscriptionCancelled) {
			return fmt.Errorf("%w: %s subscription cannot be cancelled", ErrConflict, strings.ToLower(string(sub.Status)))
		}
		now := s.now()
		sub.Status = models.SubscriptionCancelled
		sub.CancelledAt = &now
		return tx.SaveSubscription(ctx, sub)
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *BillingService) Mine(ctx context.Context, a Actor) ([]models.Subscription, error) {
	return s.Repo.ListSubscriptions(ctx, a.ID)
}

func (s *BillingService) Get(ctx context.Context, a Actor, id uuid.UUID) (*models.Subscription, []models.Payment, error) {
	sub, err := s.Repo.GetSubscription(ctx, id)
	if err != nil {
		return nil, nil, notFound(err, "subscription")
	}
	if sub.UserID != a.ID && a.Role != roles.SuperAdmin {
		return nil, nil, fmt.Errorf("%w: not your subscription", ErrForbidden)
	}
	pays, err := s.Repo.PaymentsForSubscription(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return sub, pays, nil
}

func (s *BillingService) ListPayments(ctx context.Context, f repo.PaymentFilter, offset, limit int) (int64, []models.Payment, error) {
	if f.Status != "" && f.Status != models.PaymentPending && !f.Status.Final() {
		return 0, nil, fmt.Errorf("%w: unknown payment status", ErrValidation)
	}
	return s.Repo.ListPayments(ctx, f, offset, limit)
}

// ExpireDue moves every ACTIVE subscription past its expiry to EXPIRED and returns how many moved.
func (s *BillingService) ExpireDue(ctx context.Context) (int, error) {
	const batch = 200
	total := 0
	for {
		var expired []models.Subscription
		err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
			due, err := tx.DueForExpiry(ctx, s.now(), batch)
			if err != nil {
				return err
			}
			for i := range due {
				due[i].Status = models.SubscriptionExpired
				if err := tx.SaveSubscription(ctx, &due[i]); err != nil {
					return err
				}
			}
			expired = due
			return nil
		})
		if err != nil {
			return total, err
		}
		for i := range expired {
			s.emit(ctx, events.SubscriptionExpired, &expired[i])
		}
		total += len(expired)
		if len(expired) < batch {
			return total, nil
		}
	}
}

func (s *BillingService) emit(ctx context.Context, eventType string, sub *models.Subscription) {
	s.Events.Emit(ctx, events.TopicBilling, eventType, sub.ID.String(), events.SubscriptionChanged{
		SubscriptionID: sub.ID,
		UserID:         sub.UserID,
		PlanCode:       sub.PlanCode,
		Status:         string(sub.Status),
		ExpiresAt:      sub.ExpiresAt,
	})
}
