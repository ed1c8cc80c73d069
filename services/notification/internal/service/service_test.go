package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/tradefund/pkg/events"
	"github.com/Skotchmaster/tradefund/pkg/testutil"
	"github.com/Skotchmaster/tradefund/services/notification/internal/models"
	"github.com/Skotchmaster/tradefund/services/notification/internal/repo"
)

func newService(t *testing.T) *NotificationService {
	t.Helper()
	db := testutil.NewDB(t, &models.Notification{})
	return &NotificationService{Repo: &repo.GormRepo{DB: db}}
}

func envelope(t *testing.T, eventType string, payload any) events.Envelope {
	t.Helper()
	env, err := events.NewEnvelope(eventType, "test", "", payload)
	require.NoError(t, err)
	return env
}

func TestRouter_ProductRejectedNotifiesSeller(t *testing.T) {
	t.Parallel()

	s := newService(t)
	ctx := context.Background()
	seller := uuid.New()

	env := envelope(t, events.ProductRejected, events.ProductModerated{
		ProductID: uuid.New(), SellerID: seller, Name: "Kopi", Status: "REJECTED", Reason: "blurry photos",
	})
	require.NoError(t, s.Router().Handle(ctx, env))
	require.NoError(t, s.Router().Handle(ctx, env), "redelivery is idempotent")

	total, items, err := s.List(ctx, seller, false, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, events.ProductRejected, items[0].Type)
	assert.Contains(t, items[0].Body, "blurry photos")
	assert.Equal(t, env.EventID, items[0].EventID)
}

func TestRouter_FanOut(t *testing.T) {
	t.Parallel()

	s := newService(t)
	ctx := context.Background()
	buyer, sellerA, sellerB := uuid.New(), uuid.New(), uuid.New()
	a, b := uuid.New(), uuid.New()

	r := s.Router()
	require.NoError(t, r.Handle(ctx, envelope(t, events.OrderCreated, events.OrderPlaced{
		OrderID: uuid.New(), BuyerID: buyer, SellerIDs: []uuid.UUID{sellerA, sellerB}, ItemCount: 2,
	})))
	require.NoError(t, r.Handle(ctx, envelope(t, events.DividendDistributed, events.DividendIssued{
		ProjectID: uuid.New(), Period: "2026-Q3", Currency: "USD",
		Payouts: []events.DividendPayout{{InvestorID: a, Amount: decimal.NewFromInt(60)}, {InvestorID: b, Amount: decimal.NewFromInt(30)}},
	})))

	for _, id := range []uuid.UUID{buyer, sellerA, sellerB, a, b} {
		n, err := s.UnreadCount(ctx, id)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	}
	_, items, err := s.List(ctx, a, true, 0, 10)
	require.NoError(t, err)
	assert.Contains(t, items[0].Body, "60.00 USD")
}

func TestRouter_SkipsBuyerOwnTransitionsAndUnknownEvents(t *testing.T) {
	t.Parallel()

	s := newService(t)
	ctx := context.Background()
	buyer := uuid.New()

	require.NoError(t, s.Router().Handle(ctx, envelope(t, events.OrderStatusChanged, events.OrderTransition{
		OrderID: uuid.New(), BuyerID: buyer, ActorID: buyer, From: "PENDING", To: "CANCELLED",
	})))
	require.NoError(t, s.Router().Handle(ctx, envelope(t, "something_else", map[string]string{"x": "y"})))
	require.NoError(t, s.Router().Handle(ctx, events.Envelope{EventID: "e1", EventType: events.OrderPricesFixed, Payload: []byte(`"oops"`)}))

	n, err := s.UnreadCount(ctx, buyer)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMarkRead(t *testing.T) {
	t.Parallel()

	s := newService(t)
	ctx := context.Background()
	user := uuid.New()
	s.Now = func() time.Time { return time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC) }

	for _, status := range []string{"ACTIVE", "EXPIRED"} {
		require.NoError(t, s.Router().Handle(ctx, envelope(t, events.SubscriptionActivated, events.SubscriptionChanged{
			SubscriptionID: uuid.New(), UserID: user, PlanCode: "pro", Status: status,
		})))
	}
	_, items, err := s.List(ctx, user, false, 0, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NoError(t, s.MarkRead(ctx, user, items[0].ID))
	require.NoError(t, s.MarkRead(ctx, user, items[0].ID))
	assert.ErrorIs(t, s.MarkRead(ctx, uuid.New(), items[0].ID), ErrNotFound, "other users cannot touch it")

	n, err := s.UnreadCount(ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	marked, err := s.MarkAllRead(ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 1, marked)
	n, err = s.UnreadCount(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, n)
}
