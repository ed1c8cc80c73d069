package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope_RoundTrip(t *testing.T) {
	t.Parallel()

	orderID := uuid.New()
	env, err := NewEnvelope(OrderPricesFixed, "trading", orderID.String(), OrderPriced{
		OrderID: orderID,
		Totals:  []CurrencyAmount{{Currency: "USD", Amount: decimal.RequireFromString("27")}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, env.EventVersion)
	assert.NotEmpty(t, env.EventID)

	raw, err := json.Marshal(env)
	require.NoError(t, err)
	back, err := DecodeEnvelope(raw)
	require.NoError(t, err)

	p, err := DecodePayload[OrderPriced](back)
	require.NoError(t, err)
	assert.Equal(t, orderID, p.OrderID)
	assert.True(t, p.Totals[0].Amount.Equal(decimal.NewFromInt(27)))
}

func TestDecodeEnvelope_Invalid(t *testing.T) {
	t.Parallel()

	_, err := DecodeEnvelope([]byte(`{"payload":{}}`))
	require.Error(t, err)
	_, err = DecodeEnvelope([]byte(`not json`))
	require.Error(t, err)
}

func TestBestEffort_EmitFailureIsReported(t *testing.T) {
	t.Parallel()

	pub := &MemoryPublisher{Err: errors.New("broker down")}
	be := NewBestEffort(pub, "trading")

	ok := be.Emit(context.Background(), TopicTrading, OrderCreated, "k", OrderPlaced{})
	assert.False(t, ok)
	assert.Empty(t, pub.Sent)

	pub.Err = nil
	ok = be.Emit(context.Background(), TopicTrading, OrderCreated, "k", OrderPlaced{})
	assert.True(t, ok)
	last, found := pub.Last()
	require.True(t, found)
	assert.Equal(t, TopicTrading, last.Topic)
	assert.Equal(t, "trading", last.Envelope.Producer)
}

func TestBestEffort_NilIsNoop(t *testing.T) {
	t.Parallel()

	var be *BestEffort
	assert.False(t, be.Emit(context.Background(), TopicTrading, OrderCreated, "k", nil))
}

func TestBestEffort_DoSurvivesCancelledRequest(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	be := NewBestEffort(&MemoryPublisher{}, "x")
	ok := be.Do(ctx, "index", func(ctx context.Context) error { return ctx.Err() })
	assert.True(t, ok)
}

func TestRouter_HandleMessage(t *testing.T) {
	t.Parallel()

	var got []string
	r := NewRouter("test").
		On(ProductApproved, func(ctx context.Context, env Envelope) error {
			got = append(got, env.EventType)
			return nil
		}).
		On(ProductRejected, func(ctx context.Context, env Envelope) error {
			return errors.New("db down")
		})

	env, err := NewEnvelope(ProductApproved, "trading", "", ProductModerated{})
	require.NoError(t, err)
	raw, _ := json.Marshal(env)
	require.NoError(t, r.HandleMessage(context.Background(), kafka.Message{Value: raw}))

	env, _ = NewEnvelope(ProductRejected, "trading", "", ProductModerated{})
	raw, _ = json.Marshal(env)
	require.Error(t, r.HandleMessage(context.Background(), kafka.Message{Value: raw}))

	env, _ = NewEnvelope("something_else", "trading", "", nil)
	raw, _ = json.Marshal(env)
	require.NoError(t, r.HandleMessage(context.Background(), kafka.Message{Value: raw}))

	require.NoError(t, r.HandleMessage(context.Background(), kafka.Message{Value: []byte("junk")}))
	assert.Equal(t, []string{ProductApproved}, got)
}

func TestBackoff_RetriesSameMessageUntilHandled(t *testing.T) {
	t.Parallel()

	env, err := NewEnvelope(OrderCreated, "trading", "", OrderPlaced{})
	require.NoError(t, err)
	raw, _ := json.Marshal(env)
	msg := kafka.Message{Topic: TopicTrading, Offset: 41, Value: raw}

	var offsets []int64
	calls := 0
	r := NewRouter("test").On(OrderCreated, func(ctx context.Context, env Envelope) error {
		calls++
		if calls < 3 {
			return errors.New("db down")
		}
		return nil
	})
	handle := func(ctx context.Context, m kafka.Message) error {
		offsets = append(offsets, m.Offset)
		return r.HandleMessage(ctx, m)
	}

	b := backoff{initial: time.Millisecond, max: 2 * time.Millisecond}
	require.True(t, b.deliver(context.Background(), slog.New(slog.DiscardHandler), msg, handle))
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int64{41, 41, 41}, offsets)
}

func TestBackoff_StopsWhenContextEnds(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	handle := func(context.Context, kafka.Message) error {
		calls++
		if calls == 2 {
			cancel()
		}
		return errors.New("db down")
	}

	b := backoff{initial: time.Millisecond, max: time.Millisecond}
	assert.False(t, b.deliver(ctx, slog.New(slog.DiscardHandler), kafka.Message{}, handle))
	assert.Equal(t, 2, calls)
}
