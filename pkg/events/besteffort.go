package events

import (
	"context"
	"time"

	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/pkg/metrics"
)

// BestEffort runs secondary actions after the primary write has committed.
// A failure never fails the caller; it is logged and counted in side_effect_failures_total.
type BestEffort struct {
	Pub      Publisher
	Producer string
	Timeout  time.Duration
}

func NewBestEffort(pub Publisher, producer string) *BestEffort {
	return &BestEffort{Pub: pub, Producer: producer, Timeout: 5 * time.Second}
}

// Emit publishes one event and reports whether it went out.
func (b *BestEffort) Emit(ctx context.Context, topic, eventType, key string, payload any) bool {
	if b == nil || b.Pub == nil {
		return false
	}
	env, err := NewEnvelope(eventType, b.Producer, key, payload)
	if err != nil {
		b.fail(ctx, "publish:"+eventType, err)
		return false
	}
	return b.Do(ctx, "publish:"+eventType, func(ctx context.Context) error {
		return b.Pub.Publish(ctx, topic, key, env)
	})
}

// Do runs fn detached from the request cancellation but bounded by the timeout.
// A nil BestEffort still runs fn.
func (b *BestEffort) Do(ctx context.Context, effect string, fn func(ctx context.Context) error) bool {
	timeout := 5 * time.Second
	if b != nil && b.Timeout > 0 {
		timeout = b.Timeout
	}
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := fn(runCtx); err != nil {
		b.fail(ctx, effect, err)
		return false
	}
	return true
}

func (b *BestEffort) fail(ctx context.Context, effect string, err error) {
	producer := ""
	if b != nil {
		producer = b.Producer
	}
	metrics.RecordSideEffectFailure(effect)
	logging.FromContext(ctx).Warn("side_effect_failed", "effect", effect, "producer", producer, "error", err)
}
