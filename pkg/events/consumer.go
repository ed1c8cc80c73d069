package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/pkg/metrics"
)

// HandlerFunc handles one decoded event. Returning an error makes the consumer retry the same
// message with backoff; nothing after it is committed until it succeeds.
type HandlerFunc func(ctx context.Context, env Envelope) error

// Router dispatches envelopes by event type; unknown types are acknowledged and skipped.
type Router struct {
	Name     string
	handlers map[string]HandlerFunc
}

func NewRouter(name string) *Router {
	return &Router{Name: name, handlers: map[string]HandlerFunc{}}
}

func (r *Router) On(eventType string, h HandlerFunc) *Router {
	r.handlers[eventType] = h
	return r
}

func (r *Router) Handle(ctx context.Context, env Envelope) error {
	h, ok := r.handlers[env.EventType]
	if !ok {
		metrics.RecordEventConsumed(r.Name, env.EventType, "skipped")
		return nil
	}
	if err := h(ctx, env); err != nil {
		metrics.RecordEventConsumed(r.Name, env.EventType, "error")
		return err
	}
	metrics.RecordEventConsumed(r.Name, env.EventType, "ok")
	return nil
}

// HandleMessage decodes a raw kafka message and routes it. Malformed messages are dropped.
func (r *Router) HandleMessage(ctx context.Context, m kafka.Message) error {
	env, err := DecodeEnvelope(m.Value)
	if err != nil {
		logging.FromContext(ctx).Warn("event_decode_failed", "consumer", r.Name, "topic", m.Topic, "offset", m.Offset, "error", err)
		metrics.RecordEventConsumed(r.Name, "unknown", "malformed")
		return nil
	}
	return r.Handle(ctx, env)
}

type Consumer struct {
	r     *kafka.Reader
	retry backoff
}

// backoff retries one message, doubling the wait up to max.
type backoff struct {
	initial time.Duration
	max     time.Duration
}

var defaultBackoff = backoff{initial: 200 * time.Millisecond, max: 30 * time.Second}

// deliver runs handle until it succeeds. It returns false only when ctx ends first.
func (b backoff) deliver(ctx context.Context, l *slog.Logger, m kafka.Message, handle func(context.Context, kafka.Message) error) bool {
	wait := b.initial
	for attempt := 1; ; attempt++ {
		err := handle(ctx, m)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		l.Error("event_handle_failed", "topic", m.Topic, "offset", m.Offset, "attempt", attempt, "retry_in", wait, "error", err)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
		wait = min(wait*2, b.max)
	}
}

func NewConsumer(brokers []string, group string, topics ...string) *Consumer {
	return &Consumer{r: kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		GroupTopics:    topics,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        time.Second,
		CommitInterval: 0,
	}), retry: defaultBackoff}
}

// Run fetches until ctx is done, committing each message after the router accepted it.
// A failing message blocks its partition until the handler succeeds.
func (c *Consumer) Run(ctx context.Context, router *Router) error {
	defer c.r.Close()
	l := logging.FromContext(ctx).With("consumer", router.Name)

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if !c.retry.deliver(ctx, l, m, router.HandleMessage) {
			return nil
		}
		if err := c.r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			l.Error("event_commit_failed", "topic", m.Topic, "offset", m.Offset, "error", err)
		}
	}
}
