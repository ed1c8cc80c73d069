package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

type Publisher interface {
	Publish(ctx context.Context, topic, key string, env Envelope) error
}

type KafkaPublisher struct {
	w *kafka.Writer
}

func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
			WriteTimeout:           5 * time.Second,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("kafka: marshal envelope: %w", err)
	}
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write %s: %w", topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }

// MemoryPublisher keeps published envelopes in memory. Used when events are disabled and in tests.
type MemoryPublisher struct {
	mu   sync.Mutex
	Sent []Published
	Err  error
}

type Published struct {
	Topic    string
	Key      string
	Envelope Envelope
}

func (m *MemoryPublisher) Publish(_ context.Context, topic, key string, env Envelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, Published{Topic: topic, Key: key, Envelope: env})
	return nil
}

func (m *MemoryPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Sent))
	for _, s := range m.Sent {
		out = append(out, s.Envelope.EventType)
	}
	return out
}

func (m *MemoryPublisher) Last() (Published, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return Published{}, false
	}
	return m.Sent[len(m.Sent)-1], true
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, Envelope) error { return nil }

// Open returns a kafka publisher, or a no-op one when events are switched off.
func Open(enabled bool, brokers []string) (Publisher, func()) {
	if !enabled || len(brokers) == 0 {
		return NopPublisher{}, func() {}
	}
	kp := NewKafkaPublisher(brokers)
	return kp, func() { _ = kp.Close() }
}
