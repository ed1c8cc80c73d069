package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/tradefund/pkg/logging"
)

// Broker moves encoded frames between every chat instance that has a room open.
type Broker interface {
	Publish(ctx context.Context, room uuid.UUID, frame []byte) error
	// Subscribe calls deliver for every frame published to room until cancel is called.
	Subscribe(ctx context.Context, room uuid.UUID, deliver func([]byte)) (cancel func(), err error)
}

// MemoryBroker keeps fan-out inside one process.
type MemoryBroker struct {
	mu   sync.RWMutex
	next int
	subs map[uuid.UUID]map[int]func([]byte)
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: map[uuid.UUID]map[int]func([]byte){}}
}

func (b *MemoryBroker) Publish(_ context.Context, room uuid.UUID, frame []byte) error {
	b.mu.RLock()
	fns := make([]func([]byte), 0, len(b.subs[room]))
	for _, fn := range b.subs[room] {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(frame)
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, room uuid.UUID, deliver func([]byte)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	if b.subs[room] == nil {
		b.subs[room] = map[int]func([]byte){}
	}
	b.subs[room][id] = deliver

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[room], id)
		if len(b.subs[room]) == 0 {
			delete(b.subs, room)
		}
	}, nil
}

// RedisBroker fans frames out over redis pub/sub, one channel per room.
type RedisBroker struct {
	rdb *redis.Client
}

func NewRedisBroker(rdb *redis.Client) *RedisBroker {
	return &RedisBroker{rdb: rdb}
}

func Channel(room uuid.UUID) string { return "chat:room:" + room.String() }

func (b *RedisBroker) Publish(ctx context.Context, room uuid.UUID, frame []byte) error {
	return b.rdb.Publish(ctx, Channel(room), frame).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, room uuid.UUID, deliver func([]byte)) (func(), error) {
	sub := b.rdb.Subscribe(ctx, Channel(room))
	// wait for the subscription confirmation so frames published right after are not lost
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	l := logging.FromContext(ctx).With("room", room)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range sub.Channel() {
			deliver([]byte(msg.Payload))
		}
		l.Debug("room_subscription_closed")
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := sub.Close(); err != nil {
				l.Warn("room_unsubscribe_failed", "error", err)
			}
			<-done
		})
	}, nil
}
