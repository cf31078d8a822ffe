package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Channel is the Redis pub/sub channel carrying session events.
const Channel = "portal:session-events"

// RedisBroker publishes events through Redis so every portal instance
// observes sign-ins and sign-outs. Received events are dispatched to local
// subscribers.
type RedisBroker struct {
	cache  *redis.Client
	pubsub *redis.PubSub
	local  *MemoryBroker
	logger *slog.Logger
	done   chan struct{}
	once   sync.Once
}

// NewRedisBroker subscribes to Channel and starts relaying messages. The
// subscription is confirmed before the broker is returned.
func NewRedisBroker(ctx context.Context, cache *redis.Client, logger *slog.Logger) (*RedisBroker, error) {
	pubsub := cache.Subscribe(ctx, Channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", Channel, err)
	}

	b := &RedisBroker{
		cache:  cache,
		pubsub: pubsub,
		local:  NewMemoryBroker(),
		logger: logger,
		done:   make(chan struct{}),
	}
	go b.relay()
	return b, nil
}

func (b *RedisBroker) relay() {
	defer close(b.done)
	for msg := range b.pubsub.Channel() {
		var event Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			b.logger.Warn("drop malformed session event", slog.Any("error", err))
			continue
		}
		b.local.dispatch(event)
	}
}

// Publish sends the event to every instance, this one included.
func (b *RedisBroker) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode session event: %w", err)
	}
	if err := b.cache.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish session event: %w", err)
	}
	return nil
}

// Subscribe registers handler for events received from Redis.
func (b *RedisBroker) Subscribe(handler Handler) Subscription {
	return b.local.Subscribe(handler)
}

// Close stops relaying and waits for the relay goroutine to exit.
func (b *RedisBroker) Close() error {
	var err error
	b.once.Do(func() {
		err = b.pubsub.Close()
		<-b.done
		b.local.Close()
	})
	return err
}
