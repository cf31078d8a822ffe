package notification

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/schemes-portal/schemes_portal/internal/logging"
)

func TestMemoryBrokerUnsubscribe(t *testing.T) {
	broker := NewMemoryBroker()
	var got []string
	sub := broker.Subscribe(func(e Event) { got = append(got, e.Kind) })

	ctx := context.Background()
	if err := broker.Publish(ctx, Event{Kind: KindSignedIn, SessionID: "s1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	sub.Unsubscribe()
	sub.Unsubscribe()
	if err := broker.Publish(ctx, Event{Kind: KindSignedOut, SessionID: "s1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(got) != 1 || got[0] != KindSignedIn {
		t.Fatalf("expected only the first event, got %v", got)
	}
}

func TestRedisBrokerRelaysEvents(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	ctx := context.Background()
	broker, err := NewRedisBroker(ctx, cache, logging.Discard())
	if err != nil {
		t.Fatalf("new broker: %v", err)
	}
	defer broker.Close()

	received := make(chan Event, 1)
	sub := broker.Subscribe(func(e Event) { received <- e })
	defer sub.Unsubscribe()

	if err := broker.Publish(ctx, Event{Kind: KindSignedOut, SessionID: "s1", UserID: "u1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case e := <-received:
		if e.Kind != KindSignedOut || e.SessionID != "s1" || e.UserID != "u1" {
			t.Fatalf("unexpected event %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("event not relayed")
	}
}
