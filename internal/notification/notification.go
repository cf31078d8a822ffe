package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	// KindSignedIn is published when a portal session starts.
	KindSignedIn = "signed_in"
	// KindSignedOut is published when a portal session ends.
	KindSignedOut = "signed_out"
)

// Event describes a change of authentication state for one portal session.
type Event struct {
	Kind      string    `json:"kind"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	At        time.Time `json:"at"`
}

// Handler receives published events. Handlers run on the publisher's
// goroutine for the in-process broker and must not block.
type Handler func(Event)

// Subscription is returned by Subscribe.
type Subscription interface {
	Unsubscribe()
}

// Broker fans out session events to subscribers.
type Broker interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(handler Handler) Subscription
	Close() error
}

// MemoryBroker delivers events to subscribers of the same process.
type MemoryBroker struct {
	mu       sync.RWMutex
	next     int
	handlers map[int]Handler
}

// NewMemoryBroker builds an in-process broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{handlers: make(map[int]Handler)}
}

// Publish delivers the event to every current subscriber.
func (b *MemoryBroker) Publish(_ context.Context, event Event) error {
	b.dispatch(event)
	return nil
}

// Subscribe registers handler until the subscription is cancelled.
func (b *MemoryBroker) Subscribe(handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.handlers[id] = handler
	return &subscription{cancel: func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}}
}

// Close drops every subscriber.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	b.handlers = make(map[int]Handler)
	b.mu.Unlock()
	return nil
}

func (b *MemoryBroker) dispatch(event Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}

type subscription struct {
	once   sync.Once
	cancel func()
}

func (s *subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

// LoggerNotifier writes session events to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging subscriber.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Handle logs the event.
func (n *LoggerNotifier) Handle(event Event) {
	if n == nil || n.logger == nil {
		return
	}
	n.logger.Info("session event",
		slog.String("kind", event.Kind),
		slog.String("session_id", event.SessionID),
		slog.String("user_id", event.UserID),
	)
}
