package web

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/schemes-portal/schemes_portal/internal/notification"
	"github.com/schemes-portal/schemes_portal/internal/session"
)

// Sessions is the part of the session manager the shell depends on.
type Sessions interface {
	GetSession(ctx context.Context, token string) *session.Session
	OnAuthStateChange(listener notification.Handler) notification.Subscription
}

// Shell decides whether a portal session is shown signed in. It resolves
// sessions from the store and follows sign-out events, so a session signed
// out on any instance stops rendering the dashboard even while a store
// replica still returns it. Sign-outs are remembered for the session TTL.
type Shell struct {
	sessions Sessions
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.Mutex
	signedOut map[string]time.Time
	sub       notification.Subscription
}

// NewShell builds a shell over the session manager.
func NewShell(sessions Sessions, ttl time.Duration, logger *slog.Logger) *Shell {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Shell{
		sessions:  sessions,
		ttl:       ttl,
		logger:    logger,
		now:       time.Now,
		signedOut: make(map[string]time.Time),
	}
}

// Start subscribes to auth-state changes.
func (s *Shell) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub != nil {
		return
	}
	s.sub = s.sessions.OnAuthStateChange(s.onAuthStateChange)
}

// Close cancels the subscription.
func (s *Shell) Close() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

func (s *Shell) onAuthStateChange(e notification.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.prune(now)
	switch e.Kind {
	case notification.KindSignedIn:
		delete(s.signedOut, e.SessionID)
	case notification.KindSignedOut:
		s.signedOut[e.SessionID] = now.Add(s.ttl)
		s.logger.Debug("session signed out", slog.String("session_id", e.SessionID))
	}
}

// prune drops sign-outs older than the session TTL. Caller holds mu.
func (s *Shell) prune(now time.Time) {
	for id, until := range s.signedOut {
		if now.After(until) {
			delete(s.signedOut, id)
		}
	}
}

// Current resolves the session behind the cookie token, or nil when the
// visitor is signed out.
func (s *Shell) Current(ctx context.Context, token string) *session.Session {
	sess := s.sessions.GetSession(ctx, token)
	if sess == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if until, ok := s.signedOut[sess.ID]; ok && !s.now().After(until) {
		return nil
	}
	return sess
}
