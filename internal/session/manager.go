package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/schemes-portal/schemes_portal/internal/identity"
	"github.com/schemes-portal/schemes_portal/internal/notification"
)

// SignOuter revokes credentials at the authenticator.
type SignOuter interface {
	SignOut(ctx context.Context, accessToken string) error
}

// Manager owns portal sessions and publishes their state changes.
type Manager struct {
	store  Store
	signer *Signer
	broker notification.Broker
	auth   SignOuter
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewManager wires the session store, token signer and event broker.
func NewManager(store Store, signer *Signer, broker notification.Broker, auth SignOuter, ttl time.Duration, logger *slog.Logger) *Manager {
	return &Manager{
		store:  store,
		signer: signer,
		broker: broker,
		auth:   auth,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// GetSession returns the session behind token, or nil when there is none.
func (m *Manager) GetSession(ctx context.Context, token string) *Session {
	if token == "" {
		return nil
	}
	id, err := m.signer.Parse(token)
	if err != nil {
		return nil
	}
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.logger.Error("session lookup failed", slog.String("session_id", id), slog.Any("error", err))
		}
		return nil
	}
	return &sess
}

// Start records a session for user and returns the cookie token.
func (m *Manager) Start(ctx context.Context, user identity.User, tokens identity.Tokens) (string, *Session, error) {
	now := m.now().UTC()
	expires := now.Add(m.ttl)
	if !tokens.ExpiresAt.IsZero() && tokens.ExpiresAt.Before(expires) {
		expires = tokens.ExpiresAt
	}
	sess := Session{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		Email:        user.Email,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		CreatedAt:    now,
		ExpiresAt:    expires,
	}
	if err := m.store.Save(ctx, sess, m.ttl); err != nil {
		return "", nil, err
	}
	token, err := m.signer.Sign(sess.ID, user.ID)
	if err != nil {
		return "", nil, err
	}

	m.publish(ctx, notification.Event{
		Kind:      notification.KindSignedIn,
		SessionID: sess.ID,
		UserID:    user.ID,
		Email:     user.Email,
		At:        now,
	})
	return token, &sess, nil
}

// SignOut revokes the session behind token. The authenticator is asked to
// revoke its credentials first; its failure is logged and does not keep
// the portal session alive.
func (m *Manager) SignOut(ctx context.Context, token string) error {
	sess := m.GetSession(ctx, token)
	if sess == nil {
		return ErrNotFound
	}
	if m.auth != nil && sess.AccessToken != "" {
		if err := m.auth.SignOut(ctx, sess.AccessToken); err != nil {
			m.logger.Warn("remote sign out failed", slog.String("session_id", sess.ID), slog.Any("error", err))
		}
	}
	if err := m.store.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}

	m.publish(ctx, notification.Event{
		Kind:      notification.KindSignedOut,
		SessionID: sess.ID,
		UserID:    sess.UserID,
		At:        m.now().UTC(),
	})
	return nil
}

// OnAuthStateChange registers listener for sign-in and sign-out events.
func (m *Manager) OnAuthStateChange(listener notification.Handler) notification.Subscription {
	return m.broker.Subscribe(listener)
}

func (m *Manager) publish(ctx context.Context, event notification.Event) {
	if err := m.broker.Publish(ctx, event); err != nil {
		m.logger.Error("publish session event failed",
			slog.String("kind", event.Kind),
			slog.String("session_id", event.SessionID),
			slog.Any("error", err),
		)
	}
}
