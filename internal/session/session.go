package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the browser cookie carrying the signed session token.
	CookieName = "portal_session"
	// LocalsKey is the fiber.Ctx locals key holding the current *Session.
	LocalsKey = "session"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Session is the server-side record behind a portal cookie.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Store persists sessions.
type Store interface {
	Save(ctx context.Context, s Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

const sessionPrefix = "session:v1:"

// RedisStore keeps sessions as JSON values with a TTL.
type RedisStore struct {
	cache *redis.Client
}

// NewRedisStore builds a Redis-backed session store.
func NewRedisStore(cache *redis.Client) *RedisStore {
	return &RedisStore{cache: cache}
}

func (s *RedisStore) Save(ctx context.Context, sess Session, ttl time.Duration) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.cache.Set(ctx, sessionPrefix+sess.ID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	raw, err := s.cache.Get(ctx, sessionPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.cache.Del(ctx, sessionPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

type memoryEntry struct {
	session Session
	expires time.Time
}

type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

// NewMemoryStore builds an in-process session store.
func NewMemoryStore() Store {
	return &memoryStore{sessions: make(map[string]memoryEntry), now: time.Now}
}

func (s *memoryStore) Save(_ context.Context, sess Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = memoryEntry{session: sess, expires: s.now().Add(ttl)}
	return nil
}

func (s *memoryStore) Get(_ context.Context, id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	if !s.now().Before(entry.expires) {
		delete(s.sessions, id)
		return Session{}, ErrNotFound
	}
	return entry.session, nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
