package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPState is what the server remembers about one signup form.
type OTPState struct {
	Aadhaar  string
	Sent     bool
	Attempts int
}

// OTPStore keeps OTP progress per form. Each form has one attempt counter
// bound to the Aadhaar number it was last used with; a different number
// starts the count again from zero.
type OTPStore interface {
	Load(ctx context.Context, formID string) (OTPState, error)
	// Reserve claims one send attempt for aadhaar. When max attempts are
	// already used it returns the current state and ErrMaxOTPAttempts.
	Reserve(ctx context.Context, formID, aadhaar string, max int) (OTPState, error)
	// Release gives back an attempt claimed by Reserve whose send failed.
	Release(ctx context.Context, formID, aadhaar string) error
	// MarkSent shows the OTP step for aadhaar.
	MarkSent(ctx context.Context, formID, aadhaar string) error
	// Reset hides the OTP step and keeps the attempt count.
	Reset(ctx context.Context, formID string) error
}

const (
	otpFormPrefix     = "otp:form:"
	otpAttemptsPrefix = "otp:attempts:"
)

// KEYS: form hash, attempts counter. ARGV: aadhaar, max, ttl in ms.
// Returns {attempts, sent, reserved}.
var reserveScript = redis.NewScript(`
local stored = redis.call('HGET', KEYS[1], 'aadhaar')
if stored ~= ARGV[1] then
  redis.call('DEL', KEYS[2])
  redis.call('HSET', KEYS[1], 'aadhaar', ARGV[1], 'sent', '0')
end
local sent = 0
if redis.call('HGET', KEYS[1], 'sent') == '1' then sent = 1 end
local n = tonumber(redis.call('GET', KEYS[2]) or '0')
local reserved = 0
if n < tonumber(ARGV[2]) then
  n = redis.call('INCR', KEYS[2])
  reserved = 1
end
redis.call('PEXPIRE', KEYS[1], ARGV[3])
redis.call('PEXPIRE', KEYS[2], ARGV[3])
return {n, sent, reserved}
`)

var releaseScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'aadhaar') ~= ARGV[1] then return 0 end
local n = tonumber(redis.call('GET', KEYS[2]) or '0')
if n > 0 then redis.call('DECR', KEYS[2]) end
return 1
`)

var markSentScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'aadhaar') ~= ARGV[1] then return 0 end
redis.call('HSET', KEYS[1], 'sent', '1')
return 1
`)

// RedisOTPStore persists OTP progress in Redis with a TTL per form.
type RedisOTPStore struct {
	cache *redis.Client
	ttl   time.Duration
}

// NewRedisOTPStore builds a Redis-backed OTP store.
func NewRedisOTPStore(cache *redis.Client, ttl time.Duration) *RedisOTPStore {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisOTPStore{cache: cache, ttl: ttl}
}

func otpKeys(formID string) []string {
	return []string{otpFormPrefix + formID, otpAttemptsPrefix + formID}
}

func (s *RedisOTPStore) Load(ctx context.Context, formID string) (OTPState, error) {
	keys := otpKeys(formID)
	pipe := s.cache.Pipeline()
	fields := pipe.HGetAll(ctx, keys[0])
	count := pipe.Get(ctx, keys[1])
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return OTPState{}, fmt.Errorf("load otp form: %w", err)
	}
	state := OTPState{Aadhaar: fields.Val()["aadhaar"], Sent: fields.Val()["sent"] == "1"}
	attempts, err := count.Int()
	if err != nil && err != redis.Nil {
		return OTPState{}, fmt.Errorf("load otp attempts: %w", err)
	}
	state.Attempts = attempts
	return state, nil
}

func (s *RedisOTPStore) Reserve(ctx context.Context, formID, aadhaar string, max int) (OTPState, error) {
	res, err := reserveScript.Run(ctx, s.cache, otpKeys(formID), aadhaar, max, s.ttl.Milliseconds()).Int64Slice()
	if err != nil {
		return OTPState{}, fmt.Errorf("reserve otp attempt: %w", err)
	}
	if len(res) != 3 {
		return OTPState{}, fmt.Errorf("reserve otp attempt: unexpected reply %v", res)
	}
	state := OTPState{Aadhaar: aadhaar, Attempts: int(res[0]), Sent: res[1] == 1}
	if res[2] == 0 {
		return state, ErrMaxOTPAttempts
	}
	return state, nil
}

func (s *RedisOTPStore) Release(ctx context.Context, formID, aadhaar string) error {
	if err := releaseScript.Run(ctx, s.cache, otpKeys(formID), aadhaar).Err(); err != nil {
		return fmt.Errorf("release otp attempt: %w", err)
	}
	return nil
}

func (s *RedisOTPStore) MarkSent(ctx context.Context, formID, aadhaar string) error {
	if err := markSentScript.Run(ctx, s.cache, otpKeys(formID), aadhaar).Err(); err != nil {
		return fmt.Errorf("store otp form: %w", err)
	}
	return nil
}

func (s *RedisOTPStore) Reset(ctx context.Context, formID string) error {
	if err := s.cache.HSet(ctx, otpFormPrefix+formID, "sent", "0").Err(); err != nil {
		return fmt.Errorf("reset otp form: %w", err)
	}
	return nil
}

type memoryOTPForm struct {
	state     OTPState
	expiresAt time.Time
}

type memoryOTPStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	forms map[string]memoryOTPForm
	now   func() time.Time
}

// NewMemoryOTPStore builds an in-process OTP store. Forms untouched for
// ttl are forgotten; a non-positive ttl keeps them forever.
func NewMemoryOTPStore(ttl time.Duration) OTPStore {
	return &memoryOTPStore{ttl: ttl, forms: make(map[string]memoryOTPForm), now: time.Now}
}

// get returns the live form, dropping expired entries. Caller holds mu.
func (s *memoryOTPStore) get(formID string) OTPState {
	now := s.now()
	for id, f := range s.forms {
		if !f.expiresAt.IsZero() && now.After(f.expiresAt) {
			delete(s.forms, id)
		}
	}
	return s.forms[formID].state
}

// put stores state and refreshes its expiry. Caller holds mu.
func (s *memoryOTPStore) put(formID string, state OTPState) {
	f := memoryOTPForm{state: state}
	if s.ttl > 0 {
		f.expiresAt = s.now().Add(s.ttl)
	}
	s.forms[formID] = f
}

func (s *memoryOTPStore) Load(_ context.Context, formID string) (OTPState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(formID), nil
}

func (s *memoryOTPStore) Reserve(_ context.Context, formID, aadhaar string, max int) (OTPState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.get(formID)
	if state.Aadhaar != aadhaar {
		state = OTPState{Aadhaar: aadhaar}
	}
	if state.Attempts >= max {
		s.put(formID, state)
		return state, ErrMaxOTPAttempts
	}
	state.Attempts++
	s.put(formID, state)
	return state, nil
}

func (s *memoryOTPStore) Release(_ context.Context, formID, aadhaar string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[formID]
	if !ok || f.state.Aadhaar != aadhaar || f.state.Attempts == 0 {
		return nil
	}
	f.state.Attempts--
	s.forms[formID] = f
	return nil
}

func (s *memoryOTPStore) MarkSent(_ context.Context, formID, aadhaar string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.get(formID)
	if state.Aadhaar != aadhaar {
		return nil
	}
	state.Sent = true
	s.put(formID, state)
	return nil
}

func (s *memoryOTPStore) Reset(_ context.Context, formID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.forms[formID]
	if !ok {
		return nil
	}
	state.state.Sent = false
	s.forms[formID] = state
	return nil
}
