package session

import (
	"context"
	"sync"
	"time"

	"github.com/kwanza-pay/kwanza/internal/fault"
)

type memoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]Session
	now      func() time.Time
}

// NewMemoryStore builds an in-memory session store for tests and dev mode.
// Expiry is enforced lazily on Validate and Touch.
func NewMemoryStore(ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &memoryStore{ttl: ttl, sessions: make(map[string]Session), now: time.Now}
}

func (s *memoryStore) Issue(_ context.Context, accountID string, method Method) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	sess := Session{
		Token:     newToken(),
		AccountID: accountID,
		Method:    method,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.sessions[sess.Token] = sess
	return sess, nil
}

func (s *memoryStore) Validate(_ context.Context, token string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return Session{}, fault.ErrSessionExpired
	}
	if !s.now().Before(sess.ExpiresAt) {
		delete(s.sessions, token)
		return Session{}, fault.ErrSessionExpired
	}
	return sess, nil
}

func (s *memoryStore) Touch(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok || !s.now().Before(sess.ExpiresAt) {
		delete(s.sessions, token)
		return fault.ErrSessionExpired
	}
	sess.ExpiresAt = s.now().UTC().Add(s.ttl)
	s.sessions[token] = sess
	return nil
}

func (s *memoryStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
