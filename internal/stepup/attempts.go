package stepup

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptStore counts failed biometric attempts per pending transfer. The
// count is server-side state; a client-side counter is advisory only.
type AttemptStore interface {
	// Increment bumps and returns the attempt count, starting the expiry
	// window on the first attempt.
	Increment(ctx context.Context, key string) (int64, error)
	// Reset clears the counter.
	Reset(ctx context.Context, key string) error
}

const attemptPrefix = "stepup:attempts:v1:"

// RedisAttemptStore counts attempts in Redis with a rolling window.
type RedisAttemptStore struct {
	client *redis.Client
	window time.Duration
}

// NewRedisAttemptStore builds a Redis-backed attempt counter.
func NewRedisAttemptStore(client *redis.Client, window time.Duration) *RedisAttemptStore {
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &RedisAttemptStore{client: client, window: window}
}

func (s *RedisAttemptStore) Increment(ctx context.Context, key string) (int64, error) {
	full := attemptPrefix + key
	cnt, err := s.client.Incr(ctx, full).Result()
	if err != nil {
		return 0, err
	}
	if cnt == 1 {
		s.client.Expire(ctx, full, s.window)
	}
	return cnt, nil
}

func (s *RedisAttemptStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, attemptPrefix+key).Err()
}

type memoryAttemptStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

// NewMemoryAttemptStore builds an in-memory attempt counter for tests. It
// does not expire entries; pending transfers are short-lived anyway.
func NewMemoryAttemptStore() AttemptStore {
	return &memoryAttemptStore{counts: make(map[string]int64)}
}

func (s *memoryAttemptStore) Increment(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[key]++
	return s.counts[key], nil
}

func (s *memoryAttemptStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counts, key)
	return nil
}
