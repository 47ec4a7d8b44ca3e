package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kwanza-pay/kwanza/internal/fault"
)

const keyPrefix = "session:v1:"

// RedisStore keeps sessions in Redis with the TTL acting as the sliding
// expiry window, so expired sessions disappear without a sweeper.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Issue(ctx context.Context, accountID string, method Method) (Session, error) {
	now := time.Now().UTC()
	sess := Session{
		Token:     newToken(),
		AccountID: accountID,
		Method:    method,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return Session{}, err
	}
	if err := s.client.Set(ctx, keyPrefix+sess.Token, payload, s.ttl).Err(); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *RedisStore) Validate(ctx context.Context, token string) (Session, error) {
	raw, err := s.client.Get(ctx, keyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return Session{}, fault.ErrSessionExpired
	}
	if err != nil {
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return Session{}, err
	}
	sess.Token = token
	return sess, nil
}

func (s *RedisStore) Touch(ctx context.Context, token string) error {
	key := keyPrefix + token
	raw, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return fault.ErrSessionExpired
	}
	if err != nil {
		return err
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return err
	}
	sess.ExpiresAt = time.Now().UTC().Add(s.ttl)
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, payload, s.ttl).Err()
}

func (s *RedisStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, keyPrefix+token).Err()
}
