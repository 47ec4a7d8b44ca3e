package session

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/kwanza-pay/kwanza/internal/fault"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, ttl), mr
}

func TestRedisStore_IssueAndValidate(t *testing.T) {
	s, _ := newRedisStore(t, time.Hour)
	ctx := context.Background()

	sess, err := s.Issue(ctx, "acc-1", MethodBiometric)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	got, err := s.Validate(ctx, sess.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got.AccountID != "acc-1" || got.Method != MethodBiometric || got.Token != sess.Token {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	s, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	sess, _ := s.Issue(ctx, "acc-1", MethodPassword)

	mr.FastForward(2 * time.Minute)
	if _, err := s.Validate(ctx, sess.Token); !errors.Is(err, fault.ErrSessionExpired) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestRedisStore_TouchSlidesTTL(t *testing.T) {
	s, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	sess, _ := s.Issue(ctx, "acc-1", MethodPassword)

	mr.FastForward(40 * time.Second)
	if err := s.Touch(ctx, sess.Token); err != nil {
		t.Fatalf("touch: %v", err)
	}

	// Past the original TTL but inside the refreshed one.
	mr.FastForward(40 * time.Second)
	if _, err := s.Validate(ctx, sess.Token); err != nil {
		t.Fatalf("validate after touch: %v", err)
	}

	mr.FastForward(2 * time.Minute)
	if err := s.Touch(ctx, sess.Token); !errors.Is(err, fault.ErrSessionExpired) {
		t.Fatalf("expected expiry on touch, got %v", err)
	}
}

func TestRedisStore_Revoke(t *testing.T) {
	s, _ := newRedisStore(t, time.Hour)
	ctx := context.Background()

	sess, _ := s.Issue(ctx, "acc-1", MethodPassword)
	if err := s.Revoke(ctx, sess.Token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := s.Validate(ctx, sess.Token); !errors.Is(err, fault.ErrSessionExpired) {
		t.Fatalf("expected expiry after revoke, got %v", err)
	}
}
