package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kwanza-pay/kwanza/internal/fault"
)

func newClockedStore(ttl time.Duration) (*memoryStore, *time.Time) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(ttl).(*memoryStore)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestMemoryStore_IssueAndValidate(t *testing.T) {
	s, _ := newClockedStore(time.Hour)
	ctx := context.Background()

	sess, err := s.Issue(ctx, "acc-1", MethodPassword)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if sess.Token == "" {
		t.Fatalf("expected opaque token")
	}
	if !sess.ExpiresAt.Equal(sess.IssuedAt.Add(time.Hour)) {
		t.Fatalf("unexpected expiry: %+v", sess)
	}

	got, err := s.Validate(ctx, sess.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got.AccountID != "acc-1" || got.Method != MethodPassword {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestMemoryStore_SlidingExpiry(t *testing.T) {
	s, now := newClockedStore(time.Hour)
	ctx := context.Background()

	sess, _ := s.Issue(ctx, "acc-1", MethodBiometric)

	// 40 minutes in: still valid, touch slides the window.
	*now = now.Add(40 * time.Minute)
	if err := s.Touch(ctx, sess.Token); err != nil {
		t.Fatalf("touch: %v", err)
	}

	// 40 more minutes: past the original expiry but inside the extended one.
	*now = now.Add(40 * time.Minute)
	if _, err := s.Validate(ctx, sess.Token); err != nil {
		t.Fatalf("validate after touch: %v", err)
	}

	// Without further touches the extended window runs out.
	*now = now.Add(2 * time.Hour)
	if _, err := s.Validate(ctx, sess.Token); !errors.Is(err, fault.ErrSessionExpired) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestMemoryStore_ValidateDeletesExpired(t *testing.T) {
	s, now := newClockedStore(time.Minute)
	ctx := context.Background()

	sess, _ := s.Issue(ctx, "acc-1", MethodPassword)
	*now = now.Add(2 * time.Minute)

	if _, err := s.Validate(ctx, sess.Token); !errors.Is(err, fault.ErrSessionExpired) {
		t.Fatalf("expected expiry, got %v", err)
	}
	// An expired session cannot be resurrected by a later touch.
	if err := s.Touch(ctx, sess.Token); !errors.Is(err, fault.ErrSessionExpired) {
		t.Fatalf("expected expiry on touch, got %v", err)
	}
	if _, ok := s.sessions[sess.Token]; ok {
		t.Fatalf("expired session still stored")
	}
}

func TestMemoryStore_Revoke(t *testing.T) {
	s, _ := newClockedStore(time.Hour)
	ctx := context.Background()

	sess, _ := s.Issue(ctx, "acc-1", MethodPassword)
	if err := s.Revoke(ctx, sess.Token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := s.Validate(ctx, sess.Token); !errors.Is(err, fault.ErrSessionExpired) {
		t.Fatalf("expected expiry after revoke, got %v", err)
	}
}

func TestMemoryStore_UnknownToken(t *testing.T) {
	s, _ := newClockedStore(time.Hour)
	if _, err := s.Validate(context.Background(), "nope"); !errors.Is(err, fault.ErrSessionExpired) {
		t.Fatalf("expected expiry for unknown token, got %v", err)
	}
}
