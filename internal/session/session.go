// Package session tracks authenticated sessions with sliding expiration.
// Tokens are opaque random values holding no recoverable account
// information; the server-side record is the single source of truth.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"
)

// Method records which verification produced or extended a session.
type Method string

const (
	// MethodPassword marks a password verification.
	MethodPassword Method = "password"
	// MethodBiometric marks a face-match verification.
	MethodBiometric Method = "biometric"
)

// DefaultTTL is the sliding expiry window applied when none is configured.
const DefaultTTL = 7 * 24 * time.Hour

// Session is a time-bounded proof of prior primary authentication.
type Session struct {
	Token     string    `json:"-"`
	AccountID string    `json:"account_id"`
	Method    Method    `json:"method"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store issues and validates sessions. Validate deletes expired sessions
// rather than resurrecting them; Touch extends expiry by the sliding window
// from now.
type Store interface {
	Issue(ctx context.Context, accountID string, method Method) (Session, error)
	Validate(ctx context.Context, token string) (Session, error)
	Touch(ctx context.Context, token string) error
	Revoke(ctx context.Context, token string) error
}

const tokenBytes = 32

func newToken() string {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
