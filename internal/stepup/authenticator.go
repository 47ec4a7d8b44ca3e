// Package stepup gates a pending transfer behind one successful
// verification: a password re-entry checked against the owning account's
// secret, or a biometric face match. The two methods are alternatives, not
// additive factors.
package stepup

import (
	"context"
	"errors"
	"fmt"

	"github.com/kwanza-pay/kwanza/internal/account"
	"github.com/kwanza-pay/kwanza/internal/biometric"
	"github.com/kwanza-pay/kwanza/internal/fault"
	"github.com/kwanza-pay/kwanza/internal/transfer"
)

// ErrBiometricLocked is returned once the biometric attempt cap is reached;
// the caller must fall back to the password method.
var ErrBiometricLocked = errors.New("biometric attempts exhausted, use password verification")

// DefaultMaxAttempts caps biometric attempts per pending transfer.
const DefaultMaxAttempts = 3

// Authenticator drives the verification step of the transfer state machine.
type Authenticator struct {
	engine      *transfer.Engine
	accounts    account.Repository
	matcher     biometric.Matcher
	attempts    AttemptStore
	maxAttempts int
}

// NewAuthenticator wires the step-up authenticator.
func NewAuthenticator(engine *transfer.Engine, accounts account.Repository, matcher biometric.Matcher, attempts AttemptStore, maxAttempts int) *Authenticator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Authenticator{
		engine:      engine,
		accounts:    accounts,
		matcher:     matcher,
		attempts:    attempts,
		maxAttempts: maxAttempts,
	}
}

// RequestVerification selects the verification method for a staged transfer.
func (a *Authenticator) RequestVerification(id string, method transfer.Method) (transfer.PendingTransfer, error) {
	return a.engine.RequestVerification(id, method)
}

// VerifyPassword compares the plaintext against the owning account's stored
// secret using the same one-way comparison used at login. On a mismatch the
// transfer stays awaiting verification and the caller may retry or switch
// method.
func (a *Authenticator) VerifyPassword(ctx context.Context, id, plaintext string) (bool, error) {
	pt, err := a.engine.Get(id)
	if err != nil {
		return false, err
	}
	if pt.State != transfer.StateAwaitingVerification {
		return false, fmt.Errorf("verify in state %s: %w", pt.State, fault.ErrStaleState)
	}

	acc, err := a.accounts.FindByID(ctx, pt.OwnerID)
	if err != nil {
		return false, err
	}
	if err := account.VerifySecret(acc.PasswordHash, plaintext); err != nil {
		return false, err
	}

	if _, err := a.engine.MarkVerified(id); err != nil {
		return false, err
	}
	_ = a.attempts.Reset(ctx, id)
	return true, nil
}

// VerifyBiometric matches the presented embedding against the owning
// account's enrolled templates. Attempts are counted server-side; after the
// cap only the password path remains. A mismatch carries the computed
// similarity and distance for diagnostics.
func (a *Authenticator) VerifyBiometric(ctx context.Context, id string, embedding []float64) (bool, error) {
	pt, err := a.engine.Get(id)
	if err != nil {
		return false, err
	}
	if pt.State != transfer.StateAwaitingVerification {
		return false, fmt.Errorf("verify in state %s: %w", pt.State, fault.ErrStaleState)
	}
	if len(embedding) == 0 {
		return false, fault.Validation("embedding must not be empty")
	}

	acc, err := a.accounts.FindByID(ctx, pt.OwnerID)
	if err != nil {
		return false, err
	}
	if len(acc.Templates) == 0 {
		return false, fault.Validation("account has no enrolled biometric templates")
	}

	// Only real match attempts count toward the cap; validation failures
	// above never consume it.
	count, err := a.attempts.Increment(ctx, id)
	if err != nil {
		return false, err
	}
	if count > int64(a.maxAttempts) {
		return false, ErrBiometricLocked
	}

	res := a.matcher.Match(embedding, acc.Templates)
	if !res.IsMatch {
		return false, &fault.BiometricMismatchError{Similarity: res.Similarity, Distance: res.Distance}
	}

	if _, err := a.engine.MarkVerified(id); err != nil {
		return false, err
	}
	_ = a.attempts.Reset(ctx, id)
	return true, nil
}
