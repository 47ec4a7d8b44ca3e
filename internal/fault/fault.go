// Package fault defines the error taxonomy shared by the core services.
// Handlers map these kinds to HTTP statuses; services never wrap one kind
// inside another.
package fault

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound indicates an unknown account, instrument or pending transfer.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")

	// ErrSelfTransfer indicates source and destination resolve to the same instrument.
	ErrSelfTransfer = errors.New("source and destination are the same instrument")

	// ErrAuthentication indicates a failed password check.
	ErrAuthentication = errors.New("authentication failed")

	// ErrSessionExpired indicates the session no longer exists or has passed its expiry.
	ErrSessionExpired = errors.New("session expired")

	// ErrStaleState indicates an operation against a pending transfer in a
	// terminal or otherwise wrong state.
	ErrStaleState = errors.New("stale transfer state")

	// ErrDuplicate indicates a uniqueness collision at creation time.
	ErrDuplicate = errors.New("duplicate record")
)

// NotFound wraps ErrNotFound with the entity kind and identifier.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

// Validation wraps ErrValidation with a human-readable reason.
func Validation(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrValidation)
}

// Duplicate wraps ErrDuplicate with the entity kind and colliding key.
func Duplicate(kind, key string) error {
	return fmt.Errorf("%s %q: %w", kind, key, ErrDuplicate)
}

// InsufficientFundsError reports a balance shortfall. Available and
// Shortfall travel with the error so the caller can suggest a lower amount.
type InsufficientFundsError struct {
	Available decimal.Decimal
	Shortfall decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: available %s, short %s", e.Available, e.Shortfall)
}

// IsInsufficientFunds reports whether err is an InsufficientFundsError.
func IsInsufficientFunds(err error) bool {
	var target *InsufficientFundsError
	return errors.As(err, &target)
}

// BiometricMismatchError reports a failed face match with the scores of the
// best candidate template, for diagnostics only.
type BiometricMismatchError struct {
	Similarity float64
	Distance   float64
}

func (e *BiometricMismatchError) Error() string {
	return fmt.Sprintf("biometric mismatch: similarity %.4f, distance %.4f", e.Similarity, e.Distance)
}
