package transfer

import (
	"time"

	"github.com/shopspring/decimal"
)

// State tags a pending transfer's position in its lifecycle. Transitions
// only move forward; Committed and Cancelled are terminal.
type State string

const (
	StateStaged               State = "STAGED"
	StateAwaitingVerification State = "AWAITING_VERIFICATION"
	StateVerified             State = "VERIFIED"
	StateCommitted            State = "COMMITTED"
	StateCancelled            State = "CANCELLED"
)

// Method selects the step-up verification modality.
type Method string

const (
	MethodPassword  Method = "PASSWORD"
	MethodBiometric Method = "BIOMETRIC"
)

// PendingTransfer is the ephemeral staging record for one transfer awaiting
// verification. It lives only for the confirmation round-trip and is never
// persisted to the ledger.
type PendingTransfer struct {
	ID               string
	SourceID         string
	DestID           string
	DestNumber       string
	OwnerID          string
	Amount           decimal.Decimal
	CounterpartyName string
	State            State
	Method           Method
	CreatedAt        time.Time
}

// terminal reports whether the state admits no further transitions.
func (s State) terminal() bool {
	return s == StateCommitted || s == StateCancelled
}
