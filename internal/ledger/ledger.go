package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType tags the direction or kind of a ledger entry.
type EntryType string

const (
	// EntryInflow is money entering an instrument from outside the system
	// (initial funding, top-ups).
	EntryInflow EntryType = "inflow"
	// EntryOutflow is money leaving an instrument to outside the system.
	EntryOutflow EntryType = "outflow"
	// EntryTransfer is one leg of an instrument-to-instrument transfer.
	EntryTransfer EntryType = "transfer"
)

// Entry is one immutable, signed balance movement against an instrument.
// Entries are never mutated or deleted after posting.
type Entry struct {
	ID            string
	InstrumentID  string
	Amount        decimal.Decimal
	Type          EntryType
	Description   string
	CorrelationID string
	PostedAt      time.Time
}

// Filter narrows a history query. Zero times mean unbounded; an empty type
// matches all entry types.
type Filter struct {
	From time.Time
	To   time.Time
	Type EntryType
}

// PairInput describes the two legs of one transfer posted atomically.
type PairInput struct {
	SourceID      string
	DestID        string
	Amount        decimal.Decimal
	Description   string
	CorrelationID string
}

// PairResult is the outcome of a two-leg posting.
type PairResult struct {
	Debit         Entry
	Credit        Entry
	SourceBalance decimal.Decimal
	DestBalance   decimal.Decimal
}

// Store is the append-only ledger backing instrument balances. Post and
// PostPair are the only balance mutators in the system; each appends its
// entries and updates the cached balances as one atomic unit, so a reader
// never observes an entry without its balance effect or vice versa.
type Store interface {
	// EnsureInstrument prepares ledger bookkeeping for an instrument.
	EnsureInstrument(ctx context.Context, instrumentID string) error

	// Post appends a single signed entry. Amount may be negative for
	// outflows; the instrument balance must stay non-negative.
	Post(ctx context.Context, instrumentID string, amount decimal.Decimal, typ EntryType, description, correlationID string) (Entry, error)

	// PostPair appends a debit on the source and a credit on the destination
	// sharing one correlation id and timestamp. The source balance check and
	// update are inseparable: two concurrent pairs from an under-funded
	// source can never both succeed.
	PostPair(ctx context.Context, in PairInput) (PairResult, error)

	// BalanceOf returns the cached balance, read-after-write consistent with
	// the postings above.
	BalanceOf(ctx context.Context, instrumentID string) (decimal.Decimal, error)

	// History returns entries newest-first, filtered.
	History(ctx context.Context, instrumentID string, f Filter) ([]Entry, error)
}

// matches reports whether the entry passes the filter.
func (f Filter) matches(e Entry) bool {
	if !f.From.IsZero() && e.PostedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.PostedAt.After(f.To) {
		return false
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	return true
}
