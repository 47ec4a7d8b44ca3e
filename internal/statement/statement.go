// Package statement is a read-only collaborator over the ledger: it renders
// period summaries from history and never writes anything.
package statement

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kwanza-pay/kwanza/internal/ledger"
)

// Statement summarizes an instrument's activity over a filtered period.
// ClosingBalance is the balance as of now; OpeningBalance is derived by
// backing the filtered movements out of it, so a type-filtered statement is
// a partial view, not a reconciliation.
type Statement struct {
	InstrumentID   string
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
	TotalIn        decimal.Decimal
	TotalOut       decimal.Decimal
	Entries        []ledger.Entry
	GeneratedAt    time.Time
}

// Service builds statements from ledger history.
type Service struct {
	ledger ledger.Store
}

// NewService constructs a statement service.
func NewService(ledgerStore ledger.Store) *Service {
	return &Service{ledger: ledgerStore}
}

// Build assembles a statement for the instrument under the given filter.
func (s *Service) Build(ctx context.Context, instrumentID string, f ledger.Filter) (Statement, error) {
	closing, err := s.ledger.BalanceOf(ctx, instrumentID)
	if err != nil {
		return Statement{}, err
	}
	entries, err := s.ledger.History(ctx, instrumentID, f)
	if err != nil {
		return Statement{}, err
	}

	var moved, in, out decimal.Decimal
	for _, e := range entries {
		moved = moved.Add(e.Amount)
		if e.Amount.IsPositive() {
			in = in.Add(e.Amount)
		} else {
			out = out.Add(e.Amount.Neg())
		}
	}

	return Statement{
		InstrumentID:   instrumentID,
		OpeningBalance: closing.Sub(moved),
		ClosingBalance: closing,
		TotalIn:        in,
		TotalOut:       out,
		Entries:        entries,
		GeneratedAt:    time.Now().UTC(),
	}, nil
}
