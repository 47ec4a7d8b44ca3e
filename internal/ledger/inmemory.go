package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kwanza-pay/kwanza/internal/fault"
)

type inMemoryStore struct {
	mu       sync.RWMutex
	balances map[string]decimal.Decimal
	entries  map[string][]Entry
}

// NewInMemory creates a concurrency-safe in-memory ledger. Production uses
// the Postgres store; this backend serves unit tests and dev mode. A single
// mutex serializes postings, which trivially satisfies the atomic
// check-and-update requirement.
func NewInMemory() Store {
	return &inMemoryStore{
		balances: make(map[string]decimal.Decimal),
		entries:  make(map[string][]Entry),
	}
}

func (s *inMemoryStore) EnsureInstrument(_ context.Context, instrumentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.balances[instrumentID]; !exists {
		s.balances[instrumentID] = decimal.Zero
	}
	return nil
}

func (s *inMemoryStore) Post(_ context.Context, instrumentID string, amount decimal.Decimal, typ EntryType, description, correlationID string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance, ok := s.balances[instrumentID]
	if !ok {
		return Entry{}, fault.NotFound("instrument", instrumentID)
	}

	next := balance.Add(amount)
	if next.IsNegative() {
		return Entry{}, &fault.InsufficientFundsError{
			Available: balance,
			Shortfall: amount.Neg().Sub(balance),
		}
	}

	entry := Entry{
		ID:            uuid.NewString(),
		InstrumentID:  instrumentID,
		Amount:        amount,
		Type:          typ,
		Description:   description,
		CorrelationID: correlationID,
		PostedAt:      time.Now().UTC(),
	}

	s.balances[instrumentID] = next
	s.entries[instrumentID] = append(s.entries[instrumentID], entry)
	return entry, nil
}

func (s *inMemoryStore) PostPair(_ context.Context, in PairInput) (PairResult, error) {
	if !in.Amount.IsPositive() {
		return PairResult{}, fault.Validation("amount must be greater than 0")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	srcBalance, ok := s.balances[in.SourceID]
	if !ok {
		return PairResult{}, fault.NotFound("instrument", in.SourceID)
	}
	dstBalance, ok := s.balances[in.DestID]
	if !ok {
		return PairResult{}, fault.NotFound("instrument", in.DestID)
	}

	if srcBalance.LessThan(in.Amount) {
		return PairResult{}, &fault.InsufficientFundsError{
			Available: srcBalance,
			Shortfall: in.Amount.Sub(srcBalance),
		}
	}

	now := time.Now().UTC()
	debit := Entry{
		ID:            uuid.NewString(),
		InstrumentID:  in.SourceID,
		Amount:        in.Amount.Neg(),
		Type:          EntryTransfer,
		Description:   in.Description,
		CorrelationID: in.CorrelationID,
		PostedAt:      now,
	}
	credit := Entry{
		ID:            uuid.NewString(),
		InstrumentID:  in.DestID,
		Amount:        in.Amount,
		Type:          EntryTransfer,
		Description:   in.Description,
		CorrelationID: in.CorrelationID,
		PostedAt:      now,
	}

	s.balances[in.SourceID] = srcBalance.Sub(in.Amount)
	s.balances[in.DestID] = dstBalance.Add(in.Amount)
	s.entries[in.SourceID] = append(s.entries[in.SourceID], debit)
	s.entries[in.DestID] = append(s.entries[in.DestID], credit)

	return PairResult{
		Debit:         debit,
		Credit:        credit,
		SourceBalance: s.balances[in.SourceID],
		DestBalance:   s.balances[in.DestID],
	}, nil
}

func (s *inMemoryStore) BalanceOf(_ context.Context, instrumentID string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	balance, ok := s.balances[instrumentID]
	if !ok {
		return decimal.Zero, fault.NotFound("instrument", instrumentID)
	}
	return balance, nil
}

func (s *inMemoryStore) History(_ context.Context, instrumentID string, f Filter) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.balances[instrumentID]; !ok {
		return nil, fault.NotFound("instrument", instrumentID)
	}

	var out []Entry
	for _, e := range s.entries[instrumentID] {
		if f.matches(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PostedAt.After(out[j].PostedAt)
	})
	return out, nil
}
