package ledger

import "github.com/shopspring/decimal"

// SeedBalance is a test helper that sets an instrument balance directly when
// using the in-memory store.
func SeedBalance(s Store, instrumentID string, amount decimal.Decimal) {
	if mem, ok := s.(*inMemoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.balances[instrumentID] = amount
	}
}

// EntrySum is a test helper that recomputes an instrument balance from its
// entry log, for asserting the cache never diverges from the log.
func EntrySum(s Store, instrumentID string) decimal.Decimal {
	sum := decimal.Zero
	if mem, ok := s.(*inMemoryStore); ok {
		mem.mu.RLock()
		defer mem.mu.RUnlock()
		for _, e := range mem.entries[instrumentID] {
			sum = sum.Add(e.Amount)
		}
	}
	return sum
}
