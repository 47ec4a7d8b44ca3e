package instrument

import (
	"context"
	"sort"
	"sync"

	"github.com/kwanza-pay/kwanza/internal/fault"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Instrument
}

// NewMemoryRepository constructs an in-memory repository for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Instrument)}
}

func (r *memoryRepository) Create(_ context.Context, inst Instrument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.storage {
		if existing.Number == inst.Number {
			return fault.Duplicate("instrument number", inst.Number)
		}
		if existing.OwnerID == inst.OwnerID &&
			existing.NormalizedName == inst.NormalizedName &&
			existing.Issuer == inst.Issuer {
			return fault.Duplicate("instrument", inst.Name)
		}
	}
	r.storage[inst.ID] = inst
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Instrument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.storage[id]
	if !ok {
		return Instrument{}, fault.NotFound("instrument", id)
	}
	return inst, nil
}

func (r *memoryRepository) FindByNumber(_ context.Context, number string) (Instrument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, inst := range r.storage {
		if inst.Number == number {
			return inst, nil
		}
	}
	return Instrument{}, fault.NotFound("instrument number", number)
}

func (r *memoryRepository) ListByOwner(_ context.Context, ownerID string) ([]Instrument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Instrument
	for _, inst := range r.storage {
		if inst.OwnerID == ownerID {
			out = append(out, inst)
		}
	}
	// Oldest first, matching the Postgres ORDER BY created_at; the number
	// breaks ties so the order is stable across calls.
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Number < out[j].Number
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
