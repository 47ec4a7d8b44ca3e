package account

import (
	"context"
	"sync"

	"github.com/kwanza-pay/kwanza/internal/fault"
)

type memoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewMemoryRepository builds an in-memory account store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{accounts: make(map[string]Account)}
}

func (r *memoryRepository) Create(_ context.Context, acc Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[acc.Name]; exists {
		return fault.Duplicate("account", acc.Name)
	}
	r.accounts[acc.Name] = acc
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, acc := range r.accounts {
		if acc.ID == id {
			return acc, nil
		}
	}
	return Account{}, fault.NotFound("account", id)
}

func (r *memoryRepository) FindByName(_ context.Context, name string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acc, ok := r.accounts[name]
	if !ok {
		return Account{}, fault.NotFound("account", name)
	}
	return acc, nil
}

func (r *memoryRepository) AddTemplate(_ context.Context, id string, embedding []float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, acc := range r.accounts {
		if acc.ID == id {
			acc.Templates = append(acc.Templates, embedding)
			r.accounts[name] = acc
			return nil
		}
	}
	return fault.NotFound("account", id)
}
