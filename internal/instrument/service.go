package instrument

import (
	"context"
	"crypto/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kwanza-pay/kwanza/internal/fault"
	"github.com/kwanza-pay/kwanza/internal/ledger"
)

const numberLength = 16

// Service exposes instrument operations backed by the ledger.
type Service struct {
	repo   Repository
	ledger ledger.Store
}

// NewService builds an instrument service instance.
func NewService(repo Repository, ledgerStore ledger.Store) *Service {
	return &Service{repo: repo, ledger: ledgerStore}
}

// CreateInput captures data required to create an instrument.
type CreateInput struct {
	OwnerID string
	Name    string
	Issuer  string
}

// Create provisions an instrument with a fresh globally unique number and
// registers it with the ledger.
func (s *Service) Create(ctx context.Context, input CreateInput) (Instrument, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Instrument{}, fault.Validation("instrument name is required")
	}
	if _, err := uuid.Parse(input.OwnerID); err != nil {
		return Instrument{}, fault.NotFound("account", input.OwnerID)
	}

	inst := Instrument{
		ID:             uuid.NewString(),
		OwnerID:        input.OwnerID,
		Name:           name,
		NormalizedName: Normalize(name),
		Issuer:         strings.TrimSpace(input.Issuer),
		Number:         newNumber(),
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, inst); err != nil {
		return Instrument{}, err
	}
	if err := s.ledger.EnsureInstrument(ctx, inst.ID); err != nil {
		return Instrument{}, err
	}

	return inst, nil
}

// Fund posts an initial-funding inflow entry against the instrument.
func (s *Service) Fund(ctx context.Context, id string, amount decimal.Decimal, description string) (ledger.Entry, error) {
	if !amount.IsPositive() {
		return ledger.Entry{}, fault.Validation("amount must be greater than 0")
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return ledger.Entry{}, err
	}
	if description == "" {
		description = "initial funding"
	}
	return s.ledger.Post(ctx, id, amount, ledger.EntryInflow, description, "")
}

// Get retrieves instrument metadata.
func (s *Service) Get(ctx context.Context, id string) (Instrument, error) {
	return s.repo.Get(ctx, id)
}

// Resolve looks up an instrument by its number. Unknown numbers are an
// error; no instrument is ever created implicitly.
func (s *Service) Resolve(ctx context.Context, number string) (Instrument, error) {
	return s.repo.FindByNumber(ctx, strings.TrimSpace(number))
}

// ListByOwner returns the owner's instruments.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Instrument, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// History returns the instrument's filtered entry log, newest first.
func (s *Service) History(ctx context.Context, id string, f ledger.Filter) ([]ledger.Entry, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.ledger.History(ctx, id, f)
}

// Balance returns the ledger balance for the instrument.
func (s *Service) Balance(ctx context.Context, id string) (Balance, error) {
	inst, err := s.repo.Get(ctx, id)
	if err != nil {
		return Balance{}, err
	}
	amount, err := s.ledger.BalanceOf(ctx, inst.ID)
	if err != nil {
		return Balance{}, err
	}
	return Balance{InstrumentID: inst.ID, Amount: amount.String(), AsOf: time.Now().UTC()}, nil
}

// Normalize lowercases and collapses inner whitespace so "My Card" and
// "my  card" collide on the uniqueness key.
func Normalize(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func newNumber() string {
	buf := make([]byte, numberLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure is unrecoverable for id generation
		panic(err)
	}
	digits := make([]byte, numberLength)
	for i, b := range buf {
		digits[i] = '0' + b%10
	}
	return string(digits)
}
