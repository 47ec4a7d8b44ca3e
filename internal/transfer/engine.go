package transfer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kwanza-pay/kwanza/internal/fault"
	"github.com/kwanza-pay/kwanza/internal/instrument"
	"github.com/kwanza-pay/kwanza/internal/ledger"
	"github.com/kwanza-pay/kwanza/internal/notification"
)

// CommitResult carries the two posted legs and the source's new balance.
type CommitResult struct {
	SourceEntry      ledger.Entry
	DestEntry        ledger.Entry
	NewSourceBalance decimal.Decimal
}

// Engine validates and atomically executes two-legged balance movements.
// Pending transfers are held in process memory; the engine mutex serializes
// state transitions, and the ledger's own atomic section guards balances,
// so two concurrent commits from an under-funded source can never both land.
type Engine struct {
	mu          sync.Mutex
	pending     map[string]*PendingTransfer
	ledger      ledger.Store
	instruments *instrument.Service
	notifier    notification.Notifier
}

// NewEngine constructs a transfer engine.
func NewEngine(ledgerStore ledger.Store, instruments *instrument.Service, notifier notification.Notifier) *Engine {
	return &Engine{
		pending:     make(map[string]*PendingTransfer),
		ledger:      ledgerStore,
		instruments: instruments,
		notifier:    notifier,
	}
}

// Stage validates a requested transfer and records it as STAGED. No ledger
// mutation happens here; balances may still move before commit.
func (e *Engine) Stage(ctx context.Context, sourceID, destNumber string, amount decimal.Decimal, counterpartyName string) (PendingTransfer, error) {
	if !amount.IsPositive() {
		return PendingTransfer{}, fault.Validation("amount must be greater than 0")
	}

	dest, err := e.instruments.Resolve(ctx, destNumber)
	if err != nil {
		return PendingTransfer{}, err
	}
	source, err := e.instruments.Get(ctx, sourceID)
	if err != nil {
		return PendingTransfer{}, err
	}
	if source.ID == dest.ID {
		return PendingTransfer{}, fault.ErrSelfTransfer
	}

	balance, err := e.ledger.BalanceOf(ctx, source.ID)
	if err != nil {
		return PendingTransfer{}, err
	}
	if balance.LessThan(amount) {
		return PendingTransfer{}, &fault.InsufficientFundsError{
			Available: balance,
			Shortfall: amount.Sub(balance),
		}
	}

	pt := &PendingTransfer{
		ID:               uuid.NewString(),
		SourceID:         source.ID,
		DestID:           dest.ID,
		DestNumber:       dest.Number,
		OwnerID:          source.OwnerID,
		Amount:           amount,
		CounterpartyName: counterpartyName,
		State:            StateStaged,
		CreatedAt:        time.Now().UTC(),
	}

	e.mu.Lock()
	e.pending[pt.ID] = pt
	e.mu.Unlock()

	return *pt, nil
}

// Get returns a snapshot of the pending transfer.
func (e *Engine) Get(id string) (PendingTransfer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pt, ok := e.pending[id]
	if !ok {
		return PendingTransfer{}, fault.NotFound("pending transfer", id)
	}
	return *pt, nil
}

// RequestVerification moves STAGED to AWAITING_VERIFICATION and records the
// chosen method. Re-requesting while already awaiting switches the method.
func (e *Engine) RequestVerification(id string, method Method) (PendingTransfer, error) {
	if method != MethodPassword && method != MethodBiometric {
		return PendingTransfer{}, fault.Validation("unknown verification method")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	pt, ok := e.pending[id]
	if !ok {
		return PendingTransfer{}, fault.NotFound("pending transfer", id)
	}
	if pt.State != StateStaged && pt.State != StateAwaitingVerification {
		return PendingTransfer{}, fmt.Errorf("request verification in state %s: %w", pt.State, fault.ErrStaleState)
	}
	pt.State = StateAwaitingVerification
	pt.Method = method
	return *pt, nil
}

// MarkVerified moves AWAITING_VERIFICATION to VERIFIED. Called by the
// step-up authenticator after exactly one successful check.
func (e *Engine) MarkVerified(id string) (PendingTransfer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pt, ok := e.pending[id]
	if !ok {
		return PendingTransfer{}, fault.NotFound("pending transfer", id)
	}
	if pt.State != StateAwaitingVerification {
		return PendingTransfer{}, fmt.Errorf("verify in state %s: %w", pt.State, fault.ErrStaleState)
	}
	pt.State = StateVerified
	return *pt, nil
}

// Commit posts the transfer's two legs through the ledger as one atomic
// unit. The source balance is re-checked at the instant of commit; on a
// shortfall the transfer is cancelled and the error surfaced, with no
// partial posting. Committing a terminal or unverified transfer returns
// ErrStaleState with no side effect. The notification is sent after the
// engine lock is released; a slow broker must never stall staging or
// verification of other transfers.
func (e *Engine) Commit(ctx context.Context, id string) (CommitResult, error) {
	e.mu.Lock()

	pt, ok := e.pending[id]
	if !ok {
		e.mu.Unlock()
		return CommitResult{}, fault.NotFound("pending transfer", id)
	}
	if pt.State != StateVerified {
		e.mu.Unlock()
		return CommitResult{}, fmt.Errorf("commit in state %s: %w", pt.State, fault.ErrStaleState)
	}

	correlationID := uuid.NewString()
	res, err := e.ledger.PostPair(ctx, ledger.PairInput{
		SourceID:      pt.SourceID,
		DestID:        pt.DestID,
		Amount:        pt.Amount,
		Description:   fmt.Sprintf("transfer to %s", pt.CounterpartyName),
		CorrelationID: correlationID,
	})
	if err != nil {
		if fault.IsInsufficientFunds(err) {
			pt.State = StateCancelled
		}
		e.mu.Unlock()
		return CommitResult{}, err
	}

	pt.State = StateCommitted
	msg := notification.Message{
		Kind:          notification.KindTransferCommitted,
		Destination:   pt.DestNumber,
		CorrelationID: correlationID,
		Body:          fmt.Sprintf("You received %s from instrument %s", pt.Amount, pt.SourceID),
	}
	e.mu.Unlock()

	if e.notifier != nil {
		_ = e.notifier.Send(ctx, msg)
	}

	return CommitResult{
		SourceEntry:      res.Debit,
		DestEntry:        res.Credit,
		NewSourceBalance: res.SourceBalance,
	}, nil
}

// Cancel moves any non-terminal transfer to CANCELLED. Cancelling a
// terminal transfer is a stale-state error, not a silent success.
func (e *Engine) Cancel(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	pt, ok := e.pending[id]
	if !ok {
		return fault.NotFound("pending transfer", id)
	}
	if pt.State.terminal() {
		return fmt.Errorf("cancel in state %s: %w", pt.State, fault.ErrStaleState)
	}
	pt.State = StateCancelled
	return nil
}
