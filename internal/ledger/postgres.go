package ledger

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kwanza-pay/kwanza/internal/fault"
)

// PostgresStore persists ledger entries in PostgreSQL. The cached balance
// lives on the instrument row and is updated in the same transaction as
// every entry insert; row locks are taken in instrument-id order so two
// transfers targeting each other's instruments cannot deadlock.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed ledger store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const lockBalanceQuery = `SELECT balance FROM instruments WHERE id = $1 FOR UPDATE`

func (s *PostgresStore) EnsureInstrument(ctx context.Context, instrumentID string) error {
	id, err := uuid.Parse(instrumentID)
	if err != nil {
		return fault.NotFound("instrument", instrumentID)
	}
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM instruments WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fault.NotFound("instrument", instrumentID)
	}
	return nil
}

func (s *PostgresStore) Post(ctx context.Context, instrumentID string, amount decimal.Decimal, typ EntryType, description, correlationID string) (Entry, error) {
	id, err := uuid.Parse(instrumentID)
	if err != nil {
		return Entry{}, fault.NotFound("instrument", instrumentID)
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Entry{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var balance decimal.Decimal
	if err := tx.QueryRow(ctx, lockBalanceQuery, id).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, fault.NotFound("instrument", instrumentID)
		}
		return Entry{}, err
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
	if err := insertEntry(ctx, tx, entry); err != nil {
		return Entry{}, err
	}
	if _, err := tx.Exec(ctx, `UPDATE instruments SET balance = $1 WHERE id = $2`, next, id); err != nil {
		return Entry{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func (s *PostgresStore) PostPair(ctx context.Context, in PairInput) (PairResult, error) {
	if !in.Amount.IsPositive() {
		return PairResult{}, fault.Validation("amount must be greater than 0")
	}
	srcID, err := uuid.Parse(in.SourceID)
	if err != nil {
		return PairResult{}, fault.NotFound("instrument", in.SourceID)
	}
	dstID, err := uuid.Parse(in.DestID)
	if err != nil {
		return PairResult{}, fault.NotFound("instrument", in.DestID)
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return PairResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	// Lock both instrument rows in id order.
	first, second := srcID, dstID
	if second.String() < first.String() {
		first, second = second, first
	}
	balances := make(map[uuid.UUID]decimal.Decimal, 2)
	for _, id := range []uuid.UUID{first, second} {
		var b decimal.Decimal
		if err := tx.QueryRow(ctx, lockBalanceQuery, id).Scan(&b); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return PairResult{}, fault.NotFound("instrument", id.String())
			}
			return PairResult{}, err
		}
		balances[id] = b
	}

	srcBalance := balances[srcID]
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
	if err := insertEntry(ctx, tx, debit); err != nil {
		return PairResult{}, err
	}
	if err := insertEntry(ctx, tx, credit); err != nil {
		return PairResult{}, err
	}

	newSrc := srcBalance.Sub(in.Amount)
	newDst := balances[dstID].Add(in.Amount)
	if _, err := tx.Exec(ctx, `UPDATE instruments SET balance = $1 WHERE id = $2`, newSrc, srcID); err != nil {
		return PairResult{}, err
	}
	if _, err := tx.Exec(ctx, `UPDATE instruments SET balance = $1 WHERE id = $2`, newDst, dstID); err != nil {
		return PairResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return PairResult{}, err
	}

	return PairResult{Debit: debit, Credit: credit, SourceBalance: newSrc, DestBalance: newDst}, nil
}

func (s *PostgresStore) BalanceOf(ctx context.Context, instrumentID string) (decimal.Decimal, error) {
	id, err := uuid.Parse(instrumentID)
	if err != nil {
		return decimal.Zero, fault.NotFound("instrument", instrumentID)
	}
	var balance decimal.Decimal
	if err := s.db.QueryRow(ctx, `SELECT balance FROM instruments WHERE id = $1`, id).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, fault.NotFound("instrument", instrumentID)
		}
		return decimal.Zero, err
	}
	return balance, nil
}

func (s *PostgresStore) History(ctx context.Context, instrumentID string, f Filter) ([]Entry, error) {
	id, err := uuid.Parse(instrumentID)
	if err != nil {
		return nil, fault.NotFound("instrument", instrumentID)
	}
	if err := s.EnsureInstrument(ctx, instrumentID); err != nil {
		return nil, err
	}

	query := `SELECT id, instrument_id, amount, type, description, COALESCE(correlation_id::text, ''), posted_at
        FROM entries WHERE instrument_id = $1`
	args := []any{id}
	if !f.From.IsZero() {
		args = append(args, f.From)
		query += ` AND posted_at >= $` + strconv.Itoa(len(args))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		query += ` AND posted_at <= $` + strconv.Itoa(len(args))
	}
	if f.Type != "" {
		args = append(args, string(f.Type))
		query += ` AND type = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY posted_at DESC, id DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e            Entry
			entryID      uuid.UUID
			instrumentID uuid.UUID
			postedAt     time.Time
		)
		if err := rows.Scan(&entryID, &instrumentID, &e.Amount, &e.Type, &e.Description, &e.CorrelationID, &postedAt); err != nil {
			return nil, err
		}
		e.ID = entryID.String()
		e.InstrumentID = instrumentID.String()
		e.PostedAt = postedAt.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func insertEntry(ctx context.Context, tx pgx.Tx, e Entry) error {
	var correlationID *uuid.UUID
	if e.CorrelationID != "" {
		parsed, err := uuid.Parse(e.CorrelationID)
		if err != nil {
			return fault.Validation("invalid correlation id")
		}
		correlationID = &parsed
	}
	_, err := tx.Exec(ctx, `INSERT INTO entries (id, instrument_id, amount, type, description, correlation_id, posted_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.MustParse(e.ID), uuid.MustParse(e.InstrumentID), e.Amount, string(e.Type), e.Description, correlationID, e.PostedAt)
	return err
}

