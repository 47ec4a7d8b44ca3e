package instrument

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kwanza-pay/kwanza/internal/fault"
)

// Repository persists instrument metadata. Balances are owned by the ledger
// store; this repository never writes them.
type Repository interface {
	Create(ctx context.Context, inst Instrument) error
	Get(ctx context.Context, id string) (Instrument, error)
	FindByNumber(ctx context.Context, number string) (Instrument, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Instrument, error)
}

// PostgresRepository stores instruments in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an instrument record with a zero starting balance.
func (r *PostgresRepository) Create(ctx context.Context, inst Instrument) error {
	instID, err := uuid.Parse(inst.ID)
	if err != nil {
		return err
	}
	ownerID, err := uuid.Parse(inst.OwnerID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO instruments (id, owner_id, name, normalized_name, issuer, number, balance, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, 0, $7)`,
		instID, ownerID, inst.Name, inst.NormalizedName, inst.Issuer, inst.Number, inst.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return duplicateError(pgErr.ConstraintName, inst)
	}
	return err
}

// duplicateError maps a unique-violation constraint onto the colliding key:
// the global number index vs the (owner, normalized name, issuer) key.
func duplicateError(constraint string, inst Instrument) error {
	if strings.Contains(constraint, "number") {
		return fault.Duplicate("instrument number", inst.Number)
	}
	return fault.Duplicate("instrument", inst.Name)
}

// Get fetches instrument metadata by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Instrument, error) {
	instID, err := uuid.Parse(id)
	if err != nil {
		return Instrument{}, fault.NotFound("instrument", id)
	}
	row := r.db.QueryRow(ctx, `SELECT id, owner_id, name, normalized_name, issuer, number, created_at
        FROM instruments WHERE id = $1`, instID)
	return scanInstrument(row)
}

// FindByNumber resolves an instrument by its globally unique number.
func (r *PostgresRepository) FindByNumber(ctx context.Context, number string) (Instrument, error) {
	row := r.db.QueryRow(ctx, `SELECT id, owner_id, name, normalized_name, issuer, number, created_at
        FROM instruments WHERE number = $1`, number)
	inst, err := scanInstrument(row)
	if errors.Is(err, fault.ErrNotFound) {
		return Instrument{}, fault.NotFound("instrument number", number)
	}
	return inst, err
}

// ListByOwner returns all instruments owned by the account.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]Instrument, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, fault.NotFound("account", ownerID)
	}
	rows, err := r.db.Query(ctx, `SELECT id, owner_id, name, normalized_name, issuer, number, created_at
        FROM instruments WHERE owner_id = $1 ORDER BY created_at`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Instrument
	for rows.Next() {
		inst, err := scanInstrument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

func scanInstrument(row pgx.Row) (Instrument, error) {
	var (
		id        uuid.UUID
		ownerID   uuid.UUID
		createdAt time.Time
		inst      Instrument
	)
	if err := row.Scan(&id, &ownerID, &inst.Name, &inst.NormalizedName, &inst.Issuer, &inst.Number, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Instrument{}, fault.NotFound("instrument", "")
		}
		return Instrument{}, err
	}
	inst.ID = id.String()
	inst.OwnerID = ownerID.String()
	inst.CreatedAt = createdAt.UTC()
	return inst, nil
}
