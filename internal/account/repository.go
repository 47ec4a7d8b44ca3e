package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kwanza-pay/kwanza/internal/fault"
)

// Repository persists accounts and their enrolled templates.
type Repository interface {
	Create(ctx context.Context, acc Account) error
	FindByID(ctx context.Context, id string) (Account, error)
	FindByName(ctx context.Context, name string) (Account, error)
	AddTemplate(ctx context.Context, id string, embedding []float64) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed account repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new account.
func (r *PostgresRepository) Create(ctx context.Context, acc Account) error {
	accountID, err := uuid.Parse(acc.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO accounts (id, name, password_hash, created_at)
        VALUES ($1, $2, $3, $4)`, accountID, acc.Name, acc.PasswordHash, acc.CreatedAt.UTC())
	if isUniqueViolation(err) {
		return fault.Duplicate("account", acc.Name)
	}
	return err
}

// FindByID fetches an account and its templates by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Account, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return Account{}, fault.NotFound("account", id)
	}
	row := r.db.QueryRow(ctx, `SELECT id, name, password_hash, created_at FROM accounts WHERE id = $1`, accountID)
	return r.scanAccount(ctx, row)
}

// FindByName fetches an account and its templates by login name.
func (r *PostgresRepository) FindByName(ctx context.Context, name string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, password_hash, created_at FROM accounts WHERE name = $1`, name)
	return r.scanAccount(ctx, row)
}

// AddTemplate appends an enrolled face embedding.
func (r *PostgresRepository) AddTemplate(ctx context.Context, id string, embedding []float64) error {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return fault.NotFound("account", id)
	}
	cmd, err := r.db.Exec(ctx, `INSERT INTO biometric_templates (id, account_id, embedding, created_at)
        SELECT $1, $2, $3, $4 WHERE EXISTS (SELECT 1 FROM accounts WHERE id = $2)`,
		uuid.New(), accountID, embedding, time.Now().UTC())
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fault.NotFound("account", id)
	}
	return nil
}

func (r *PostgresRepository) scanAccount(ctx context.Context, row pgx.Row) (Account, error) {
	var (
		id        uuid.UUID
		createdAt time.Time
		acc       Account
	)
	if err := row.Scan(&id, &acc.Name, &acc.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, fault.NotFound("account", "")
		}
		return Account{}, err
	}
	acc.ID = id.String()
	acc.CreatedAt = createdAt.UTC()

	rows, err := r.db.Query(ctx, `SELECT embedding FROM biometric_templates WHERE account_id = $1 ORDER BY created_at`, id)
	if err != nil {
		return Account{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var embedding []float64
		if err := rows.Scan(&embedding); err != nil {
			return Account{}, err
		}
		acc.Templates = append(acc.Templates, embedding)
	}
	return acc, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
