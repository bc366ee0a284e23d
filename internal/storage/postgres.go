package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"saldo/internal/core"
)

var (
	postgresConnectRetries = 10
	postgresRetryDelay     = 2 * time.Second
	postgresPingTimeout    = 2 * time.Second
)

// PostgresRepository is the ledger store backed by a shared Postgres pool.
// Amounts live in an unscaled NUMERIC column and cross the wire as text.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository applies migrations and opens a connection pool,
// retrying the initial ping while the database comes up.
func NewPostgresRepository(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	if err := RunPostgresMigrations(databaseURL); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnIdleTime = 5 * time.Minute

	var lastErr error
	for i := 0; i < postgresConnectRetries; i++ {
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			lastErr = err
		} else {
			pingCtx, cancel := context.WithTimeout(ctx, postgresPingTimeout)
			err = pool.Ping(pingCtx)
			cancel()
			if err == nil {
				return &PostgresRepository{pool: pool}, nil
			}
			lastErr = err
			pool.Close()
		}

		slog.WarnContext(ctx, "Postgres not ready, retrying", "attempt", i+1, "error", lastErr)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(postgresRetryDelay):
		}
	}
	return nil, fmt.Errorf("db ping retries exhausted: %w", lastErr)
}

func (r *PostgresRepository) Close() error {
	if r.pool != nil {
		r.pool.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresRepository) Insert(ctx context.Context, t core.Transaction) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO transactions (id, title, amount, session_id, created_at)
		 VALUES ($1::uuid, $2, $3::numeric, $4, $5)`,
		t.ID.String(), t.Title, t.Amount.String(), t.SessionID, t.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListBySession(ctx context.Context, sessionID string) ([]core.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id::text, title, amount::text, session_id, created_at
		 FROM transactions
		 WHERE session_id = $1
		 ORDER BY created_at, id`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) GetBySession(ctx context.Context, sessionID string, id uuid.UUID) (core.Transaction, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id::text, title, amount::text, session_id, created_at
		 FROM transactions
		 WHERE session_id = $1 AND id = $2::uuid`,
		sessionID, id.String())
	t, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) SumBySession(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	var raw string
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)::text FROM transactions WHERE session_id = $1`,
		sessionID).Scan(&raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum transactions: %w", err)
	}
	total, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("decode sum %q: %w", raw, err)
	}
	return total, nil
}

func scanTransaction(row pgx.Row) (core.Transaction, error) {
	var (
		rawID, rawAmount string
		t                core.Transaction
	)
	if err := row.Scan(&rawID, &t.Title, &rawAmount, &t.SessionID, &t.CreatedAt); err != nil {
		return core.Transaction{}, err
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode stored id %q: %w", rawID, err)
	}
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode stored amount %q: %w", rawAmount, err)
	}
	t.ID = id
	t.Amount = amount
	return t, nil
}
