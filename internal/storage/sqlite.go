package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"saldo/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the ledger store backed by a local SQLite file.
// SQLite has no exact decimal type, so amounts are kept as canonical decimal
// text and summed in Go.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Insert appends a transaction to the ledger.
func (r *SQLiteRepository) Insert(ctx context.Context, t core.Transaction) error {
	err := r.queries.InsertTransaction(ctx, InsertTransactionParams{
		ID:        t.ID.String(),
		Title:     t.Title,
		Amount:    t.Amount.String(),
		SessionID: t.SessionID,
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"amount", t.Amount.String())

	return nil
}

// ListBySession returns the session's transactions in insertion order.
func (r *SQLiteRepository) ListBySession(ctx context.Context, sessionID string) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactionsBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := row.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// GetBySession returns core.ErrNotFound when id does not exist within sessionID.
func (r *SQLiteRepository) GetBySession(ctx context.Context, sessionID string, id uuid.UUID) (core.Transaction, error) {
	row, err := r.queries.GetTransactionBySession(ctx, sessionID, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return row.toCore()
}

// SumBySession returns the signed sum of the session's amounts, zero when empty.
func (r *SQLiteRepository) SumBySession(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	amounts, err := r.queries.ListAmountsBySession(ctx, sessionID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum transactions: %w", err)
	}

	total := decimal.Zero
	for _, a := range amounts {
		d, err := decimal.NewFromString(a)
		if err != nil {
			return decimal.Zero, fmt.Errorf("decode stored amount %q: %w", a, err)
		}
		total = total.Add(d)
	}
	return total, nil
}

func (row TransactionRow) toCore() (core.Transaction, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode stored id %q: %w", row.ID, err)
	}
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode stored amount %q: %w", row.Amount, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode stored created_at %q: %w", row.CreatedAt, err)
	}
	return core.Transaction{
		ID:        id,
		Title:     row.Title,
		Amount:    amount,
		SessionID: row.SessionID,
		CreatedAt: createdAt,
	}, nil
}
