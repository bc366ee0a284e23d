// Package storagetest holds the behaviour every ledger store must share.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"saldo/internal/core"
)

// Store is the subset of the ledger store exercised by the contract.
type Store interface {
	Insert(ctx context.Context, t core.Transaction) error
	ListBySession(ctx context.Context, sessionID string) ([]core.Transaction, error)
	GetBySession(ctx context.Context, sessionID string, id uuid.UUID) (core.Transaction, error)
	SumBySession(ctx context.Context, sessionID string) (decimal.Decimal, error)
}

// Run exercises s against the ledger store contract. Each call uses fresh
// session tokens so a shared database can be reused between runs.
func Run(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	mustTx := func(t *testing.T, title, amount string, kind core.Kind, session string) core.Transaction {
		t.Helper()
		tx, err := core.NewTransaction(title, decimal.RequireFromString(amount), kind, session)
		if err != nil {
			t.Fatalf("build transaction: %v", err)
		}
		if err := s.Insert(ctx, tx); err != nil {
			t.Fatalf("insert: %v", err)
		}
		return tx
	}

	t.Run("empty session", func(t *testing.T) {
		session := uuid.NewString()
		items, err := s.ListBySession(ctx, session)
		if err != nil || len(items) != 0 {
			t.Fatalf("expected no items, got %v (err=%v)", items, err)
		}
		sum, err := s.SumBySession(ctx, session)
		if err != nil {
			t.Fatalf("sum: %v", err)
		}
		if !sum.IsZero() {
			t.Fatalf("expected zero sum, got %s", sum)
		}
	})

	t.Run("insert list get sum", func(t *testing.T) {
		session := uuid.NewString()
		first := mustTx(t, "Salary", "100", core.Credit, session)
		second := mustTx(t, "Groceries", "30.25", core.Debit, session)

		items, err := s.ListBySession(ctx, session)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}
		seen := map[uuid.UUID]core.Transaction{}
		for _, it := range items {
			seen[it.ID] = it
		}
		if got := seen[second.ID]; !got.Amount.Equal(decimal.RequireFromString("-30.25")) || got.Title != "Groceries" {
			t.Fatalf("unexpected stored debit: %+v", got)
		}

		got, err := s.GetBySession(ctx, session, first.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.ID != first.ID || !got.Amount.Equal(decimal.NewFromInt(100)) || got.SessionID != session {
			t.Fatalf("unexpected transaction: %+v", got)
		}

		sum, err := s.SumBySession(ctx, session)
		if err != nil {
			t.Fatalf("sum: %v", err)
		}
		if !sum.Equal(decimal.RequireFromString("69.75")) {
			t.Fatalf("expected 69.75, got %s", sum)
		}
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		a, b := uuid.NewString(), uuid.NewString()
		tx := mustTx(t, "Rent", "900", core.Debit, a)

		items, err := s.ListBySession(ctx, b)
		if err != nil || len(items) != 0 {
			t.Fatalf("session b sees %v (err=%v)", items, err)
		}
		if _, err := s.GetBySession(ctx, b, tx.ID); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound across sessions, got %v", err)
		}
		sum, err := s.SumBySession(ctx, b)
		if err != nil || !sum.IsZero() {
			t.Fatalf("session b sum %s (err=%v)", sum, err)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		if _, err := s.GetBySession(ctx, uuid.NewString(), uuid.New()); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
