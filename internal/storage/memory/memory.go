package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"saldo/internal/core"
)

// Store keeps the ledger in process memory, in insertion order. It is meant
// for development and tests; nothing survives a restart.
type Store struct {
	mu    sync.RWMutex
	items []core.Transaction
}

func New() *Store {
	return &Store{}
}

// Insert appends the transaction. Duplicate ids are rejected to mirror the
// primary key of the SQL stores.
func (s *Store) Insert(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.ID == t.ID {
			return fmt.Errorf("insert transaction %s: duplicate id", t.ID)
		}
	}
	s.items = append(s.items, t)
	return nil
}

// ListBySession returns a copy of the session's transactions.
func (s *Store) ListBySession(_ context.Context, sessionID string) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, 0)
	for _, t := range s.items {
		if t.SessionID == sessionID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) GetBySession(_ context.Context, sessionID string, id uuid.UUID) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.items {
		if t.ID == id && t.SessionID == sessionID {
			return t, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (s *Store) SumBySession(_ context.Context, sessionID string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, t := range s.items {
		if t.SessionID == sessionID {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}

// Len returns the number of stored transactions across all sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}
