package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
	"saldo/internal/storage/storagetest"
)

func TestMemoryStoreContract(t *testing.T) {
	storagetest.Run(t, New())
}

func TestMemoryStoreRejectsDuplicatesAndInvalid(t *testing.T) {
	s := New()
	tx, err := core.NewTransaction("t", decimal.NewFromInt(1), core.Credit, "s")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := s.Insert(context.Background(), tx); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Insert(context.Background(), tx); err == nil {
		t.Fatalf("expected duplicate id error")
	}
	if err := s.Insert(context.Background(), core.Transaction{}); err == nil {
		t.Fatalf("expected validation error for zero transaction")
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 stored item, got %d", s.Len())
	}
}
