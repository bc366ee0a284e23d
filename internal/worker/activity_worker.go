package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"saldo/internal/amqp"
	"saldo/internal/core"
	"saldo/internal/log"
)

// TransactionReader is the read side of the ledger store the worker needs.
type TransactionReader interface {
	GetBySession(ctx context.Context, sessionID string, id uuid.UUID) (core.Transaction, error)
}

// ActivityWorker turns transaction.created events into activity log entries.
// Every event is checked against the store so that only committed
// transactions are reported.
type ActivityWorker struct {
	store  TransactionReader
	logger *log.Logger

	processed atomic.Int64
	missing   atomic.Int64
	failed    atomic.Int64
}

// Stats is a snapshot of the worker counters.
type Stats struct {
	Processed int64
	Missing   int64
	Failed    int64
}

func NewActivityWorker(store TransactionReader, logger *log.Logger) *ActivityWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ActivityWorker{
		store:  store,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleTransactionCreated processes one event. A transaction that cannot be
// found is acknowledged with a warning since redelivery will not make it
// appear; store failures are returned so the message is requeued.
func (w *ActivityWorker) HandleTransactionCreated(ctx context.Context, msg *amqp.TransactionCreatedMessage) error {
	t, err := w.store.GetBySession(ctx, msg.SessionID, msg.ID)
	if errors.Is(err, core.ErrNotFound) {
		w.missing.Add(1)
		w.logger.WarnContext(ctx, "Transaction from event not found, skipping",
			log.FieldTransactionID, msg.ID.String(),
			log.FieldSessionID, log.MaskToken(msg.SessionID))
		return nil
	}
	if err != nil {
		w.failed.Add(1)
		return fmt.Errorf("get transaction %s: %w", msg.ID, err)
	}

	if !t.Amount.Equal(msg.Amount) {
		w.logger.WarnContext(ctx, "Event amount differs from stored transaction",
			log.FieldTransactionID, t.ID.String(),
			"event_amount", msg.Amount.String(),
			log.FieldAmount, t.Amount.String())
	}

	w.processed.Add(1)
	fields := log.NewFields().
		WithTransaction(t.ID.String(), t.Title, t.Amount.String()).
		WithOperation(log.OpConsume)
	fields[log.FieldSessionID] = log.MaskToken(t.SessionID)
	fields["lag_ms"] = time.Since(msg.Timestamp).Milliseconds()

	w.logger.InfoContext(ctx, "Ledger activity", fields.ToSlice()...)
	return nil
}

// Stats returns the worker counters.
func (w *ActivityWorker) Stats() Stats {
	return Stats{
		Processed: w.processed.Load(),
		Missing:   w.missing.Load(),
		Failed:    w.failed.Load(),
	}
}
