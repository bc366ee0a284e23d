// Package ledger implements the session-scoped ledger operations: listing,
// lookup, balance and insert.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"saldo/internal/amqp"
	"saldo/internal/cache"
	"saldo/internal/core"
	"saldo/internal/log"
)

// Store is the persistence contract the service depends on. Every read is
// scoped to a session.
type Store interface {
	Insert(ctx context.Context, t core.Transaction) error
	ListBySession(ctx context.Context, sessionID string) ([]core.Transaction, error)
	GetBySession(ctx context.Context, sessionID string, id uuid.UUID) (core.Transaction, error)
	SumBySession(ctx context.Context, sessionID string) (decimal.Decimal, error)
}

// Publisher announces new transactions to other processes.
type Publisher interface {
	PublishTransactionCreated(ctx context.Context, msg *amqp.TransactionCreatedMessage) error
}

// CreateInput is a decoded create request. Amount is the unsigned magnitude
// as supplied by the caller.
type CreateInput struct {
	Title  string
	Amount decimal.Decimal
	Kind   core.Kind
}

// CreateResult carries the stored transaction and the session it was
// recorded under. Session.IsNew tells the transport to hand the token back.
type CreateResult struct {
	Transaction core.Transaction
	Session     core.Session
}

// Service orchestrates the ledger store, the optional summary cache and the
// optional event publisher. It holds no per-request state.
type Service struct {
	store     Store
	summaries cache.Cache[decimal.Decimal]
	publisher Publisher
	logger    *log.Logger
	events    *log.StructuredLogger
	fills     singleflight.Group

	// generations is bumped per session stripe on every insert. A summary
	// fill only writes to the cache when its stripe did not move meanwhile.
	generations [generationStripes]atomic.Uint64
}

const generationStripes = 64

// Option configures optional collaborators.
type Option func(*Service)

// WithSummaryCache caches per-session balances.
func WithSummaryCache(c cache.Cache[decimal.Decimal]) Option {
	return func(s *Service) {
		if c != nil {
			s.summaries = c
		}
	}
}

// WithPublisher enables transaction.created events.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithLogger sets the service logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentLedger)
		}
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		summaries: cache.Nop[decimal.Decimal]{},
		logger:    log.New(log.DefaultConfig()).WithComponent(log.ComponentLedger),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.events = log.NewStructuredLogger(s.logger)
	return s
}

// List returns every transaction recorded under token, oldest first.
func (s *Service) List(ctx context.Context, token string) ([]core.Transaction, error) {
	sessionID, err := core.RequireSession(token)
	if err != nil {
		return nil, err
	}
	items, err := s.store.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return items, nil
}

// Get looks up one transaction of the session. A well-formed id that does
// not exist in this session yields found == false and no error.
func (s *Service) Get(ctx context.Context, token, rawID string) (core.Transaction, bool, error) {
	sessionID, err := core.RequireSession(token)
	if err != nil {
		return core.Transaction{}, false, err
	}
	id, err := core.ParseID(rawID)
	if err != nil {
		return core.Transaction{}, false, err
	}

	t, err := s.store.GetBySession(ctx, sessionID, id)
	if errors.Is(err, core.ErrNotFound) {
		return core.Transaction{}, false, nil
	}
	if err != nil {
		return core.Transaction{}, false, fmt.Errorf("get transaction: %w", err)
	}
	return t, true, nil
}

// Summary returns the signed balance of the session, zero when it has no
// transactions. Concurrent misses for one session share a single store read.
func (s *Service) Summary(ctx context.Context, token string) (core.Summary, error) {
	sessionID, err := core.RequireSession(token)
	if err != nil {
		return core.Summary{}, err
	}

	key := summaryKey(sessionID)
	if amount, ok := s.summaries.Get(ctx, key); ok {
		return core.Summary{Amount: amount}, nil
	}

	gen := s.generation(sessionID)
	started := gen.Load()
	v, err, _ := s.fills.Do(key+"@"+strconv.FormatUint(started, 10), func() (any, error) {
		total, err := s.store.SumBySession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if gen.Load() == started {
			s.summaries.Set(ctx, key, total)
		}
		return total, nil
	})
	if err != nil {
		return core.Summary{}, fmt.Errorf("sum transactions: %w", err)
	}
	return core.Summary{Amount: v.(decimal.Decimal)}, nil
}

// Create validates input, resolves the session, stores the sign-normalized
// transaction and announces it. Nothing is resolved or stored when input is
// invalid.
func (s *Service) Create(ctx context.Context, in CreateInput, presentedToken string) (CreateResult, error) {
	if err := in.Validate(); err != nil {
		return CreateResult{}, err
	}

	session := core.ResolveSession(presentedToken)
	t, err := core.NewTransaction(in.Title, in.Amount, in.Kind, session.Token)
	if err != nil {
		return CreateResult{}, err
	}

	if err := s.store.Insert(ctx, t); err != nil {
		return CreateResult{}, fmt.Errorf("insert transaction: %w", err)
	}

	s.generation(session.Token).Add(1)
	s.summaries.Delete(ctx, summaryKey(session.Token))
	s.events.LogTransactionCreated(ctx, t.ID.String(), t.Title, t.Amount.String(), session.Token, session.IsNew)
	s.publish(ctx, t)

	return CreateResult{Transaction: t, Session: session}, nil
}

// Validate reports every field problem of the request at once.
func (in CreateInput) Validate() error {
	var errs core.ValidationErrors
	errs = append(errs, core.Fields(core.ValidateTitle(in.Title))...)
	if !in.Kind.Valid() {
		errs = append(errs, &core.ValidationError{Field: "type", Message: "must be one of credit, debit"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// publish is best effort: the transaction is already stored, so a broker
// outage is logged and the request still succeeds.
func (s *Service) publish(ctx context.Context, t core.Transaction) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewTransactionCreatedMessage(t.ID, t.SessionID, t.Amount)
	if err := s.publisher.PublishTransactionCreated(ctx, msg); err != nil {
		s.events.LogError(ctx, "Failed to publish transaction event", err, log.ComponentAMQP, log.OpPublish,
			log.NewFields().WithTransaction(t.ID.String(), t.Title, t.Amount.String()))
	}
}

func (s *Service) generation(sessionID string) *atomic.Uint64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &s.generations[h.Sum32()%generationStripes]
}

func summaryKey(sessionID string) string {
	return "summary:" + sessionID
}
