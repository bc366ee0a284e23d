package core

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Credit Kind = "credit"
	Debit  Kind = "debit"
)

// MaxTitleLength bounds the free-text label of a transaction, in characters.
const MaxTitleLength = 200

type (
	// Kind is the semantic direction of a movement. It is only used at write
	// time and never persisted.
	Kind string

	// Transaction is a single signed monetary movement owned by one session.
	// Amount is already sign-normalized: positive increases the balance,
	// negative decreases it.
	Transaction struct {
		ID        uuid.UUID
		Title     string
		Amount    decimal.Decimal
		SessionID string
		CreatedAt time.Time
	}

	// Summary is the running balance of a session.
	Summary struct {
		Amount decimal.Decimal
	}
)

// ParseKind maps the wire value of a transaction type onto a Kind. Only the
// exact lowercase values are accepted.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Credit, Debit:
		return k, nil
	default:
		return "", &ValidationError{Field: "type", Message: "must be one of credit, debit"}
	}
}

// Valid reports whether k is one of the two enumerated kinds.
func (k Kind) Valid() bool {
	return k == Credit || k == Debit
}

func (k Kind) String() string {
	return string(k)
}

// NewTransaction validates the caller-supplied fields and builds a fresh,
// sign-normalized ledger entry for sessionID. The title is stored as given.
func NewTransaction(title string, amount decimal.Decimal, kind Kind, sessionID string) (Transaction, error) {
	if err := ValidateTitle(title); err != nil {
		return Transaction{}, err
	}
	if !kind.Valid() {
		return Transaction{}, &ValidationError{Field: "type", Message: "must be one of credit, debit"}
	}
	if strings.TrimSpace(sessionID) == "" {
		return Transaction{}, ErrUnauthenticated
	}

	return Transaction{
		ID:        uuid.New(),
		Title:     title,
		Amount:    Normalize(amount, kind),
		SessionID: sessionID,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Validate checks the invariants of a stored transaction.
func (t Transaction) Validate() error {
	if t.ID == uuid.Nil {
		return &ValidationError{Field: "id", Message: "must not be empty"}
	}
	if err := ValidateTitle(t.Title); err != nil {
		return err
	}
	if strings.TrimSpace(t.SessionID) == "" {
		return &ValidationError{Field: "session_id", Message: "must not be empty"}
	}
	return nil
}

// ValidateTitle rejects blank titles and titles over MaxTitleLength characters.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Message: "must not be empty"}
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return &ValidationError{Field: "title", Message: "too long (max 200 characters)"}
	}
	return nil
}

// ParseID parses a transaction identifier as received from a caller.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, &ValidationError{Field: "id", Message: "must be a valid uuid"}
	}
	return id, nil
}
