package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionCreatedMessage announces a new ledger entry. Consumers re-read
// the transaction from the store; the amount is carried for logging only.
type TransactionCreatedMessage struct {
	ID        uuid.UUID       `json:"id"`
	SessionID string          `json:"session_id"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewTransactionCreatedMessage creates a message stamped with the current time
func NewTransactionCreatedMessage(id uuid.UUID, sessionID string, amount decimal.Decimal) *TransactionCreatedMessage {
	return &TransactionCreatedMessage{
		ID:        id,
		SessionID: sessionID,
		Amount:    amount,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionCreatedMessageFromJSON decodes a message and rejects payloads
// without an id or session.
func TransactionCreatedMessageFromJSON(data []byte) (*TransactionCreatedMessage, error) {
	var msg TransactionCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == uuid.Nil || msg.SessionID == "" {
		return nil, errIncompleteMessage
	}
	return &msg, nil
}
