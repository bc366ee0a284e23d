package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// TransactionRow mirrors the sqlite transactions table. Amount and
// CreatedAt are kept in their textual form.
type TransactionRow struct {
	ID        string
	Title     string
	Amount    string
	SessionID string
	CreatedAt string
}

const insertTransaction = `INSERT INTO transactions (id, title, amount, session_id, created_at)
VALUES (?, ?, ?, ?, ?)`

type InsertTransactionParams struct {
	ID        string
	Title     string
	Amount    string
	SessionID string
	CreatedAt string
}

func (q *Queries) InsertTransaction(ctx context.Context, arg InsertTransactionParams) error {
	_, err := q.db.ExecContext(ctx, insertTransaction,
		arg.ID,
		arg.Title,
		arg.Amount,
		arg.SessionID,
		arg.CreatedAt,
	)
	return err
}

const listTransactionsBySession = `SELECT id, title, amount, session_id, created_at
FROM transactions
WHERE session_id = ?
ORDER BY rowid`

func (q *Queries) ListTransactionsBySession(ctx context.Context, sessionID string) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsBySession, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(&i.ID, &i.Title, &i.Amount, &i.SessionID, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getTransactionBySession = `SELECT id, title, amount, session_id, created_at
FROM transactions
WHERE session_id = ? AND id = ?`

func (q *Queries) GetTransactionBySession(ctx context.Context, sessionID, id string) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, getTransactionBySession, sessionID, id)
	var i TransactionRow
	err := row.Scan(&i.ID, &i.Title, &i.Amount, &i.SessionID, &i.CreatedAt)
	return i, err
}

const listAmountsBySession = `SELECT amount FROM transactions WHERE session_id = ?`

func (q *Queries) ListAmountsBySession(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listAmountsBySession, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return nil, err
		}
		items = append(items, amount)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
