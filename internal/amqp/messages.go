package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"finances/internal/core"
	"github.com/google/uuid"
)

// EventKind names what happened to a transaction.
type EventKind string

const (
	TransactionCreated EventKind = "transaction.created"
	TransactionDeleted EventKind = "transaction.deleted"
)

// TransactionSnapshot is the wire form of a booked transaction.
type TransactionSnapshot struct {
	ID           int64     `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Name         string    `json:"name"`
	Date         core.Date `json:"date"`
	Amount       string    `json:"amount"`
	Type         string    `json:"type"`
	CategoryID   *int64    `json:"category_id,omitempty"`
	CategoryName string    `json:"category_name,omitempty"`
	FromAccount  string    `json:"from_account"`
	Note         string    `json:"note,omitempty"`
}

// LedgerEvent is published after every committed ledger mutation. Deleted
// events carry no snapshot.
type LedgerEvent struct {
	EventID       string               `json:"event_id"`
	Kind          EventKind            `json:"kind"`
	OwnerID       string               `json:"owner_id"`
	TransactionID int64                `json:"transaction_id"`
	Transaction   *TransactionSnapshot `json:"transaction,omitempty"`
	Timestamp     time.Time            `json:"timestamp"`
}

func NewSnapshot(tx core.Transaction) *TransactionSnapshot {
	return &TransactionSnapshot{
		ID:           tx.ID,
		OwnerID:      tx.OwnerID,
		Name:         tx.Name,
		Date:         tx.Date,
		Amount:       core.FormatAmount(tx.Amount),
		Type:         string(tx.Type),
		CategoryID:   tx.CategoryID,
		CategoryName: tx.CategoryName,
		FromAccount:  tx.FromAccount,
		Note:         tx.Note,
	}
}

// NewTransactionCreatedEvent creates an event carrying the full transaction.
func NewTransactionCreatedEvent(tx core.Transaction) *LedgerEvent {
	return &LedgerEvent{
		EventID:       uuid.NewString(),
		Kind:          TransactionCreated,
		OwnerID:       tx.OwnerID,
		TransactionID: tx.ID,
		Transaction:   NewSnapshot(tx),
		Timestamp:     time.Now().UTC(),
	}
}

func NewTransactionDeletedEvent(ownerID string, id int64) *LedgerEvent {
	return &LedgerEvent{
		EventID:       uuid.NewString(),
		Kind:          TransactionDeleted,
		OwnerID:       ownerID,
		TransactionID: id,
		Timestamp:     time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and sanity-checks an event body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	switch e.Kind {
	case TransactionCreated:
		if e.Transaction == nil {
			return nil, fmt.Errorf("%s event %s has no transaction", e.Kind, e.EventID)
		}
	case TransactionDeleted:
	default:
		return nil, fmt.Errorf("unknown event kind %q", e.Kind)
	}
	if e.TransactionID <= 0 {
		return nil, fmt.Errorf("event %s has no transaction id", e.EventID)
	}
	return &e, nil
}
