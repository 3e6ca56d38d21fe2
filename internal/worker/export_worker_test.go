package worker

import (
	"context"
	"errors"
	"testing"

	"finances/internal/amqp"
	"finances/internal/core"
	"finances/internal/sheets"
	"finances/internal/sheets/memory"
	"github.com/shopspring/decimal"
)

type failingExporter struct{ err error }

func (f failingExporter) AppendTransaction(context.Context, sheets.Row) (string, error) {
	return "", f.err
}

func (f failingExporter) DeleteTransaction(context.Context, int64) error { return f.err }

func sampleTransaction() core.Transaction {
	cat := int64(3)
	return core.Transaction{
		ID:           11,
		OwnerID:      "u",
		Name:         "groceries",
		Date:         core.NewDate(2024, 5, 2),
		Amount:       decimal.RequireFromString("42.1"),
		Type:         core.Expense,
		CategoryID:   &cat,
		CategoryName: "Food",
		FromAccount:  "checking",
	}
}

func TestExportWorkerCreatedAndDeleted(t *testing.T) {
	exp := memory.New()
	w := NewExportWorker(exp)
	ctx := context.Background()

	created := amqp.NewTransactionCreatedEvent(sampleTransaction())
	if err := w.HandleLedgerEvent(ctx, created); err != nil {
		t.Fatalf("created: %v", err)
	}
	// Redelivery must not duplicate the row.
	if err := w.HandleLedgerEvent(ctx, created); err != nil {
		t.Fatalf("redelivered: %v", err)
	}

	rows := exp.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	want := sheets.Row{
		ID: 11, OwnerID: "u", Date: "2024-05-02", Name: "groceries", Type: "EXPENSE",
		Amount: "42.10", Category: "Food", FromAccount: "checking",
	}
	if rows[0] != want {
		t.Fatalf("unexpected row:\n got %+v\nwant %+v", rows[0], want)
	}

	deleted := amqp.NewTransactionDeletedEvent("u", 11)
	if err := w.HandleLedgerEvent(ctx, deleted); err != nil {
		t.Fatalf("deleted: %v", err)
	}
	if len(exp.Rows()) != 0 {
		t.Fatalf("expected row to be removed")
	}
	// Already removed rows are acknowledged.
	if err := w.HandleLedgerEvent(ctx, deleted); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestExportWorkerPropagatesFailures(t *testing.T) {
	boom := errors.New("quota exceeded")
	w := NewExportWorker(failingExporter{err: boom})
	ctx := context.Background()

	if err := w.HandleLedgerEvent(ctx, amqp.NewTransactionCreatedEvent(sampleTransaction())); !errors.Is(err, boom) {
		t.Fatalf("expected append failure, got %v", err)
	}
	if err := w.HandleLedgerEvent(ctx, amqp.NewTransactionDeletedEvent("u", 1)); !errors.Is(err, boom) {
		t.Fatalf("expected delete failure, got %v", err)
	}
}

func TestExportWorkerRejectsCreatedWithoutSnapshot(t *testing.T) {
	w := NewExportWorker(memory.New())
	event := &amqp.LedgerEvent{EventID: "e", Kind: amqp.TransactionCreated, TransactionID: 1}
	if err := w.HandleLedgerEvent(context.Background(), event); err == nil {
		t.Fatal("expected error for created event without snapshot")
	}
}

func TestExportWorkerIgnoresUnknownKind(t *testing.T) {
	exp := memory.New()
	w := NewExportWorker(exp)
	event := &amqp.LedgerEvent{EventID: "e", Kind: "transaction.renamed", TransactionID: 1}
	if err := w.HandleLedgerEvent(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exp.Rows()) != 0 {
		t.Fatal("expected no rows")
	}
}
