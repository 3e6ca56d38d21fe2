package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finances/internal/amqp"
	"finances/internal/log"
	"finances/internal/sheets"
)

// ExportWorker mirrors ledger events into a spreadsheet.
type ExportWorker struct {
	exporter sheets.Exporter
}

func NewExportWorker(exporter sheets.Exporter) *ExportWorker {
	return &ExportWorker{exporter: exporter}
}

// HandleLedgerEvent applies one event to the spreadsheet. A returned error
// asks the broker to redeliver the event.
func (w *ExportWorker) HandleLedgerEvent(ctx context.Context, event *amqp.LedgerEvent) error {
	switch event.Kind {
	case amqp.TransactionCreated:
		return w.exportCreated(ctx, event)
	case amqp.TransactionDeleted:
		return w.exportDeleted(ctx, event)
	default:
		slog.WarnContext(ctx, "Ignoring unknown ledger event",
			log.FieldEventID, event.EventID,
			log.FieldEventKind, event.Kind)
		return nil
	}
}

func (w *ExportWorker) exportCreated(ctx context.Context, event *amqp.LedgerEvent) error {
	if event.Transaction == nil {
		return fmt.Errorf("%s event %s has no transaction", event.Kind, event.EventID)
	}
	ref, err := w.exporter.AppendTransaction(ctx, RowFromSnapshot(event.Transaction))
	if err != nil {
		return fmt.Errorf("append to sheets: %w", err)
	}

	slog.InfoContext(ctx, "Exported transaction",
		log.FieldEventID, event.EventID,
		log.FieldTransactionID, event.TransactionID,
		log.FieldUserID, event.OwnerID,
		"sheets_ref", ref)
	return nil
}

func (w *ExportWorker) exportDeleted(ctx context.Context, event *amqp.LedgerEvent) error {
	err := w.exporter.DeleteTransaction(ctx, event.TransactionID)
	if errors.Is(err, sheets.ErrRowNotFound) {
		slog.WarnContext(ctx, "Exported row already gone",
			log.FieldEventID, event.EventID,
			log.FieldTransactionID, event.TransactionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete from sheets: %w", err)
	}

	slog.InfoContext(ctx, "Removed exported transaction",
		log.FieldEventID, event.EventID,
		log.FieldTransactionID, event.TransactionID,
		log.FieldUserID, event.OwnerID)
	return nil
}

// RowFromSnapshot lays a transaction snapshot out as a sheet row.
func RowFromSnapshot(s *amqp.TransactionSnapshot) sheets.Row {
	return sheets.Row{
		ID:          s.ID,
		OwnerID:     s.OwnerID,
		Date:        s.Date.String(),
		Name:        s.Name,
		Type:        s.Type,
		Amount:      s.Amount,
		Category:    s.CategoryName,
		FromAccount: s.FromAccount,
		Note:        s.Note,
	}
}
