package services

import (
	"context"
	"errors"
	"fmt"

	"finances/internal/amqp"
	"finances/internal/core"
	"finances/internal/ledger"
	"finances/internal/log"
)

// EventPublisher emits ledger events after a committed mutation.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, event *amqp.LedgerEvent) error
}

// TransactionService books and removes transactions on behalf of their
// owner and lists them back.
type TransactionService struct {
	store     ledger.Store
	publisher EventPublisher
	retry     RetryPolicy
}

// NewTransactionService wires the store and the optional event publisher.
func NewTransactionService(store ledger.Store, publisher EventPublisher, retry RetryPolicy) *TransactionService {
	return &TransactionService{store: store, publisher: publisher, retry: retry}
}

// AddTransaction validates draft and books it for userID. All field
// problems, including an unknown category, come back in one
// core.ValidationError.
func (s *TransactionService) AddTransaction(ctx context.Context, userID string, draft core.TransactionDraft) (core.Transaction, error) {
	if err := s.requireProfile(ctx, userID); err != nil {
		return core.Transaction{}, err
	}

	in, err := draft.Validate(userID)
	var verr *core.ValidationError
	if err != nil && !errors.As(err, &verr) {
		return core.Transaction{}, err
	}
	if draft.CategoryID != nil && *draft.CategoryID > 0 {
		if err := s.checkCategory(ctx, *draft.CategoryID); err != nil {
			if !errors.Is(err, core.ErrCategoryNotFound) {
				return core.Transaction{}, err
			}
			if verr == nil {
				verr = &core.ValidationError{}
			}
			verr.Add("category", unknownCategory(*draft.CategoryID))
		}
	}
	if verr != nil && verr.HasErrors() {
		return core.Transaction{}, verr
	}

	tx, err := s.store.InsertTransaction(ctx, in)
	if errors.Is(err, core.ErrCategoryNotFound) {
		// Category removed between the check and the insert.
		return core.Transaction{}, core.NewValidationError("category", unknownCategory(*in.CategoryID))
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	log.NewStructuredLogger(log.FromContext(ctx)).LogTransactionCreated(ctx,
		userID, tx.ID, string(tx.Type), core.FormatAmount(tx.Amount), tx.CategoryID)

	s.publish(ctx, amqp.NewTransactionCreatedEvent(tx))
	return tx, nil
}

// DeleteTransaction removes a transaction owned by userID. Transactions of
// other users are reported as not found.
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID string, id int64) error {
	if err := s.requireProfile(ctx, userID); err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		if errors.Is(err, core.ErrTransactionNotFound) {
			return err
		}
		return fmt.Errorf("delete transaction: %w", err)
	}

	log.NewStructuredLogger(log.FromContext(ctx)).LogTransactionDeleted(ctx, userID, id)

	s.publish(ctx, amqp.NewTransactionDeletedEvent(userID, id))
	return nil
}

// GetUserTransactions lists userID's transactions newest first. The date
// range applies only when both bounds are set.
func (s *TransactionService) GetUserTransactions(ctx context.Context, userID string, q core.TransactionQuery) ([]core.Transaction, error) {
	if err := s.requireProfile(ctx, userID); err != nil {
		return nil, err
	}
	filter := ledger.TransactionFilter{
		OwnerID:      userID,
		NameContains: q.Name,
		NewestFirst:  true,
	}
	if q.HasRange() {
		filter.From, filter.To = q.Start, q.End
	}
	txs, err := withRetry(ctx, s.retry, "query_transactions", func(ctx context.Context) ([]core.Transaction, error) {
		return s.store.QueryTransactions(ctx, filter)
	})
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	return txs, nil
}

func (s *TransactionService) requireProfile(ctx context.Context, userID string) error {
	_, err := withRetry(ctx, s.retry, "find_user_profile", func(ctx context.Context) (core.UserProfile, error) {
		return s.store.FindUserProfile(ctx, userID)
	})
	return err
}

func (s *TransactionService) checkCategory(ctx context.Context, id int64) error {
	_, err := withRetry(ctx, s.retry, "find_category", func(ctx context.Context) (core.Category, error) {
		return s.store.FindCategory(ctx, id)
	})
	return err
}

// publish never fails the request: the ledger row is already committed.
func (s *TransactionService) publish(ctx context.Context, event *amqp.LedgerEvent) {
	if s.publisher == nil {
		log.FromContext(ctx).DebugContext(ctx, "No event publisher configured, skipping ledger event",
			log.FieldEventKind, event.Kind)
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, event); err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldEventID, event.EventID,
			log.FieldEventKind, event.Kind,
			log.FieldTransactionID, event.TransactionID,
			log.FieldError, err)
	}
}

func unknownCategory(id int64) string {
	return fmt.Sprintf("invalid pk %q - object does not exist", fmt.Sprint(id))
}
