// Package ledger defines the persistence ports of the bookkeeping core.
package ledger

import (
	"context"

	"finances/internal/core"
	"github.com/shopspring/decimal"
)

// TransactionFilter selects transactions of a single owner. Zero values
// leave the corresponding criterion unset.
type TransactionFilter struct {
	OwnerID      string
	Type         core.TransactionType
	From         core.Date // inclusive
	To           core.Date // inclusive
	NameContains string    // case-insensitive
	// NewestFirst orders by date then id descending. The default order is
	// date then id ascending.
	NewestFirst bool
}

// Ports for the ledger store adapters.
type (
	ProfileStore interface {
		// FindUserProfile returns core.ErrProfileNotFound when absent.
		FindUserProfile(ctx context.Context, userID string) (core.UserProfile, error)
		// CreateUserProfile returns core.ErrProfileExists on a duplicate id.
		CreateUserProfile(ctx context.Context, userID string) (core.UserProfile, error)
		UpdateBudgetLimit(ctx context.Context, userID string, limit decimal.Decimal) (core.UserProfile, error)
	}

	TransactionStore interface {
		QueryTransactions(ctx context.Context, filter TransactionFilter) ([]core.Transaction, error)
		// InsertTransaction checks the owner and the optional category and
		// inserts the row atomically. It returns core.ErrProfileNotFound or
		// core.ErrCategoryNotFound without writing anything.
		InsertTransaction(ctx context.Context, tx core.NewTransaction) (core.Transaction, error)
		// DeleteTransaction removes the transaction only if ownerID owns it,
		// otherwise it returns core.ErrTransactionNotFound.
		DeleteTransaction(ctx context.Context, ownerID string, id int64) error
	}

	CategoryStore interface {
		FindCategory(ctx context.Context, id int64) (core.Category, error)
		// ListCategories returns every category ordered by name.
		ListCategories(ctx context.Context) ([]core.Category, error)
		CreateCategory(ctx context.Context, name string) (core.Category, error)
		// DeleteCategory detaches the category from its transactions.
		DeleteCategory(ctx context.Context, id int64) error
	}

	Store interface {
		ProfileStore
		TransactionStore
		CategoryStore
		Ping(ctx context.Context) error
	}
)
