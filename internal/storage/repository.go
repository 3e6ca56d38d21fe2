package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"finances/internal/core"
	"finances/internal/ledger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Repository is the SQL ledger store for SQLite and PostgreSQL.
type Repository struct {
	db      *sql.DB
	dialect Dialect
	queries *Queries
}

var _ ledger.Store = (*Repository)(nil)

// SQLiteDSN enables foreign keys (cascade and set-null rely on them) and
// waits on a locked database instead of failing immediately.
func SQLiteDSN(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func NewSQLiteRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	return open(SQLite, SQLiteDSN(dbPath), nil)
}

func NewPostgresRepository(url string) (*Repository, error) {
	return open(Postgres, url, func(db *sql.DB) {
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	})
}

func open(dialect Dialect, dsn string, tune func(*sql.DB)) (*Repository, error) {
	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}
	if tune != nil {
		tune(db)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dialect, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{
		db:      db,
		dialect: dialect,
		queries: New(db, dialect),
	}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) Dialect() Dialect {
	return r.dialect
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) FindUserProfile(ctx context.Context, userID string) (core.UserProfile, error) {
	p, err := r.queries.GetUserProfile(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.UserProfile{}, core.ErrProfileNotFound
	}
	if err != nil {
		return core.UserProfile{}, fmt.Errorf("get user profile: %w", err)
	}
	return toProfile(p), nil
}

func (r *Repository) CreateUserProfile(ctx context.Context, userID string) (core.UserProfile, error) {
	n, err := r.queries.CreateUserProfile(ctx, userID)
	if err != nil {
		return core.UserProfile{}, fmt.Errorf("create user profile: %w", err)
	}
	if n == 0 {
		return core.UserProfile{}, core.ErrProfileExists
	}
	slog.InfoContext(ctx, "User profile created", "user_id", userID)
	return core.UserProfile{ID: userID, BudgetLimit: core.FromCents(0)}, nil
}

func (r *Repository) UpdateBudgetLimit(ctx context.Context, userID string, limit decimal.Decimal) (core.UserProfile, error) {
	n, err := r.queries.UpdateBudgetLimit(ctx, userID, core.ToCents(limit))
	if err != nil {
		return core.UserProfile{}, fmt.Errorf("update budget limit: %w", err)
	}
	if n == 0 {
		return core.UserProfile{}, core.ErrProfileNotFound
	}
	return core.UserProfile{ID: userID, BudgetLimit: core.FromCents(core.ToCents(limit))}, nil
}

func (r *Repository) QueryTransactions(ctx context.Context, f ledger.TransactionFilter) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx, ListTransactionsParams{
		OwnerID:      f.OwnerID,
		Type:         string(f.Type),
		From:         f.From,
		To:           f.To,
		NameContains: f.NameContains,
		NewestFirst:  f.NewestFirst,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, toTransaction(row))
	}
	return out, nil
}

func (r *Repository) InsertTransaction(ctx context.Context, in core.NewTransaction) (core.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	if _, err := q.LockUserProfile(ctx, in.OwnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, core.ErrProfileNotFound
		}
		return core.Transaction{}, fmt.Errorf("lock user profile: %w", err)
	}

	var categoryID sql.NullInt64
	var categoryName string
	if in.CategoryID != nil {
		c, err := q.GetCategory(ctx, *in.CategoryID)
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, core.ErrCategoryNotFound
		}
		if err != nil {
			return core.Transaction{}, fmt.Errorf("get category: %w", err)
		}
		categoryID = sql.NullInt64{Int64: c.ID, Valid: true}
		categoryName = c.Name
	}

	id, err := q.CreateTransaction(ctx, CreateTransactionParams{
		OwnerID:     in.OwnerID,
		Name:        in.Name,
		NameFolded:  core.FoldName(in.Name),
		Date:        in.Date,
		AmountCents: core.ToCents(in.Amount),
		Type:        string(in.Type),
		CategoryID:  categoryID,
		FromAccount: in.FromAccount,
		Note:        sql.NullString{String: in.Note, Valid: in.Note != ""},
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"user_id", in.OwnerID,
		"type", in.Type,
		"amount_cents", core.ToCents(in.Amount))

	return core.Transaction{
		ID:           id,
		OwnerID:      in.OwnerID,
		Name:         in.Name,
		Date:         in.Date,
		Amount:       core.FromCents(core.ToCents(in.Amount)),
		Type:         in.Type,
		CategoryID:   in.CategoryID,
		CategoryName: categoryName,
		FromAccount:  in.FromAccount,
		Note:         in.Note,
	}, nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, ownerID string, id int64) error {
	n, err := r.queries.DeleteTransaction(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return core.ErrTransactionNotFound
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id, "user_id", ownerID)
	return nil
}

func (r *Repository) FindCategory(ctx context.Context, id int64) (core.Category, error) {
	c, err := r.queries.GetCategory(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return core.Category{ID: c.ID, Name: c.Name}, nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, 0, len(rows))
	for _, c := range rows {
		out = append(out, core.Category{ID: c.ID, Name: c.Name})
	}
	return out, nil
}

func (r *Repository) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	id, err := r.queries.CreateCategory(ctx, name)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return core.Category{ID: id, Name: name}, nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n == 0 {
		return core.ErrCategoryNotFound
	}
	return nil
}

func toProfile(p UserProfile) core.UserProfile {
	return core.UserProfile{ID: p.ID, BudgetLimit: core.FromCents(p.BudgetLimitCents)}
}

func toTransaction(row Transaction) core.Transaction {
	tx := core.Transaction{
		ID:          row.ID,
		OwnerID:     row.OwnerID,
		Name:        row.Name,
		Date:        row.Date.Date,
		Amount:      core.FromCents(row.AmountCents),
		Type:        core.TransactionType(row.Type),
		FromAccount: row.FromAccount,
		Note:        row.Note.String,
	}
	if row.CategoryID.Valid {
		id := row.CategoryID.Int64
		tx.CategoryID = &id
		tx.CategoryName = row.CategoryName.String
	}
	return tx
}
