package storage

import (
	"context"
	"database/sql"
	"strings"

	"finances/internal/core"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db      DBTX
	dialect Dialect
}

func New(db DBTX, dialect Dialect) *Queries {
	return &Queries{db: db, dialect: dialect}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx, dialect: q.dialect}
}

type UserProfile struct {
	ID               string
	BudgetLimitCents int64
}

type Category struct {
	ID   int64
	Name string
}

type Transaction struct {
	ID           int64
	OwnerID      string
	Name         string
	Date         dbDate
	AmountCents  int64
	Type         string
	CategoryID   sql.NullInt64
	CategoryName sql.NullString
	FromAccount  string
	Note         sql.NullString
}

type CreateTransactionParams struct {
	OwnerID     string
	Name        string
	NameFolded  string
	Date        core.Date
	AmountCents int64
	Type        string
	CategoryID  sql.NullInt64
	FromAccount string
	Note        sql.NullString
}

type ListTransactionsParams struct {
	OwnerID      string
	Type         string
	From         core.Date
	To           core.Date
	NameContains string
	NewestFirst  bool
}

const getUserProfile = `SELECT id, budget_limit_cents FROM user_profiles WHERE id = ?`

func (q *Queries) GetUserProfile(ctx context.Context, id string) (UserProfile, error) {
	var p UserProfile
	err := q.db.QueryRowContext(ctx, q.dialect.rebind(getUserProfile), id).Scan(&p.ID, &p.BudgetLimitCents)
	return p, err
}

// LockUserProfile reads the profile row, holding a row lock where the
// dialect supports it.
func (q *Queries) LockUserProfile(ctx context.Context, id string) (UserProfile, error) {
	var p UserProfile
	query := q.dialect.rebind(getUserProfile + q.dialect.lockRow())
	err := q.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.BudgetLimitCents)
	return p, err
}

const createUserProfile = `INSERT INTO user_profiles (id, budget_limit_cents) VALUES (?, 0)
ON CONFLICT (id) DO NOTHING`

func (q *Queries) CreateUserProfile(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, q.dialect.rebind(createUserProfile), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const updateBudgetLimit = `UPDATE user_profiles SET budget_limit_cents = ? WHERE id = ?`

func (q *Queries) UpdateBudgetLimit(ctx context.Context, id string, cents int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, q.dialect.rebind(updateBudgetLimit), cents, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listTransactions = `SELECT t.id, t.owner_id, t.name, t.date, t.amount_cents, t.type,
       t.category_id, c.name, t.from_account, t.note
FROM transactions t
LEFT JOIN categories c ON c.id = t.category_id
WHERE t.owner_id = ?`

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]Transaction, error) {
	var sb strings.Builder
	sb.WriteString(listTransactions)
	args := []any{arg.OwnerID}
	if arg.Type != "" {
		sb.WriteString(" AND t.type = ?")
		args = append(args, arg.Type)
	}
	if !arg.From.IsZero() {
		sb.WriteString(" AND t.date >= ?")
		args = append(args, q.dialect.dateArg(arg.From))
	}
	if !arg.To.IsZero() {
		sb.WriteString(" AND t.date <= ?")
		args = append(args, q.dialect.dateArg(arg.To))
	}
	if arg.NameContains != "" {
		sb.WriteString(` AND t.name_folded LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(arg.NameContains))
	}
	if arg.NewestFirst {
		sb.WriteString(" ORDER BY t.date DESC, t.id DESC")
	} else {
		sb.WriteString(" ORDER BY t.date ASC, t.id ASC")
	}

	rows, err := q.db.QueryContext(ctx, q.dialect.rebind(sb.String()), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.OwnerID,
			&i.Name,
			&i.Date,
			&i.AmountCents,
			&i.Type,
			&i.CategoryID,
			&i.CategoryName,
			&i.FromAccount,
			&i.Note,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createTransaction = `INSERT INTO transactions
    (owner_id, name, name_folded, date, amount_cents, type, category_id, from_account, note)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, q.dialect.rebind(createTransaction),
		arg.OwnerID,
		arg.Name,
		arg.NameFolded,
		q.dialect.dateArg(arg.Date),
		arg.AmountCents,
		arg.Type,
		arg.CategoryID,
		arg.FromAccount,
		arg.Note,
	).Scan(&id)
	return id, err
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ? AND owner_id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, ownerID string, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, q.dialect.rebind(deleteTransaction), id, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getCategory = `SELECT id, name FROM categories WHERE id = ?`

func (q *Queries) GetCategory(ctx context.Context, id int64) (Category, error) {
	var c Category
	err := q.db.QueryRowContext(ctx, q.dialect.rebind(getCategory), id).Scan(&c.ID, &c.Name)
	return c, err
}

const listCategories = `SELECT id, name FROM categories ORDER BY name, id`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createCategory = `INSERT INTO categories (name) VALUES (?) RETURNING id`

func (q *Queries) CreateCategory(ctx context.Context, name string) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, q.dialect.rebind(createCategory), name).Scan(&id)
	return id, err
}

const deleteCategory = `DELETE FROM categories WHERE id = ?`

func (q *Queries) DeleteCategory(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, q.dialect.rebind(deleteCategory), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
