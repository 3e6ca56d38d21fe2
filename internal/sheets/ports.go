package sheets

import (
	"context"
	"errors"
	"strconv"
)

var ErrRowNotFound = errors.New("row not found")

// Row is one exported transaction. Column order is fixed:
// id, owner, date, name, type, amount, category, from_account, note.
type Row struct {
	ID          int64
	OwnerID     string
	Date        string
	Name        string
	Type        string
	Amount      string
	Category    string
	FromAccount string
	Note        string
}

// Values returns the row cells in column order.
func (r Row) Values() []any {
	return []any{r.Key(), r.OwnerID, r.Date, r.Name, r.Type, r.Amount, r.Category, r.FromAccount, r.Note}
}

// Key is the first-column value identifying the row.
func (r Row) Key() string {
	return strconv.FormatInt(r.ID, 10)
}

// Ports for outbound adapters.
type (
	// Exporter mirrors ledger transactions into a spreadsheet. Appending a
	// row whose id is already present is a no-op.
	Exporter interface {
		AppendTransaction(ctx context.Context, row Row) (rowRef string, err error)
		// DeleteTransaction removes the row whose first column equals id and
		// returns ErrRowNotFound when there is none.
		DeleteTransaction(ctx context.Context, id int64) error
	}
)
