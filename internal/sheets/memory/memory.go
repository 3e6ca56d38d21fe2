package memory

import (
	"context"
	"fmt"
	"sync"

	"finances/internal/sheets"
)

// Exporter keeps exported rows in process.
type Exporter struct {
	mu   sync.Mutex
	rows []sheets.Row
}

var _ sheets.Exporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{}
}

// AppendTransaction stores the row and returns a synthetic row reference.
func (e *Exporter) AppendTransaction(_ context.Context, row sheets.Row) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := e.indexOf(row.ID); i >= 0 {
		return fmt.Sprintf("mem:%d", i+1), nil
	}
	e.rows = append(e.rows, row)
	return fmt.Sprintf("mem:%d", len(e.rows)), nil
}

func (e *Exporter) DeleteTransaction(_ context.Context, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.indexOf(id)
	if i < 0 {
		return sheets.ErrRowNotFound
	}
	e.rows = append(e.rows[:i], e.rows[i+1:]...)
	return nil
}

// Rows returns a copy of the exported rows in sheet order.
func (e *Exporter) Rows() []sheets.Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]sheets.Row(nil), e.rows...)
}

func (e *Exporter) indexOf(id int64) int {
	for i, r := range e.rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}
