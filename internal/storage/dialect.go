package storage

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"finances/internal/core"
)

// Dialect selects the SQL flavour of a repository.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

func (d Dialect) driverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite"
}

// rebind rewrites ? placeholders into $N for PostgreSQL.
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// lockRow is appended to single-row selects that must serialize writers.
// SQLite serializes writers at the database level already.
func (d Dialect) lockRow() string {
	if d == Postgres {
		return " FOR UPDATE"
	}
	return ""
}

func (d Dialect) dateArg(date core.Date) any {
	if d == Postgres {
		return date.Time
	}
	return date.String()
}

// dbDate scans DATE columns (PostgreSQL) and ISO text columns (SQLite).
type dbDate struct {
	core.Date
}

func (d *dbDate) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Date = core.DateOf(v)
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	case nil:
		return fmt.Errorf("scan date: unexpected NULL")
	}
	return fmt.Errorf("scan date: unsupported type %T", src)
}

func (d *dbDate) parse(s string) error {
	if len(s) > len(core.DateLayout) {
		s = s[:len(core.DateLayout)]
	}
	parsed, err := core.ParseDate(s)
	if err != nil {
		return fmt.Errorf("scan date: %w", err)
	}
	d.Date = parsed
	return nil
}

// likePattern builds a substring pattern over folded names, escaped with '\'.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(core.FoldName(s)) + "%"
}
