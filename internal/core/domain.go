package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

const (
	MaxUserIDLength = 50
	MaxNameLength   = 255
)

// UncategorizedLabel is the bucket name for expenses without a category.
const UncategorizedLabel = "Uncategorized"

type (
	TransactionType string

	// Date is a calendar date without a time component, always normalized
	// to midnight UTC.
	Date struct {
		time.Time
	}

	UserProfile struct {
		ID          string
		BudgetLimit decimal.Decimal
	}

	Category struct {
		ID   int64
		Name string
	}

	Transaction struct {
		ID           int64
		OwnerID      string
		Name         string
		Date         Date
		Amount       decimal.Decimal
		Type         TransactionType
		CategoryID   *int64
		CategoryName string // empty when CategoryID is nil
		FromAccount  string
		Note         string
	}

	// NewTransaction is a validated transaction ready to be inserted.
	NewTransaction struct {
		OwnerID     string
		Name        string
		Date        Date
		Amount      decimal.Decimal
		Type        TransactionType
		CategoryID  *int64
		FromAccount string
		Note        string
	}

	// TransactionDraft carries raw, unvalidated input for a new transaction.
	TransactionDraft struct {
		Name        string
		Date        string
		Amount      string
		Type        string
		CategoryID  *int64
		FromAccount string
		Note        string
	}

	// TransactionQuery holds the optional filters of a transaction listing.
	TransactionQuery struct {
		Name  string
		Start Date
		End   Date
	}
)

// ParseTransactionType accepts the enum values case-insensitively. The
// legacy stored spellings "Income" and "Outcome" are also recognized.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INCOME":
		return Income, nil
	case "EXPENSE", "OUTCOME":
		return Expense, nil
	}
	return "", fmt.Errorf("%q is not a valid choice", s)
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool  { return d.Time.Equal(o.Time) }

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// HasRange reports whether both bounds are set. A single bound is ignored.
func (q TransactionQuery) HasRange() bool {
	return !q.Start.IsZero() && !q.End.IsZero()
}

// FoldName is the case-folded form used for name searches. Stores compare
// folded names against folded needles so matching does not depend on the
// database collation.
func FoldName(s string) string {
	return strings.ToLower(s)
}

// ValidateUserID checks the shape of a caller-supplied user identifier.
func ValidateUserID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return NewValidationError("user_id", "this field is required")
	}
	if len(id) > MaxUserIDLength {
		return NewValidationError("user_id", fmt.Sprintf("ensure this field has no more than %d characters", MaxUserIDLength))
	}
	return nil
}

// Validate checks every field of the draft and reports all failures at once.
func (d TransactionDraft) Validate(ownerID string) (NewTransaction, error) {
	var verr ValidationError
	out := NewTransaction{
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(d.Name),
		CategoryID:  d.CategoryID,
		FromAccount: strings.TrimSpace(d.FromAccount),
		Note:        strings.TrimSpace(d.Note),
	}

	checkText(&verr, "name", out.Name)

	if strings.TrimSpace(d.Date) == "" {
		verr.Add("date", "this field is required")
	} else if date, err := ParseDate(d.Date); err != nil {
		verr.Add("date", err.Error())
	} else {
		out.Date = date
	}

	if strings.TrimSpace(d.Amount) == "" {
		verr.Add("amount", "this field is required")
	} else if amount, err := ParseAmount(d.Amount); err != nil {
		verr.Add("amount", err.Error())
	} else {
		out.Amount = amount
	}

	if strings.TrimSpace(d.Type) == "" {
		verr.Add("type", "this field is required")
	} else if typ, err := ParseTransactionType(d.Type); err != nil {
		verr.Add("type", err.Error())
	} else {
		out.Type = typ
	}

	checkText(&verr, "from_account", out.FromAccount)

	if d.CategoryID != nil && *d.CategoryID <= 0 {
		verr.Add("category", "invalid category id")
	}

	if verr.HasErrors() {
		return NewTransaction{}, &verr
	}
	return out, nil
}

func checkText(verr *ValidationError, field, value string) {
	switch {
	case value == "":
		verr.Add(field, "this field is required")
	case len(value) > MaxNameLength:
		verr.Add(field, fmt.Sprintf("ensure this field has no more than %d characters", MaxNameLength))
	}
}

// ValidateCategoryName checks a category name for creation. The label used
// for expenses without a category is reserved.
func ValidateCategoryName(name string) (string, error) {
	var verr ValidationError
	name = strings.TrimSpace(name)
	checkText(&verr, "name", name)
	if strings.EqualFold(name, UncategorizedLabel) {
		verr.Add("name", fmt.Sprintf("%q is reserved for expenses without a category", UncategorizedLabel))
	}
	if verr.HasErrors() {
		return "", &verr
	}
	return name, nil
}
