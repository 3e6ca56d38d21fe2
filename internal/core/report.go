package core

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	shadeHue          = 270
	shadeSaturation   = 50
	shadeMinLightness = 30.0
	shadeMaxLightness = 90.0
	shadeDefault      = 60.0
)

type (
	// BudgetStatus compares the budget limit with this month's spend.
	BudgetStatus struct {
		BudgetLimit     decimal.Decimal
		MonthlyExpenses decimal.Decimal
		Remaining       decimal.Decimal
		Year            int
		Month           int // 1-12
	}

	// CategoryExpense is one slice of the monthly expense breakdown.
	CategoryExpense struct {
		Name  string
		Value decimal.Decimal
		Color string
	}

	// DayTotals holds the income and outcome booked on one weekday.
	DayTotals struct {
		Day     string // Mon..Sun
		Income  decimal.Decimal
		Outcome decimal.Decimal
	}

	// Summary bundles the three dashboard views for one as-of date.
	Summary struct {
		AsOf       Date
		Budget     BudgetStatus
		Categories []CategoryExpense
		Week       []DayTotals
	}
)

// MonthWindow returns the first and last day of asOf's calendar month.
func MonthWindow(asOf Date) (Date, Date) {
	first := NewDate(asOf.Year(), int(asOf.Month()), 1)
	return first, Date{Time: first.AddDate(0, 1, -1)}
}

// WeekToDate returns the Monday of asOf's week and asOf itself.
func WeekToDate(asOf Date) (Date, Date) {
	return asOf.AddDays(-mondayIndex(asOf.Weekday())), asOf
}

// mondayIndex maps Monday..Sunday to 0..6.
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// DayName returns the three-letter English weekday abbreviation.
func DayName(d time.Weekday) string {
	return d.String()[:3]
}

// SumExpenses adds up the EXPENSE amounts of txs exactly.
func SumExpenses(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Type == Expense {
			total = total.Add(tx.Amount)
		}
	}
	return total.Round(AmountScale)
}

// NewBudgetStatus derives the budget view from a profile and its spend.
func NewBudgetStatus(profile UserProfile, monthly decimal.Decimal, asOf Date) BudgetStatus {
	return BudgetStatus{
		BudgetLimit:     profile.BudgetLimit,
		MonthlyExpenses: monthly,
		Remaining:       profile.BudgetLimit.Sub(monthly),
		Year:            asOf.Year(),
		Month:           int(asOf.Month()),
	}
}

// GroupExpensesByCategory sums EXPENSE amounts per category name. Groups
// keep the order in which each name is first seen in txs and get a purple
// shade each. Transactions without a category land in UncategorizedLabel.
func GroupExpensesByCategory(txs []Transaction) []CategoryExpense {
	index := make(map[string]int)
	var groups []CategoryExpense
	for _, tx := range txs {
		if tx.Type != Expense {
			continue
		}
		name := tx.CategoryName
		if tx.CategoryID == nil || name == "" {
			name = UncategorizedLabel
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, CategoryExpense{Name: name, Value: decimal.Zero})
		}
		groups[i].Value = groups[i].Value.Add(tx.Amount)
	}

	shades := PurpleShades(len(groups))
	for i := range groups {
		groups[i].Color = shades[i]
	}
	return groups
}

// PurpleShades returns n HSL colors of hue 270 and saturation 50%, with
// lightness spread evenly over [30, 90]. A single shade uses 60%.
func PurpleShades(n int) []string {
	shades := make([]string, 0, n)
	for i := 0; i < n; i++ {
		lightness := shadeDefault
		if n > 1 {
			lightness = shadeMinLightness + (shadeMaxLightness-shadeMinLightness)*(float64(i)/float64(n-1))
		}
		shades = append(shades, fmt.Sprintf("hsl(%d, %d%%, %s%%)", shadeHue, shadeSaturation,
			strconv.FormatFloat(lightness, 'f', -1, 64)))
	}
	return shades
}

// RollupWeek buckets income and outcome by weekday for the week-to-date
// window ending at asOf. Days without transactions are omitted and the
// result is ordered Monday to Sunday.
func RollupWeek(txs []Transaction, asOf Date) []DayTotals {
	start, end := WeekToDate(asOf)
	var days [7]*DayTotals
	for _, tx := range txs {
		if tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		i := mondayIndex(tx.Date.Weekday())
		if days[i] == nil {
			days[i] = &DayTotals{Day: DayName(tx.Date.Weekday()), Income: decimal.Zero, Outcome: decimal.Zero}
		}
		if tx.Type == Income {
			days[i].Income = days[i].Income.Add(tx.Amount)
		} else {
			days[i].Outcome = days[i].Outcome.Add(tx.Amount)
		}
	}

	out := make([]DayTotals, 0, 7)
	for i := 0; i <= mondayIndex(asOf.Weekday()); i++ {
		if days[i] != nil {
			out = append(out, *days[i])
		}
	}
	return out
}
