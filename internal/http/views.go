package http

import (
	"finances/internal/core"
)

// Wire representations. Amounts are decimal strings with two fraction
// digits and dates are YYYY-MM-DD.
type (
	profileView struct {
		UserID      string `json:"user_id"`
		BudgetLimit string `json:"budget_limit"`
	}

	budgetView struct {
		BudgetLimit     string `json:"budgetLimit"`
		MonthlyExpenses string `json:"monthlyExpenses"`
		Remaining       string `json:"remaining"`
		Year            int    `json:"year"`
		Month           int    `json:"month"`
	}

	categoryExpenseView struct {
		Name  string `json:"name"`
		Value string `json:"value"`
		Color string `json:"color"`
	}

	dayTotalsView struct {
		Day     string `json:"day"`
		Income  string `json:"income"`
		Outcome string `json:"outcome"`
	}

	summaryView struct {
		AsOf       string                `json:"as_of"`
		Budget     budgetView            `json:"budget"`
		Categories []categoryExpenseView `json:"expenses_by_categories"`
		Week       []dayTotalsView       `json:"transactions_by_week"`
	}

	transactionView struct {
		ID           int64   `json:"id"`
		Name         string  `json:"name"`
		Date         string  `json:"date"`
		Amount       string  `json:"amount"`
		Type         string  `json:"type"`
		CategoryID   *int64  `json:"category_id"`
		CategoryName *string `json:"category_name"`
		FromAccount  string  `json:"from_account"`
		Note         string  `json:"note"`
	}

	categoryView struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
)

func newProfileView(p core.UserProfile) profileView {
	return profileView{UserID: p.ID, BudgetLimit: core.FormatAmount(p.BudgetLimit)}
}

func newBudgetView(b core.BudgetStatus) budgetView {
	return budgetView{
		BudgetLimit:     core.FormatAmount(b.BudgetLimit),
		MonthlyExpenses: core.FormatAmount(b.MonthlyExpenses),
		Remaining:       core.FormatAmount(b.Remaining),
		Year:            b.Year,
		Month:           b.Month,
	}
}

func newCategoryExpenseViews(in []core.CategoryExpense) []categoryExpenseView {
	out := make([]categoryExpenseView, 0, len(in))
	for _, c := range in {
		out = append(out, categoryExpenseView{Name: c.Name, Value: core.FormatAmount(c.Value), Color: c.Color})
	}
	return out
}

func newDayTotalsViews(in []core.DayTotals) []dayTotalsView {
	out := make([]dayTotalsView, 0, len(in))
	for _, d := range in {
		out = append(out, dayTotalsView{
			Day:     d.Day,
			Income:  core.FormatAmount(d.Income),
			Outcome: core.FormatAmount(d.Outcome),
		})
	}
	return out
}

func newSummaryView(s core.Summary) summaryView {
	return summaryView{
		AsOf:       s.AsOf.String(),
		Budget:     newBudgetView(s.Budget),
		Categories: newCategoryExpenseViews(s.Categories),
		Week:       newDayTotalsViews(s.Week),
	}
}

func newTransactionView(tx core.Transaction) transactionView {
	v := transactionView{
		ID:          tx.ID,
		Name:        tx.Name,
		Date:        tx.Date.String(),
		Amount:      core.FormatAmount(tx.Amount),
		Type:        string(tx.Type),
		CategoryID:  tx.CategoryID,
		FromAccount: tx.FromAccount,
		Note:        tx.Note,
	}
	if tx.CategoryID != nil {
		name := tx.CategoryName
		v.CategoryName = &name
	}
	return v
}

func newTransactionViews(in []core.Transaction) []transactionView {
	out := make([]transactionView, 0, len(in))
	for _, tx := range in {
		out = append(out, newTransactionView(tx))
	}
	return out
}

func newCategoryViews(in []core.Category) []categoryView {
	out := make([]categoryView, 0, len(in))
	for _, c := range in {
		out = append(out, categoryView{ID: c.ID, Name: c.Name})
	}
	return out
}
