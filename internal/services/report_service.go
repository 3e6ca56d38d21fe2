package services

import (
	"context"
	"fmt"

	"finances/internal/core"
	"finances/internal/ledger"
	"golang.org/x/sync/errgroup"
)

// ReportService computes the budget, category and weekly views of a user.
// A zero as-of date means "today" according to the service clock.
type ReportService struct {
	store ledger.Store
	clock core.Clock
	retry RetryPolicy
}

func NewReportService(store ledger.Store, clock core.Clock, retry RetryPolicy) *ReportService {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &ReportService{store: store, clock: clock, retry: retry}
}

// GetUserBudget returns the budget limit next to this month's expenses.
func (s *ReportService) GetUserBudget(ctx context.Context, userID string, asOf core.Date) (core.BudgetStatus, error) {
	asOf = core.Resolve(s.clock, asOf)
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return core.BudgetStatus{}, err
	}
	expenses, err := s.monthExpenses(ctx, userID, asOf)
	if err != nil {
		return core.BudgetStatus{}, err
	}
	return core.NewBudgetStatus(profile, core.SumExpenses(expenses), asOf), nil
}

// GetExpensesByCategory returns this month's expenses grouped by category,
// each with its purple shade.
func (s *ReportService) GetExpensesByCategory(ctx context.Context, userID string, asOf core.Date) ([]core.CategoryExpense, error) {
	asOf = core.Resolve(s.clock, asOf)
	if _, err := s.profile(ctx, userID); err != nil {
		return nil, err
	}
	expenses, err := s.monthExpenses(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}
	return core.GroupExpensesByCategory(expenses), nil
}

// GetTransactionsByWeek returns income and outcome per weekday from Monday
// up to the as-of date.
func (s *ReportService) GetTransactionsByWeek(ctx context.Context, userID string, asOf core.Date) ([]core.DayTotals, error) {
	asOf = core.Resolve(s.clock, asOf)
	if _, err := s.profile(ctx, userID); err != nil {
		return nil, err
	}
	start, end := core.WeekToDate(asOf)
	txs, err := s.query(ctx, ledger.TransactionFilter{OwnerID: userID, From: start, To: end})
	if err != nil {
		return nil, err
	}
	return core.RollupWeek(txs, asOf), nil
}

// Summary computes the three views concurrently for one as-of date.
func (s *ReportService) Summary(ctx context.Context, userID string, asOf core.Date) (core.Summary, error) {
	summary := core.Summary{AsOf: core.Resolve(s.clock, asOf)}
	if _, err := s.profile(ctx, userID); err != nil {
		return core.Summary{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		budget, err := s.GetUserBudget(gctx, userID, summary.AsOf)
		summary.Budget = budget
		return err
	})
	g.Go(func() error {
		categories, err := s.GetExpensesByCategory(gctx, userID, summary.AsOf)
		summary.Categories = categories
		return err
	})
	g.Go(func() error {
		week, err := s.GetTransactionsByWeek(gctx, userID, summary.AsOf)
		summary.Week = week
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Summary{}, err
	}
	return summary, nil
}

func (s *ReportService) profile(ctx context.Context, userID string) (core.UserProfile, error) {
	return withRetry(ctx, s.retry, "find_user_profile", func(ctx context.Context) (core.UserProfile, error) {
		return s.store.FindUserProfile(ctx, userID)
	})
}

func (s *ReportService) monthExpenses(ctx context.Context, userID string, asOf core.Date) ([]core.Transaction, error) {
	first, last := core.MonthWindow(asOf)
	return s.query(ctx, ledger.TransactionFilter{
		OwnerID: userID,
		Type:    core.Expense,
		From:    first,
		To:      last,
	})
}

func (s *ReportService) query(ctx context.Context, filter ledger.TransactionFilter) ([]core.Transaction, error) {
	txs, err := withRetry(ctx, s.retry, "query_transactions", func(ctx context.Context) ([]core.Transaction, error) {
		return s.store.QueryTransactions(ctx, filter)
	})
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	return txs, nil
}
