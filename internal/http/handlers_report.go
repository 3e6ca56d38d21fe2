package http

import (
	"net/http"
)

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	asOf, err := ParseAsOf(r.URL.Query())
	if err != nil {
		s.writeError(w, r, "get_budget", err)
		return
	}

	status, err := s.reports.GetUserBudget(r.Context(), userID, asOf)
	if err != nil {
		s.writeError(w, r, "get_budget", err)
		return
	}
	NewJSONResponse().Body(newBudgetView(status)).Write(w)
}

func (s *Server) handleExpensesByCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	asOf, err := ParseAsOf(r.URL.Query())
	if err != nil {
		s.writeError(w, r, "expenses_by_categories", err)
		return
	}

	groups, err := s.reports.GetExpensesByCategory(r.Context(), userID, asOf)
	if err != nil {
		s.writeError(w, r, "expenses_by_categories", err)
		return
	}
	NewJSONResponse().Body(newCategoryExpenseViews(groups)).Write(w)
}

func (s *Server) handleTransactionsByWeek(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	asOf, err := ParseAsOf(r.URL.Query())
	if err != nil {
		s.writeError(w, r, "transactions_by_week", err)
		return
	}

	days, err := s.reports.GetTransactionsByWeek(r.Context(), userID, asOf)
	if err != nil {
		s.writeError(w, r, "transactions_by_week", err)
		return
	}
	NewJSONResponse().Body(newDayTotalsViews(days)).Write(w)
}

// handleSummary returns the three dashboard views in one response.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	asOf, err := ParseAsOf(r.URL.Query())
	if err != nil {
		s.writeError(w, r, "summary", err)
		return
	}

	summary, err := s.reports.Summary(r.Context(), userID, asOf)
	if err != nil {
		s.writeError(w, r, "summary", err)
		return
	}
	NewJSONResponse().Body(newSummaryView(summary)).Write(w)
}
