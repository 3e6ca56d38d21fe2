package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"finances/internal/cache"
	"finances/internal/core"
	"finances/internal/ledger/memory"
	"finances/internal/services"
)

// Wednesday.
var testToday = core.NewDate(2024, 5, 15)

func newTestServer(t *testing.T, limit int) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New([]string{"Food", "Rent"})
	clock := core.FixedClock(testToday)
	srv := NewServer(":0", Dependencies{
		Reports:            services.NewReportService(store, clock, services.NoRetry()),
		Transactions:       services.NewTransactionService(store, nil, services.NoRetry()),
		Profiles:           services.NewProfileService(store, services.NoRetry()),
		Categories:         services.NewCategoryService(store, cache.NewLRUCache[[]core.Category](4, time.Minute), services.NoRetry()),
		Store:              store,
		RateLimitPerMinute: limit,
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, store
}

func do(t *testing.T, srv *Server, method, target, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set(HeaderUserID, user)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer(t, 60)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d body=%s", path, rr.Code, rr.Body.String())
		}
	}

	rr := do(t, srv, http.MethodGet, "/metrics", "", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "http_requests_total") {
		t.Fatalf("unexpected metrics response: %d %s", rr.Code, rr.Body.String())
	}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("db down") }

func TestReadyReportsStoreFailure(t *testing.T) {
	srv := NewServer(":0", Dependencies{Store: failingPinger{}})
	defer srv.Shutdown(context.Background())

	rr := do(t, srv, http.MethodGet, "/readyz", "", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	body := decode[map[string]any](t, rr)
	if body["status"] != "not_ready" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestProfileEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, 60)

	if rr := do(t, srv, http.MethodPost, "/api/profile", "", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("create without identity: expected 400, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/api/profile", "", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("get without identity: expected 401, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/api/profile", "ghost", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown profile: expected 404, got %d", rr.Code)
	}

	rr := do(t, srv, http.MethodPost, "/api/profile", "u", "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", rr.Code)
	}
	if p := decode[profileView](t, rr); p.UserID != "u" || p.BudgetLimit != "0.00" {
		t.Fatalf("unexpected profile %+v", p)
	}
	if rr := do(t, srv, http.MethodPost, "/api/profile", "u", ""); rr.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", rr.Code)
	}

	rr = do(t, srv, http.MethodPatch, "/api/budget", "u", `{"budget_limit": 500}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update budget: expected 200, got %d %s", rr.Code, rr.Body.String())
	}
	if p := decode[profileView](t, rr); p.BudgetLimit != "500.00" {
		t.Fatalf("unexpected budget %q", p.BudgetLimit)
	}

	rr = do(t, srv, http.MethodPatch, "/api/budget", "u", `{"budget_limit": "abc"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad budget: expected 400, got %d", rr.Code)
	}
	if body := decode[errorBody](t, rr); body.Fields["budget_limit"] == "" {
		t.Fatalf("expected budget_limit field error, got %+v", body)
	}
}

func TestUserIDQueryFallback(t *testing.T) {
	srv, _ := newTestServer(t, 60)
	if rr := do(t, srv, http.MethodPost, "/api/profile?user_id=q", "", ""); rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/api/profile?user_id=q", "", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func seedLedger(t *testing.T, srv *Server) {
	t.Helper()
	if rr := do(t, srv, http.MethodPost, "/api/profile", "u", ""); rr.Code != http.StatusCreated {
		t.Fatalf("create profile: %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPatch, "/api/budget", "u", `{"budget_limit": "500.00"}`); rr.Code != http.StatusOK {
		t.Fatalf("set budget: %d", rr.Code)
	}
	for _, body := range []string{
		`{"name": "groceries", "date": "2024-05-13", "amount": "120.50", "type": "EXPENSE", "category_id": 1, "from_account": "card"}`,
		`{"name": "taxi", "date": "2024-05-14", "amount": 79.5, "type": "expense", "from_account": "cash"}`,
		`{"name": "salary", "date": "2024-05-15", "amount": "1000", "type": "INCOME", "from_account": "bank", "note": "may"}`,
		`{"name": "old rent", "date": "2024-04-30", "amount": "700", "type": "EXPENSE", "category_id": 2, "from_account": "bank"}`,
	} {
		if rr := do(t, srv, http.MethodPost, "/api/transactions", "u", body); rr.Code != http.StatusCreated {
			t.Fatalf("add %s: %d %s", body, rr.Code, rr.Body.String())
		}
	}
}

func TestReportEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, 60)
	seedLedger(t, srv)

	rr := do(t, srv, http.MethodGet, "/api/budget", "u", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("budget: %d %s", rr.Code, rr.Body.String())
	}
	budget := decode[budgetView](t, rr)
	if budget.BudgetLimit != "500.00" || budget.MonthlyExpenses != "200.00" || budget.Remaining != "300.00" {
		t.Fatalf("unexpected budget %+v", budget)
	}
	if budget.Year != 2024 || budget.Month != 5 {
		t.Fatalf("unexpected period %d-%d", budget.Year, budget.Month)
	}

	rr = do(t, srv, http.MethodGet, "/api/budget?as_of=2024-04-10", "u", "")
	if b := decode[budgetView](t, rr); b.MonthlyExpenses != "700.00" {
		t.Fatalf("april expenses: got %q", b.MonthlyExpenses)
	}

	rr = do(t, srv, http.MethodGet, "/api/expenses-by-categories", "u", "")
	groups := decode[[]categoryExpenseView](t, rr)
	want := []categoryExpenseView{
		{Name: "Food", Value: "120.50", Color: "hsl(270, 50%, 30%)"},
		{Name: "Uncategorized", Value: "79.50", Color: "hsl(270, 50%, 90%)"},
	}
	if len(groups) != len(want) {
		t.Fatalf("expected %d groups, got %+v", len(want), groups)
	}
	for i := range want {
		if groups[i] != want[i] {
			t.Errorf("group %d = %+v, want %+v", i, groups[i], want[i])
		}
	}

	rr = do(t, srv, http.MethodGet, "/api/transactions-by-week", "u", "")
	days := decode[[]dayTotalsView](t, rr)
	wantDays := []dayTotalsView{
		{Day: "Mon", Income: "0.00", Outcome: "120.50"},
		{Day: "Tue", Income: "0.00", Outcome: "79.50"},
		{Day: "Wed", Income: "1000.00", Outcome: "0.00"},
	}
	if len(days) != len(wantDays) {
		t.Fatalf("expected %d days, got %+v", len(wantDays), days)
	}
	for i := range wantDays {
		if days[i] != wantDays[i] {
			t.Errorf("day %d = %+v, want %+v", i, days[i], wantDays[i])
		}
	}

	rr = do(t, srv, http.MethodGet, "/api/summary?as_of=2024-05-14", "u", "")
	summary := decode[summaryView](t, rr)
	if summary.AsOf != "2024-05-14" || len(summary.Week) != 2 || summary.Budget.MonthlyExpenses != "200.00" {
		t.Fatalf("unexpected summary %+v", summary)
	}

	if rr := do(t, srv, http.MethodGet, "/api/budget?as_of=yesterday", "u", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad as_of: expected 400, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/api/budget", "", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("no identity: expected 401, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/api/expenses-by-categories", "ghost", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown profile: expected 404, got %d", rr.Code)
	}
}

func TestTransactionEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, 60)
	seedLedger(t, srv)

	rr := do(t, srv, http.MethodGet, "/api/transactions", "u", "")
	txs := decode[[]transactionView](t, rr)
	if len(txs) != 4 || txs[0].Name != "salary" || txs[3].Name != "old rent" {
		t.Fatalf("unexpected listing %+v", txs)
	}
	if txs[0].CategoryName != nil || txs[0].Note != "may" {
		t.Fatalf("unexpected salary row %+v", txs[0])
	}

	rr = do(t, srv, http.MethodGet, "/api/transactions?name=GROC", "u", "")
	txs = decode[[]transactionView](t, rr)
	if len(txs) != 1 || txs[0].CategoryName == nil || *txs[0].CategoryName != "Food" || txs[0].Amount != "120.50" {
		t.Fatalf("unexpected name filter result %+v", txs)
	}

	rr = do(t, srv, http.MethodGet, "/api/transactions?start_date=2024-05-14&end_date=2024-05-31", "u", "")
	if txs = decode[[]transactionView](t, rr); len(txs) != 2 {
		t.Fatalf("expected 2 in range, got %+v", txs)
	}

	rr = do(t, srv, http.MethodGet, "/api/transactions?start_date=2024-05-14", "u", "")
	if txs = decode[[]transactionView](t, rr); len(txs) != 4 {
		t.Fatalf("a single bound must be ignored, got %d rows", len(txs))
	}

	if rr := do(t, srv, http.MethodGet, "/api/transactions?end_date=31/05/2024", "u", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad end_date: expected 400, got %d", rr.Code)
	}

	rr = do(t, srv, http.MethodPost, "/api/transactions", "u",
		`{"name": "", "date": "2024-13-01", "amount": "1.234", "type": "GIFT", "category_id": 999}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid draft: expected 400, got %d", rr.Code)
	}
	body := decode[errorBody](t, rr)
	for _, field := range []string{"name", "date", "amount", "type", "from_account", "category"} {
		if body.Fields[field] == "" {
			t.Errorf("expected error for %s, got %+v", field, body.Fields)
		}
	}

	if rr := do(t, srv, http.MethodPost, "/api/transactions", "u", `not json`); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad JSON: expected 400, got %d", rr.Code)
	}

	rr = do(t, srv, http.MethodGet, "/api/transactions?name=taxi", "u", "")
	taxi := decode[[]transactionView](t, rr)[0]

	if rr := do(t, srv, http.MethodDelete, "/api/transactions/"+itoa(taxi.ID), "other", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("delete without profile: expected 404, got %d", rr.Code)
	}
	do(t, srv, http.MethodPost, "/api/profile", "other", "")
	if rr := do(t, srv, http.MethodDelete, "/api/transactions/"+itoa(taxi.ID), "other", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("foreign delete: expected 404, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodDelete, "/api/transactions/"+itoa(taxi.ID), "u", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodDelete, "/api/transactions/"+itoa(taxi.ID), "u", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodDelete, "/api/transactions/abc", "u", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", rr.Code)
	}

	rr = do(t, srv, http.MethodGet, "/api/budget", "u", "")
	if b := decode[budgetView](t, rr); b.MonthlyExpenses != "120.50" {
		t.Fatalf("expected 120.50 after delete, got %q", b.MonthlyExpenses)
	}

	rr = do(t, srv, http.MethodGet, "/metrics", "", "")
	if !strings.Contains(rr.Body.String(), "transactions_created_total 4") ||
		!strings.Contains(rr.Body.String(), "transactions_deleted_total 1") {
		t.Fatalf("unexpected metrics:\n%s", rr.Body.String())
	}
}

func TestCategoryEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, 60)
	seedLedger(t, srv)

	rr := do(t, srv, http.MethodGet, "/api/categories", "u", "")
	cats := decode[[]categoryView](t, rr)
	if len(cats) != 2 || cats[0].Name != "Food" || cats[1].Name != "Rent" {
		t.Fatalf("unexpected categories %+v", cats)
	}

	rr = do(t, srv, http.MethodPost, "/api/categories", "u", `{"name": " Books "}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", rr.Code)
	}
	if c := decode[categoryView](t, rr); c.Name != "Books" || c.ID == 0 {
		t.Fatalf("unexpected category %+v", c)
	}
	if rr := do(t, srv, http.MethodPost, "/api/categories", "u", `{"name": ""}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("blank name: expected 400, got %d", rr.Code)
	}

	rr = do(t, srv, http.MethodGet, "/api/categories", "u", "")
	if cats = decode[[]categoryView](t, rr); len(cats) != 3 {
		t.Fatalf("expected the cache to be refreshed, got %+v", cats)
	}

	if rr := do(t, srv, http.MethodDelete, "/api/categories/1", "u", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodDelete, "/api/categories/1", "u", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rr.Code)
	}

	rr = do(t, srv, http.MethodGet, "/api/expenses-by-categories", "u", "")
	groups := decode[[]categoryExpenseView](t, rr)
	if len(groups) != 1 || groups[0].Name != "Uncategorized" || groups[0].Value != "200.00" {
		t.Fatalf("expected expenses to move to Uncategorized, got %+v", groups)
	}
}

func TestRateLimit(t *testing.T) {
	srv, _ := newTestServer(t, 2)

	for i := 0; i < 2; i++ {
		if rr := do(t, srv, http.MethodGet, "/api/profile", "ghost", ""); rr.Code != http.StatusNotFound {
			t.Fatalf("request %d: expected 404, got %d", i, rr.Code)
		}
	}
	rr := do(t, srv, http.MethodGet, "/api/profile", "ghost", "")
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected 429 with Retry-After, got %d %q", rr.Code, rr.Header().Get("Retry-After"))
	}

	// Other users and probes are counted separately.
	if rr := do(t, srv, http.MethodGet, "/api/profile", "someone", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("other user: expected 404, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/healthz", "ghost", ""); rr.Code != http.StatusOK {
		t.Fatalf("healthz must not be limited, got %d", rr.Code)
	}
}

func TestResponseHeaders(t *testing.T) {
	srv, _ := newTestServer(t, 60)
	rr := do(t, srv, http.MethodGet, "/api/profile", "", "")
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing request id")
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("unexpected content type %q", ct)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, 60)
	rr := do(t, srv, http.MethodPut, "/api/budget", "u", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
