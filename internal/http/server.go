package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"finances/internal/log"
	"finances/internal/middleware/ratelimit"
	"finances/internal/middleware/security"
	"finances/internal/middleware/trace"
	"finances/internal/services"
)

// Pinger reports whether the ledger store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies carries the services the API exposes.
type Dependencies struct {
	Reports      *services.ReportService
	Transactions *services.TransactionService
	Profiles     *services.ProfileService
	Categories   *services.CategoryService
	Store        Pinger
	Logger       *log.Logger

	RateLimitPerMinute int
}

type Server struct {
	http.Server
	reports      *services.ReportService
	transactions *services.TransactionService
	profiles     *services.ProfileService
	categories   *services.CategoryService
	store        Pinger
	logger       *log.Logger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	appMetrics   *appMetrics
	shutdownOnce sync.Once
}

// appMetrics counts application level events for /metrics.
type appMetrics struct {
	uptime              time.Time
	transactionsCreated int64
	transactionsDeleted int64
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	detector := security.NewDetector()
	s := &Server{
		reports:      deps.Reports,
		transactions: deps.Transactions,
		profiles:     deps.Profiles,
		categories:   deps.Categories,
		store:        deps.Store,
		logger:       logger,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: deps.RateLimitPerMinute,
		}),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}

	api := http.NewServeMux()
	api.HandleFunc("POST /api/profile", s.handleCreateProfile)
	api.HandleFunc("GET /api/profile", s.handleGetProfile)
	api.HandleFunc("PATCH /api/budget", s.handleUpdateBudget)

	api.HandleFunc("GET /api/budget", s.handleGetBudget)
	api.HandleFunc("GET /api/expenses-by-categories", s.handleExpensesByCategories)
	api.HandleFunc("GET /api/transactions-by-week", s.handleTransactionsByWeek)
	api.HandleFunc("GET /api/summary", s.handleSummary)

	api.HandleFunc("GET /api/transactions", s.handleListTransactions)
	api.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	api.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	api.HandleFunc("GET /api/categories", s.handleListCategories)
	api.HandleFunc("POST /api/categories", s.handleCreateCategory)
	api.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.Handle("/api/", s.rateLimiter.Middleware(s.rateLimitKey, s.handleRateLimited)(api))

	// Outermost first.
	var handler http.Handler = mux
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = detector.Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)
	handler = log.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// rateLimitKey counts requests per user when identified, per client IP otherwise.
func (s *Server) rateLimitKey(r *http.Request) string {
	if userID := UserID(r); userID != "" {
		return "user:" + userID
	}
	return "ip:" + s.securityDetector.ExtractClientIP(r)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldComponent, log.ComponentRateLimit,
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path)
	TooManyRequestsError().Write(w)
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
