package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finances/internal/backend"
	"finances/internal/cache"
	"finances/internal/cli"
	"finances/internal/core"
	apphttp "finances/internal/http"
	"finances/internal/log"
	"finances/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	loc, _ := cfg.Location() // checked by Validate

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	retry := services.DefaultRetryPolicy()
	retry.Attempts = cfg.StoreRetryAttempts

	// The whole catalog is cached under a single key.
	categoryCache := cache.NewLRUCache[[]core.Category](1, cfg.CategoryCacheTTL)
	cacheManager := cache.NewManager(logger.WithComponent(log.ComponentCache))
	cacheManager.Register(categoryCache)
	cacheManager.StartCleanup(10 * time.Minute)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Dependencies{
		Reports:            services.NewReportService(result.Store, core.SystemClock{Location: loc}, retry),
		Transactions:       services.NewTransactionService(result.Store, result.Publisher, retry),
		Profiles:           services.NewProfileService(result.Store, retry),
		Categories:         services.NewCategoryService(result.Store, categoryCache, retry),
		Store:              result.Store,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cacheManager.Stop()
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting finances server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"ledger_events", result.Publisher != nil,
		"timezone", loc.String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
