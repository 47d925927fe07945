package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ledgerview/ledgerview/internal/app"
	"github.com/ledgerview/ledgerview/internal/ledger"
	"github.com/ledgerview/ledgerview/internal/observability"
	"github.com/ledgerview/ledgerview/internal/platform/cache"
	"github.com/ledgerview/ledgerview/internal/platform/db"
	"github.com/ledgerview/ledgerview/internal/reports"
	"github.com/ledgerview/ledgerview/internal/tenants"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	registry, err := db.New(ctx, cfg.RegistryDSN)
	if err != nil {
		logger.Error("connect registry", slog.Any("error", err))
		os.Exit(1)
	}
	defer registry.Close()

	var reportCache *reports.Cache
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, report cache disabled", slog.Any("error", err))
	} else {
		reportCache = reports.NewCache(redisClient, cfg.ReportCacheTTL)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	tenantRepo := tenants.NewRepository(registry)
	tenantService := tenants.NewService(tenantRepo, logger)

	executor := ledger.NewExecutor(logger, cfg.QueryTimeout)
	reportRepo := reports.NewRepository(executor)
	reportService, err := reports.NewService(reportRepo, reportCache, logger, reports.ServiceConfig{
		CashFromAccount: cfg.CashFromAccount,
		CashUptoAccount: cfg.CashUptoAccount,
	})
	if err != nil {
		logger.Error("build report service", slog.Any("error", err))
		os.Exit(1)
	}
	reportService.OnConnected(func(ctx context.Context, tenantID int64) {
		tenantService.MarkConnected(ctx, tenantID)
	})

	metrics := observability.NewMetrics()
	reportsHandler := reports.NewHandler(logger, reportService, metrics)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		ReportsHandler: reportsHandler,
		TenantAuth:     tenantService,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
