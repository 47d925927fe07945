package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/ledgerview/ledgerview/internal/app"
	"github.com/ledgerview/ledgerview/internal/ledger"
	"github.com/ledgerview/ledgerview/internal/platform/db"
	"github.com/ledgerview/ledgerview/internal/tenants"
	"github.com/ledgerview/ledgerview/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	tenantRepo := tenants.NewRepository(registry)
	tenantService := tenants.NewService(tenantRepo, logger)
	executor := ledger.NewExecutor(logger, cfg.QueryTimeout)
	prober := jobs.NewProber(tenantService, executor, logger)

	probeTask, err := jobs.NewTenantProbeTask(jobs.TenantProbePayload{})
	if err != nil {
		logger.Error("build probe task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTenantProbe, Handler: prober.HandleTenantProbeTask},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.ProbeCron, Task: probeTask, Options: []asynq.Option{asynq.Queue(jobs.QueueDefault)}},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker", slog.Any("error", err))
		os.Exit(1)
	}
}
