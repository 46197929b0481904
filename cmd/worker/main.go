package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/gymstack/gymstack/internal/app"
	"github.com/gymstack/gymstack/internal/authz"
	jobmetrics "github.com/gymstack/gymstack/internal/jobs"
	"github.com/gymstack/gymstack/internal/observability"
	"github.com/gymstack/gymstack/internal/platform/db"
	"github.com/gymstack/gymstack/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	store := authz.NewRepository(dbpool)

	// The worker has no request router, so the job metrics get their own
	// registry and a small exposition server.
	obs := observability.NewMetrics()
	metrics := jobmetrics.NewMetrics(obs.Registerer())

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", obs.Handler())
	metricsServer := &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: metricsMux}
	go func() {
		logger.Info("worker metrics listening", slog.String("addr", cfg.WorkerMetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server", slog.Any("error", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown", slog.Any("error", err))
		}
	}()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskGrantDrift, Handler: jobs.GrantDriftHandler(store, logger, metrics)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "@every 1h", Task: jobs.NewGrantDriftTask(), Options: []asynq.Option{asynq.Queue(jobs.QueueDefault)}},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
