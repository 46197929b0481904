package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gymstack/gymstack/internal/app"
	"github.com/gymstack/gymstack/internal/authz"
	"github.com/gymstack/gymstack/internal/observability"
	"github.com/gymstack/gymstack/internal/platform/cache"
	"github.com/gymstack/gymstack/internal/platform/db"
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

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	metrics := observability.NewMetrics()

	store := authz.NewRepository(dbpool)
	resolver := authz.NewResolver(store)
	roleCache := authz.NewCache(cfg.AuthzCacheTTL)

	opts := []authz.ServiceOption{authz.WithMetrics(metrics)}
	var broadcaster *authz.Broadcaster
	if cfg.AuthzInvalidationChannel != "" {
		redisClient, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, invalidation broadcast disabled", slog.Any("error", err))
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.Warn("redis close", slog.Any("error", err))
				}
			}()
			broadcaster = authz.NewBroadcaster(redisClient, cfg.AuthzInvalidationChannel, logger)
			opts = append(opts, authz.WithInvalidationPublisher(broadcaster))
		}
	}

	service := authz.NewService(resolver, roleCache, logger, opts...)
	if broadcaster != nil {
		go broadcaster.Listen(ctx, service)
	}

	if missing, err := authz.VerifyCatalog(ctx, store, logger); err != nil {
		logger.Warn("catalog verification skipped", slog.Any("error", err))
	} else if len(missing) > 0 {
		logger.Warn("catalog drift detected, re-run the seed tool",
			slog.Int("missing_codes", len(missing)))
	}

	gate := authz.Middleware{
		Service:         service,
		Logger:          logger,
		LenientFallback: cfg.AuthzLenientFallback,
	}
	authzHandler := authz.NewHandler(logger, service, store, gate)

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		AuthzHandler: authzHandler,
		Metrics:      metrics,
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
		logger.Error("server shutdown", slog.Any("error", err))
	}
}
