package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"calculator-frontend/internal/config"
	"calculator-frontend/internal/frontend"
	"calculator-frontend/internal/history"
	"calculator-frontend/internal/mathclient"
	"calculator-frontend/internal/observability"
	"calculator-frontend/internal/server"
	"calculator-frontend/internal/session"
)

const shutdownTimeout = 5 * time.Second

// sweepInterval checks for idle sessions a few times per TTL.
func sweepInterval(ttl time.Duration) time.Duration {
	return max(ttl/4, time.Second)
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := loadDotEnv(); err != nil {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Logger
	err = observability.InitLogger()
	if err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	// Tracing, logs, metrics
	telemetryShutdown, err := initTelemetry(ctx, cfg.OTelEnabled)
	if err != nil {
		panic(err)
	}
	defer telemetryShutdown(context.Background())

	logger := observability.Logger

	// Local history cache
	cache, err := history.OpenCache(ctx, cfg)
	if err != nil {
		logger.Warn("local cache unavailable, keeping history in memory",
			zap.String("backend", cfg.Cache),
			zap.Error(err),
		)
		cache = history.NewMemoryCache()
	}
	defer cache.Close()

	client := mathclient.New(cfg.ServiceURL,
		mathclient.WithTimeout(cfg.RequestTimeout),
		mathclient.WithLogger(logger),
	)

	registry := session.NewRegistry(func(namespace string) *frontend.Controller {
		sessionLogger := logger.With(zap.String("history_namespace", namespace))
		store := history.NewStore(cache, client,
			history.WithNamespace(namespace),
			history.WithLogger(sessionLogger),
		)
		return frontend.New(client, store,
			frontend.WithErrorDisplay(cfg.ErrorDisplay),
			frontend.WithLogger(sessionLogger),
		)
	}, session.WithIdleTTL(cfg.SessionTTL))

	// Router
	router := server.NewRouter(session.NewHandler(registry, client))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server started",
			zap.String("addr", cfg.Addr),
			zap.String("calculator_service", cfg.ServiceURL),
			zap.String("cache", cfg.Cache),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return registry.RunSweeper(gctx, sweepInterval(cfg.SessionTTL))
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}
