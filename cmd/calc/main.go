package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"calculator-frontend/internal/calculator"
	"calculator-frontend/internal/config"
	"calculator-frontend/internal/frontend"
	"calculator-frontend/internal/history"
	"calculator-frontend/internal/mathclient"
	"calculator-frontend/internal/observability"
	"calculator-frontend/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "calc:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	if err := loadDotEnv(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The terminal belongs to the UI; logs go to a file.
	if err := observability.InitFileLogger(cfg.LogFile); err != nil {
		return err
	}
	defer observability.SyncLogger()

	if cfg.OTelEnabled {
		traceShutdown, err := observability.InitTracing(ctx)
		if err != nil {
			return err
		}
		defer traceShutdown(context.Background())

		metricShutdown, err := observability.InitMetrics(ctx)
		if err != nil {
			return err
		}
		defer metricShutdown(context.Background())
	}
	if err := calculator.InitMetrics(); err != nil {
		return err
	}

	logger := observability.Logger

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

	refresher := &tui.Refresher{}
	ctrl := frontend.New(client,
		history.NewStore(cache, client, history.WithLogger(logger)),
		frontend.WithErrorDisplay(cfg.ErrorDisplay),
		frontend.WithLogger(logger),
		frontend.WithOnChange(refresher.OnChange),
	)
	ctrl.LoadHistory(ctx)

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolve export directory: %w", err)
	}

	p := tea.NewProgram(tui.New(ctx, ctrl,
		tui.WithExportDir(cwd),
		tui.WithLogger(logger),
	))
	refresher.Attach(p)

	logger.Info("terminal calculator started", zap.String("calculator_service", cfg.ServiceURL))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}
