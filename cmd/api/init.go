package main

import (
	"context"
	"errors"

	"calculator-frontend/internal/calculator"
	"calculator-frontend/internal/observability"
	"calculator-frontend/internal/session"
)

// initMetrics initialises the metric provider and application-specific
// metric instruments. Without export the instruments record into the global
// no-op provider.
func initMetrics(ctx context.Context, export bool) (func(context.Context) error, error) {
	shutdown := func(context.Context) error { return nil }

	if export {
		var err error
		shutdown, err = observability.InitMetrics(ctx)
		if err != nil {
			return nil, err
		}
	}

	if err := calculator.InitMetrics(); err != nil {
		return nil, err
	}
	if err := session.InitMetrics(); err != nil {
		return nil, err
	}

	return shutdown, nil
}

// initTelemetry sets up tracing, OTLP log shipping and metrics, returning a
// single shutdown func for all providers.
func initTelemetry(ctx context.Context, export bool) (func(context.Context) error, error) {
	var shutdowns []func(context.Context) error

	if export {
		traceShutdown, err := observability.InitTracing(ctx)
		if err != nil {
			return nil, err
		}
		shutdowns = append(shutdowns, traceShutdown)

		logShutdown, err := observability.InitLogging(ctx)
		if err != nil {
			return nil, err
		}
		shutdowns = append(shutdowns, logShutdown)
	}

	metricShutdown, err := initMetrics(ctx, export)
	if err != nil {
		return nil, err
	}
	shutdowns = append(shutdowns, metricShutdown)

	return func(ctx context.Context) error {
		var errs []error
		for _, fn := range shutdowns {
			errs = append(errs, fn(ctx))
		}
		return errors.Join(errs...)
	}, nil
}
