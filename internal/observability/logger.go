package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var Logger *zap.Logger = zap.NewNop()

// InitLogger installs the production JSON logger writing to stdout.
func InitLogger() error {
	var err error

	Logger, err = zap.NewProduction()
	if err != nil {
		return err
	}

	return nil
}

// InitFileLogger installs a production logger writing to path instead of
// stdout, for front ends that own the terminal.
func InitFileLogger(path string) error {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}

	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build file logger %s: %w", path, err)
	}

	Logger = logger
	return nil
}

func SyncLogger() {
	_ = Logger.Sync()
}

// LoggerWithTrace returns the global logger enriched with the trace fields of
// the active span in ctx.
func LoggerWithTrace(ctx context.Context) *zap.Logger {
	return WithTrace(Logger, ctx)
}

// WithTrace enriches logger with trace_id and span_id from ctx.
//
// ctx itself is attached as a zap.Any("context", ctx) field. The otelzap
// bridge treats a field whose value implements context.Context as the
// context for log.Logger.Emit, so the exported OTLP record carries the native
// TraceID/SpanID and Loki can link the line to its Tempo trace. The string
// fields keep stdout JSON greppable without an OTel-aware tool.
func WithTrace(logger *zap.Logger, ctx context.Context) *zap.Logger {
	span := trace.SpanContextFromContext(ctx)

	if !span.IsValid() {
		return logger
	}

	return logger.With(
		zap.Any("context", ctx),
		zap.String("trace_id", span.TraceID().String()),
		zap.String("span_id", span.SpanID().String()),
	)
}
