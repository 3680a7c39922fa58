package calculator

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Error kinds recorded on ErrorCounter.
const (
	ErrorKindParse      = "parse"
	ErrorKindService    = "service"
	ErrorKindConnection = "connection"
)

// Metric instruments, initialized once via InitMetrics().
var (
	SubmissionCounter   metric.Int64Counter
	SubmissionHistogram metric.Float64Histogram
	ErrorCounter        metric.Int64Counter
	ResultGauge         metric.Float64Gauge
)

// InitMetrics registers the OTel instruments for calculation submissions.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	SubmissionCounter, err = meter.Int64Counter("calculator.submissions.total",
		metric.WithDescription("Total number of calculations submitted to the calculator service"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return fmt.Errorf("creating submission counter: %w", err)
	}

	SubmissionHistogram, err = meter.Float64Histogram("calculator.submission.duration",
		metric.WithDescription("Round trip time of calculator service requests in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000),
	)
	if err != nil {
		return fmt.Errorf("creating submission histogram: %w", err)
	}

	ErrorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Total number of failed calculations by kind"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	ResultGauge, err = meter.Float64Gauge("calculator.last_result",
		metric.WithDescription("The result of the last successful calculation"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating result gauge: %w", err)
	}

	return nil
}
