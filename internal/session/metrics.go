package session

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "calculator_frontend_sessions_active",
		Help: "Number of live calculator sessions",
	})

	keysTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calculator_frontend_keys_total",
		Help: "Key presses applied to calculator sessions",
	}, []string{"key_class"})
)

// errorCounter counts failed session requests. Initialized via InitMetrics().
var errorCounter metric.Int64Counter

// InitMetrics registers the OTel instruments of the session handlers.
func InitMetrics() error {
	meter := otel.Meter("session")

	var err error
	errorCounter, err = meter.Int64Counter("calculator_frontend.session.errors.total",
		metric.WithDescription("Total number of rejected session requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating session error counter: %w", err)
	}

	return nil
}

// keyClass groups keys into a small label set.
func keyClass(key string) string {
	switch key {
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9", ".":
		return "digit"
	case "+", "-", "*", "/", "^":
		return "operator"
	case "=", "Enter", "%":
		return "submit"
	default:
		return "edit"
	}
}
