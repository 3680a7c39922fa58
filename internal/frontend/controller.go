// Package frontend is the calculator front end's controller: it owns the
// display buffer and the history for one calculator and turns user actions
// into calculation requests.
package frontend

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"calculator-frontend/internal/calculator"
	"calculator-frontend/internal/display"
	"calculator-frontend/internal/history"
	"calculator-frontend/internal/mathclient"
)

// DefaultErrorDisplay is how long an error message replaces the display.
const DefaultErrorDisplay = 3 * time.Second

// Messages shown on the display and recorded in history.
const (
	MsgInvalidExpression = "invalid expression"
	MsgInvalidNumber     = "invalid number"
	MsgConnectionError   = "connection error"
)

// Calculator executes calculation requests.
type Calculator interface {
	Submit(ctx context.Context, req calculator.Request) (calculator.Result, error)
}

// Controller is the application state of one calculator front end. All
// methods are safe for concurrent use; network calls run without the lock.
type Controller struct {
	mu  sync.Mutex
	buf *display.Buffer

	// inflight identifies the latest submission; only its response may
	// write the buffer.
	inflight uint64

	calc    Calculator
	history *history.Store
	logger  *zap.Logger

	errorDisplay time.Duration
	afterFunc    func(time.Duration, func())
	onChange     func(display.View)
}

type Option func(*Controller)

// WithErrorDisplay sets how long error messages stay on the display.
func WithErrorDisplay(d time.Duration) Option {
	return func(c *Controller) { c.errorDisplay = d }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithOnChange registers a render callback, called without the controller
// lock after every visible change.
func WithOnChange(fn func(display.View)) Option {
	return func(c *Controller) { c.onChange = fn }
}

func New(calc Calculator, store *history.Store, opts ...Option) *Controller {
	c := &Controller{
		buf:          display.New(),
		calc:         calc,
		history:      store,
		logger:       zap.NewNop(),
		errorDisplay: DefaultErrorDisplay,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange(c.View())
	}
}

// View returns the current render snapshot of the display.
func (c *Controller) View() display.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.View()
}

// History returns the operation history, newest first.
func (c *Controller) History() []calculator.HistoryEntry {
	return c.history.Entries()
}

// Append adds a token to the buffer and reports whether it was accepted.
func (c *Controller) Append(token string) bool {
	c.mu.Lock()
	changed := c.buf.Append(token)
	c.mu.Unlock()

	if changed {
		c.notify()
	}
	return changed
}

// DeleteLast removes the last character of the buffer.
func (c *Controller) DeleteLast() {
	c.mu.Lock()
	changed := c.buf.DeleteLast()
	c.mu.Unlock()

	if changed {
		c.notify()
	}
}

// Clear resets the display. A calculation still in flight will no longer
// write its result to the buffer.
func (c *Controller) Clear() {
	c.mu.Lock()
	c.buf.Clear()
	c.inflight++
	c.mu.Unlock()

	c.notify()
}

// showErrorLocked displays msg and schedules its removal. Caller holds c.mu.
func (c *Controller) showErrorLocked(msg string) {
	gen := c.buf.ShowError(msg)
	c.afterFunc(c.errorDisplay, func() {
		c.mu.Lock()
		restored := c.buf.RestoreError(gen)
		c.mu.Unlock()

		if restored {
			c.notify()
		}
	})
}

func (c *Controller) recordError(ctx context.Context, kind string) {
	calculator.ErrorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// Calculate submits the buffer. A buffer without any operator is recorded in
// history as-is without contacting the service.
func (c *Controller) Calculate(ctx context.Context) error {
	c.mu.Lock()
	expr := c.buf.Current()
	if expr == "" {
		c.mu.Unlock()
		return nil
	}

	if !calculator.HasOperator(expr) {
		c.mu.Unlock()
		c.history.Append(ctx, calculator.HistoryEntry{Operation: expr, Result: expr})
		c.notify()
		return nil
	}

	req, err := calculator.Parse(expr)
	if err != nil {
		c.showErrorLocked(MsgInvalidExpression)
		c.mu.Unlock()

		c.recordError(ctx, calculator.ErrorKindParse)
		c.logger.Info("expression rejected", zap.String("expression", expr), zap.Error(err))
		c.history.Append(ctx, calculator.HistoryEntry{Operation: expr, Result: MsgInvalidExpression, IsError: true})
		c.notify()
		return err
	}

	c.buf.SetPrevious(expr)
	c.inflight++
	token := c.inflight
	c.mu.Unlock()
	c.notify()

	res, err := c.calc.Submit(ctx, req)
	return c.complete(ctx, token, expr, true, res, err)
}

// CalculateUnary applies a single-operand operation (sqrt, percentage) to the
// buffer. An empty or zero buffer is ignored.
func (c *Controller) CalculateUnary(ctx context.Context, op calculator.Operation) error {
	if !op.Unary() {
		return fmt.Errorf("%s is not a single-operand operation", op)
	}

	c.mu.Lock()
	value := c.buf.Current()
	if value == "" || value == "0" {
		c.mu.Unlock()
		return nil
	}

	n, err := calculator.ParseOperand(value)
	if err != nil {
		c.showErrorLocked(MsgInvalidNumber)
		c.mu.Unlock()

		c.recordError(ctx, calculator.ErrorKindParse)
		c.history.Append(ctx, calculator.HistoryEntry{Operation: value, Result: MsgInvalidNumber, IsError: true})
		c.notify()
		return err
	}

	label := unaryLabel(op, value)
	c.buf.SetPrevious(label)
	c.inflight++
	token := c.inflight
	c.mu.Unlock()
	c.notify()

	res, err := c.calc.Submit(ctx, calculator.NewUnaryRequest(op, n))
	return c.complete(ctx, token, label, false, res, err)
}

func unaryLabel(op calculator.Operation, value string) string {
	if op == calculator.OpSqrt {
		return "√(" + value + ")"
	}
	return fmt.Sprintf("%s(%s)", op, value)
}

// complete applies a service response. The buffer is only written when token
// is still the latest submission; history is recorded either way.
func (c *Controller) complete(ctx context.Context, token uint64, label string, binary bool, res calculator.Result, err error) error {
	var entry calculator.HistoryEntry

	c.mu.Lock()
	latest := token == c.inflight

	switch se, isService := mathclient.AsServiceError(err); {
	case err == nil:
		value := calculator.FormatNumber(res.Result)
		if latest {
			c.buf.SetResult(value, binary)
		}
		entry = calculator.HistoryEntry{Operation: res.Expression, Result: value}
	case isService:
		if latest {
			c.showErrorLocked(se.Message)
		}
		entry = calculator.HistoryEntry{Operation: label, Result: se.Message, IsError: true}
	default:
		if latest {
			c.showErrorLocked(mathclient.ConnectionMessage)
		}
		entry = calculator.HistoryEntry{Operation: label, Result: MsgConnectionError, IsError: true}
	}
	c.mu.Unlock()

	if !latest {
		c.logger.Debug("superseded calculation response", zap.String("operation", label))
	}

	c.history.Append(ctx, entry)
	c.notify()
	return err
}

// LoadHistory restores the cached history and reconciles it with the service.
func (c *Controller) LoadHistory(ctx context.Context) {
	c.history.Load(ctx)
	c.notify()
}

// ClearHistory empties the history, remotely when possible.
func (c *Controller) ClearHistory(ctx context.Context) {
	c.history.Clear(ctx)
	c.notify()
}

// ExportHistory writes the plain-text history report.
func (c *Controller) ExportHistory(w io.Writer) error {
	return c.history.WriteReport(w)
}
