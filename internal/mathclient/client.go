// Package mathclient talks to the remote calculator service: calculations,
// the authoritative operation history and the operation catalogue.
package mathclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"calculator-frontend/internal/calculator"
	"calculator-frontend/internal/observability"
)

// DefaultTimeout bounds every request to the service.
const DefaultTimeout = 10 * time.Second

const maxBodyBytes = 1 << 20

var tracer = otel.Tracer("mathclient")

// Client is a calculator service client. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the instrumented default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New returns a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type errorBody struct {
	Error string `json:"error"`
}

type historyBody struct {
	History []calculator.HistoryEntry `json:"history"`
}

type operationsBody struct {
	Operations map[string]string `json:"operations"`
}

// do sends a request and returns the status and the (bounded) body. Any
// failure here is a transport failure.
func (c *Client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := observability.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(observability.RequestIDHeader, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

func success(status int) bool {
	return status >= 200 && status < 300
}

// Submit sends a calculation to POST /calculate. A non-success status yields
// a *ServiceError carrying the service's message; an unreachable service or
// an undecodable reply yields a *ConnectionError.
func (c *Client) Submit(ctx context.Context, req calculator.Request) (calculator.Result, error) {
	ctx, span := tracer.Start(ctx, "calculator.submit",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("calculator.operation", string(req.Operation)),
			attribute.Float64("calculator.operand.a", req.Num1),
		),
	)
	defer span.End()

	if req.Num2 != nil {
		span.SetAttributes(attribute.Float64("calculator.operand.b", *req.Num2))
	}

	logger := observability.WithTrace(c.logger, ctx)
	attrs := metric.WithAttributes(attribute.String("operation", string(req.Operation)))
	calculator.SubmissionCounter.Add(ctx, 1, attrs)

	start := time.Now()
	status, data, err := c.do(ctx, http.MethodPost, "/calculate", req)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms
	calculator.SubmissionHistogram.Record(ctx, elapsed, attrs)

	if err == nil && success(status) {
		var res calculator.Result
		if err = json.Unmarshal(data, &res); err == nil {
			calculator.ResultGauge.Record(ctx, res.Result, attrs)
			span.AddEvent("calculation.complete", trace.WithAttributes(
				attribute.Float64("result", res.Result),
				attribute.Float64("duration_ms", elapsed),
			))
			span.SetAttributes(attribute.Float64("calculator.result", res.Result))
			span.SetStatus(codes.Ok, "")

			logger.Info("calculation completed",
				zap.String("operation", string(req.Operation)),
				zap.String("expression", res.Expression),
				zap.Float64("result", res.Result),
				zap.Float64("duration_ms", elapsed),
			)
			return res, nil
		}
		err = fmt.Errorf("decode result: %w", err)
	}

	if err == nil {
		var eb errorBody
		if jerr := json.Unmarshal(data, &eb); jerr != nil {
			err = fmt.Errorf("decode error body (status %d): %w", status, jerr)
		} else {
			msg := eb.Error
			if msg == "" {
				msg = http.StatusText(status)
			}
			serr := &ServiceError{Status: status, Message: msg}
			c.fail(ctx, span, logger, calculator.ErrorKindService, req.Operation, serr)
			return calculator.Result{}, serr
		}
	}

	cerr := &ConnectionError{Op: "calculate", Err: err}
	c.fail(ctx, span, logger, calculator.ErrorKindConnection, req.Operation, cerr)
	return calculator.Result{}, cerr
}

func (c *Client) fail(ctx context.Context, span trace.Span, logger *zap.Logger, kind string, op calculator.Operation, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, kind)

	calculator.ErrorCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", string(op)),
		attribute.String("kind", kind),
	))

	logger.Warn("calculation failed",
		zap.String("operation", string(op)),
		zap.String("kind", kind),
		zap.Error(err),
	)
}

// FetchHistory returns the service's authoritative history, newest first.
func (c *Client) FetchHistory(ctx context.Context) ([]calculator.HistoryEntry, error) {
	ctx, span := tracer.Start(ctx, "calculator.history.fetch", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	status, data, err := c.do(ctx, http.MethodGet, "/history", nil)
	if err != nil {
		span.RecordError(err)
		return nil, &ConnectionError{Op: "fetch history", Err: err}
	}
	if !success(status) {
		err := fmt.Errorf("fetch history: unexpected status %d", status)
		span.RecordError(err)
		return nil, err
	}

	var hb historyBody
	if err := json.Unmarshal(data, &hb); err != nil {
		span.RecordError(err)
		return nil, &ConnectionError{Op: "fetch history", Err: err}
	}

	span.SetAttributes(attribute.Int("history.entries", len(hb.History)))
	return hb.History, nil
}

// ClearHistory deletes the service's history.
func (c *Client) ClearHistory(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "calculator.history.clear", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	status, _, err := c.do(ctx, http.MethodDelete, "/history", nil)
	if err != nil {
		span.RecordError(err)
		return &ConnectionError{Op: "clear history", Err: err}
	}
	if !success(status) {
		err := fmt.Errorf("clear history: unexpected status %d", status)
		span.RecordError(err)
		return err
	}
	return nil
}

// Operations returns the service's operation catalogue (name -> description).
func (c *Client) Operations(ctx context.Context) (map[string]string, error) {
	status, data, err := c.do(ctx, http.MethodGet, "/operations", nil)
	if err != nil {
		return nil, &ConnectionError{Op: "operations", Err: err}
	}
	if !success(status) {
		return nil, fmt.Errorf("operations: unexpected status %d", status)
	}

	var ob operationsBody
	if err := json.Unmarshal(data, &ob); err != nil {
		return nil, &ConnectionError{Op: "operations", Err: err}
	}
	return ob.Operations, nil
}
