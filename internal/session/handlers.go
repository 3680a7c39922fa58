package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"calculator-frontend/internal/calculator"
	"calculator-frontend/internal/frontend"
	"calculator-frontend/internal/handlers"
	"calculator-frontend/internal/history"
	"calculator-frontend/internal/mathclient"
	"calculator-frontend/internal/observability"
)

var tracer = otel.Tracer("session")

// OperationsLister lists the operations offered by the calculator service.
type OperationsLister interface {
	Operations(ctx context.Context) (map[string]string, error)
}

type Handler struct {
	sessions *Registry
	ops      OperationsLister
	flight   singleflight.Group // concurrent /operations calls share one upstream request
}

func NewHandler(sessions *Registry, ops OperationsLister) *Handler {
	return &Handler{sessions: sessions, ops: ops}
}

// RegisterRoutes mounts the session endpoints and the operations passthrough.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Delete("/", h.Delete)
			r.Post("/keys", h.Key)
			r.Post("/actions/{action}", h.Action)
			r.Get("/history", h.History)
			r.Delete("/history", h.ClearHistory)
			r.Get("/history/export", h.Export)
		})
	})
	r.Get("/operations", h.Operations)
}

// start opens the handler span and resolves the logger for it.
func start(r *http.Request, name string) (context.Context, trace.Span, *zap.Logger) {
	ctx, span := tracer.Start(r.Context(), "session."+name,
		trace.WithAttributes(attribute.String("request.id", observability.RequestIDFromContext(r.Context()))),
	)
	return ctx, span, observability.LoggerWithTrace(ctx)
}

// lookup resolves the {id} URL parameter, writing a 404 when it is unknown.
func (h *Handler) lookup(ctx context.Context, span trace.Span, logger *zap.Logger, opName string, w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("session.id", id))

	s, err := h.sessions.Get(id)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, err.Error(), err, http.StatusNotFound, w)
		return nil, false
	}
	return s, true
}

func ok(span trace.Span, w http.ResponseWriter, status int, v any) {
	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, status, v)
}

// Create handles POST /sessions. The body is optional; {"client_id": ...}
// resumes that client's cached history.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := start(r, "create")
	defer span.End()

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		observability.RecordError(ctx, span, logger, errorCounter, "create", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	s, err := h.sessions.Create(ctx, req.ClientID)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "create", err.Error(), err, http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(attribute.String("session.id", s.ID))
	logger.Info("session created",
		zap.String("session_id", s.ID),
		zap.String("client_id", s.ClientID),
		zap.Int("history_entries", len(s.Controller.History())),
	)

	ok(span, w, http.StatusCreated, stateOf(s))
}

// Get handles GET /sessions/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := start(r, "get")
	defer span.End()

	s, found := h.lookup(ctx, span, logger, "get", w, r)
	if !found {
		return
	}
	ok(span, w, http.StatusOK, stateOf(s))
}

// Delete handles DELETE /sessions/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := start(r, "delete")
	defer span.End()

	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("session.id", id))

	if err := h.sessions.Delete(id); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "delete", err.Error(), err, http.StatusNotFound, w)
		return
	}

	logger.Info("session deleted", zap.String("session_id", id))
	span.SetStatus(codes.Ok, "")
	w.WriteHeader(http.StatusNoContent)
}

// Key handles POST /sessions/{id}/keys. Calculation failures are part of the
// returned display state, not HTTP errors.
func (h *Handler) Key(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := start(r, "key")
	defer span.End()

	s, found := h.lookup(ctx, span, logger, "key", w, r)
	if !found {
		return
	}

	var req KeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "key", "invalid request body", err, http.StatusBadRequest, w)
		return
	}
	span.SetAttributes(attribute.String("session.key", req.Key))

	err := s.Controller.HandleKey(ctx, req.Key)
	if errors.Is(err, frontend.ErrUnknownKey) {
		observability.RecordError(ctx, span, logger, errorCounter, "key", "unknown key", err, http.StatusBadRequest, w)
		return
	}
	keysTotal.WithLabelValues(keyClass(req.Key)).Inc()
	if err != nil {
		span.AddEvent("calculation.failed", trace.WithAttributes(attribute.String("error", err.Error())))
	}

	ok(span, w, http.StatusOK, stateOf(s))
}

// Action handles POST /sessions/{id}/actions/{action}.
func (h *Handler) Action(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := start(r, "action")
	defer span.End()

	s, found := h.lookup(ctx, span, logger, "action", w, r)
	if !found {
		return
	}

	action := chi.URLParam(r, "action")
	span.SetAttributes(attribute.String("session.action", action))

	var err error
	switch action {
	case "sqrt":
		err = s.Controller.CalculateUnary(ctx, calculator.OpSqrt)
	case "percentage":
		err = s.Controller.CalculateUnary(ctx, calculator.OpPercentage)
	case "calculate":
		err = s.Controller.Calculate(ctx)
	case "clear":
		s.Controller.Clear()
	case "delete":
		s.Controller.DeleteLast()
	default:
		observability.RecordError(ctx, span, logger, errorCounter, "action", "unknown action",
			fmt.Errorf("unknown action %q", action), http.StatusBadRequest, w)
		return
	}
	if err != nil {
		span.AddEvent("calculation.failed", trace.WithAttributes(attribute.String("error", err.Error())))
	}

	ok(span, w, http.StatusOK, stateOf(s))
}

// History handles GET /sessions/{id}/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := start(r, "history")
	defer span.End()

	s, found := h.lookup(ctx, span, logger, "history", w, r)
	if !found {
		return
	}
	ok(span, w, http.StatusOK, HistoryResponse{History: stateOf(s).History})
}

// ClearHistory handles DELETE /sessions/{id}/history.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := start(r, "clear_history")
	defer span.End()

	s, found := h.lookup(ctx, span, logger, "clear_history", w, r)
	if !found {
		return
	}

	s.Controller.ClearHistory(ctx)
	logger.Info("session history cleared", zap.String("session_id", s.ID))
	ok(span, w, http.StatusOK, HistoryResponse{History: []calculator.HistoryEntry{}})
}

// Export handles GET /sessions/{id}/history/export.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := start(r, "export")
	defer span.End()

	s, found := h.lookup(ctx, span, logger, "export", w, r)
	if !found {
		return
	}

	var buf bytes.Buffer
	if err := s.Controller.ExportHistory(&buf); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, history.ErrEmptyHistory) {
			status = http.StatusNotFound
		}
		observability.RecordError(ctx, span, logger, errorCounter, "export", err.Error(), err, status, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", history.ReportFilename(time.Now())))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Operations handles GET /operations.
func (h *Handler) Operations(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := start(r, "operations")
	defer span.End()

	// The shared call outlives any single caller's request.
	shareCtx := context.WithoutCancel(ctx)
	v, err, shared := h.flight.Do("operations", func() (any, error) {
		return h.ops.Operations(shareCtx)
	})
	span.SetAttributes(attribute.Bool("operations.shared", shared))
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "operations", mathclient.ConnectionMessage, err, http.StatusBadGateway, w)
		return
	}
	ok(span, w, http.StatusOK, OperationsResponse{Operations: v.(map[string]string)})
}
