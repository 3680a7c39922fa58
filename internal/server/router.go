package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"calculator-frontend/internal/handlers"
	"calculator-frontend/internal/observability"
	"calculator-frontend/internal/session"
)

func NewRouter(sessions *session.Handler) http.Handler {

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler())

	sessions.RegisterRoutes(r)

	return r
}
