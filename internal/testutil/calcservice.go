package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"calculator-frontend/internal/calculator"
)

// CalcResponse is a scripted reply of the fake calculator service.
type CalcResponse struct {
	Status int
	Body   any
}

// CalcService is a scripted stand-in for the remote calculator service.
// Handlers default to success responses and can be overridden per test.
type CalcService struct {
	Server *httptest.Server

	mu          sync.Mutex
	requests    []calculator.Request
	historyHits int
	deletes     int

	Calculate    func(calculator.Request) CalcResponse
	History      func() CalcResponse
	ClearHistory func() CalcResponse
	Operations   func() CalcResponse
}

// NewCalcService starts a fake service that is closed with the test.
func NewCalcService(t testing.TB) *CalcService {
	t.Helper()

	s := &CalcService{
		Calculate: func(req calculator.Request) CalcResponse {
			return CalcResponse{Status: http.StatusOK, Body: calculator.Result{Expression: string(req.Operation), Result: req.Num1}}
		},
		History: func() CalcResponse {
			return CalcResponse{Status: http.StatusOK, Body: map[string]any{"history": []calculator.HistoryEntry{}}}
		},
		ClearHistory: func() CalcResponse {
			return CalcResponse{Status: http.StatusOK, Body: map[string]string{"message": "history cleared"}}
		},
		Operations: func() CalcResponse {
			return CalcResponse{Status: http.StatusOK, Body: map[string]any{"operations": map[string]string{"add": "Adds two numbers"}}}
		},
	}

	r := chi.NewRouter()
	r.Post("/calculate", func(w http.ResponseWriter, r *http.Request) {
		var req calculator.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
			return
		}

		s.mu.Lock()
		s.requests = append(s.requests, req)
		handle := s.Calculate
		s.mu.Unlock()

		s.reply(w, handle(req))
	})
	r.Get("/history", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.historyHits++
		handle := s.History
		s.mu.Unlock()

		s.reply(w, handle())
	})
	r.Delete("/history", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.deletes++
		handle := s.ClearHistory
		s.mu.Unlock()

		s.reply(w, handle())
	})
	r.Get("/operations", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		handle := s.Operations
		s.mu.Unlock()

		s.reply(w, handle())
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Server.Close)

	return s
}

func (s *CalcService) reply(w http.ResponseWriter, resp CalcResponse) {
	if raw, ok := resp.Body.(string); ok {
		w.WriteHeader(resp.Status)
		w.Write([]byte(raw))
		return
	}
	WriteJSON(w, resp.Status, resp.Body)
}

// URL is the base URL of the fake service.
func (s *CalcService) URL() string {
	return s.Server.URL
}

// Requests returns the calculation requests received so far.
func (s *CalcService) Requests() []calculator.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]calculator.Request(nil), s.requests...)
}

// HistoryFetches counts GET /history calls.
func (s *CalcService) HistoryFetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyHits
}

// HistoryDeletes counts DELETE /history calls.
func (s *CalcService) HistoryDeletes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deletes
}

// Set replaces the handlers under the service lock.
func (s *CalcService) Set(fn func(s *CalcService)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}
