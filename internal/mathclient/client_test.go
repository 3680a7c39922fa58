package mathclient

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"calculator-frontend/internal/calculator"
	"calculator-frontend/internal/testutil"
)

func TestMain(m *testing.M) {
	if err := calculator.InitMetrics(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestSubmitSuccess(t *testing.T) {
	svc := testutil.NewCalcService(t)
	svc.Set(func(s *testutil.CalcService) {
		s.Calculate = func(req calculator.Request) testutil.CalcResponse {
			return testutil.CalcResponse{Status: http.StatusOK, Body: calculator.Result{Expression: "12+8", Result: 20}}
		}
	})

	c := New(svc.URL())
	res, err := c.Submit(context.Background(), calculator.NewBinaryRequest(calculator.OpAdd, 12, 8))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Expression != "12+8" || res.Result != 20 {
		t.Fatalf("unexpected result %+v", res)
	}

	reqs := svc.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	if reqs[0].Num1 != 12 || reqs[0].Num2 == nil || *reqs[0].Num2 != 8 || reqs[0].Operation != calculator.OpAdd {
		t.Fatalf("unexpected request %+v", reqs[0])
	}
}

func TestSubmitUnaryOmitsSecondOperand(t *testing.T) {
	svc := testutil.NewCalcService(t)

	c := New(svc.URL())
	if _, err := c.Submit(context.Background(), calculator.NewUnaryRequest(calculator.OpSqrt, 16)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reqs := svc.Requests()
	if len(reqs) != 1 || reqs[0].Num2 != nil {
		t.Fatalf("expected single-operand request, got %+v", reqs)
	}
}

func TestSubmitServiceError(t *testing.T) {
	svc := testutil.NewCalcService(t)
	svc.Set(func(s *testutil.CalcService) {
		s.Calculate = func(calculator.Request) testutil.CalcResponse {
			return testutil.CalcResponse{Status: http.StatusBadRequest, Body: map[string]string{"error": "division by zero"}}
		}
	})

	core, logs := observer.New(zap.WarnLevel)
	c := New(svc.URL(), WithLogger(zap.New(core)))

	_, err := c.Submit(context.Background(), calculator.NewBinaryRequest(calculator.OpDivide, 5, 0))

	se, ok := AsServiceError(err)
	if !ok {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if se.Message != "division by zero" || se.Status != http.StatusBadRequest {
		t.Fatalf("unexpected service error %+v", se)
	}
	if IsConnectionError(err) {
		t.Fatal("service error must not be a connection error")
	}

	if logs.FilterMessage("calculation failed").Len() != 1 {
		t.Fatalf("expected one failure log, got %d", logs.Len())
	}
}

func TestSubmitServiceErrorWithoutMessage(t *testing.T) {
	svc := testutil.NewCalcService(t)
	svc.Set(func(s *testutil.CalcService) {
		s.Calculate = func(calculator.Request) testutil.CalcResponse {
			return testutil.CalcResponse{Status: http.StatusInternalServerError, Body: map[string]string{}}
		}
	})

	_, err := New(svc.URL()).Submit(context.Background(), calculator.NewUnaryRequest(calculator.OpAdd, 1))

	se, ok := AsServiceError(err)
	if !ok {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if se.Message != http.StatusText(http.StatusInternalServerError) {
		t.Fatalf("expected status text fallback, got %q", se.Message)
	}
}

func TestSubmitMalformedBodyIsConnectionError(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "success status", status: http.StatusOK},
		{name: "error status", status: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := testutil.NewCalcService(t)
			svc.Set(func(s *testutil.CalcService) {
				s.Calculate = func(calculator.Request) testutil.CalcResponse {
					return testutil.CalcResponse{Status: tc.status, Body: "<html>oops</html>"}
				}
			})

			_, err := New(svc.URL()).Submit(context.Background(), calculator.NewUnaryRequest(calculator.OpAdd, 1))
			if !IsConnectionError(err) {
				t.Fatalf("expected ConnectionError, got %v", err)
			}
		})
	}
}

func TestSubmitUnreachableIsConnectionError(t *testing.T) {
	svc := testutil.NewCalcService(t)
	url := svc.URL()
	svc.Server.Close()

	_, err := New(url).Submit(context.Background(), calculator.NewUnaryRequest(calculator.OpAdd, 1))
	if !IsConnectionError(err) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
}

func TestFetchHistory(t *testing.T) {
	svc := testutil.NewCalcService(t)
	want := []calculator.HistoryEntry{
		{Operation: "2+2", Result: "4", Timestamp: "10:00:01"},
		{Operation: "5/0", Result: "division by zero", Timestamp: "10:00:00", IsError: true},
	}
	svc.Set(func(s *testutil.CalcService) {
		s.History = func() testutil.CalcResponse {
			return testutil.CalcResponse{Status: http.StatusOK, Body: map[string]any{"history": want}}
		}
	})

	got, err := New(svc.URL()).FetchHistory(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestFetchHistoryNonSuccess(t *testing.T) {
	svc := testutil.NewCalcService(t)
	svc.Set(func(s *testutil.CalcService) {
		s.History = func() testutil.CalcResponse {
			return testutil.CalcResponse{Status: http.StatusInternalServerError, Body: map[string]string{"error": "boom"}}
		}
	})

	if _, err := New(svc.URL()).FetchHistory(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestClearHistory(t *testing.T) {
	svc := testutil.NewCalcService(t)
	c := New(svc.URL())

	if err := c.ClearHistory(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.HistoryDeletes() != 1 {
		t.Fatalf("expected 1 delete, got %d", svc.HistoryDeletes())
	}

	svc.Set(func(s *testutil.CalcService) {
		s.ClearHistory = func() testutil.CalcResponse {
			return testutil.CalcResponse{Status: http.StatusInternalServerError, Body: map[string]string{"error": "boom"}}
		}
	})
	if err := c.ClearHistory(context.Background()); err == nil {
		t.Fatal("expected error on non-success status")
	}
}

func TestOperations(t *testing.T) {
	svc := testutil.NewCalcService(t)

	ops, err := New(svc.URL()).Operations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ops["add"] == "" {
		t.Fatalf("expected add description, got %#v", ops)
	}
}

func TestConnectionErrorUnwraps(t *testing.T) {
	inner := errors.New("dial tcp: refused")
	err := &ConnectionError{Op: "calculate", Err: inner}

	if !errors.Is(err, inner) {
		t.Fatal("expected ConnectionError to unwrap to its cause")
	}
}
