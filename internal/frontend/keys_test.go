package frontend

import (
	"context"
	"errors"
	"testing"

	"calculator-frontend/internal/calculator"
)

func TestHandleKeyEditing(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want string
	}{
		{name: "digits and operator", keys: []string{"1", "2", "+", "3"}, want: "12+3"},
		{name: "caret becomes power", keys: []string{"2", "^", "8"}, want: "2**8"},
		{name: "backspace", keys: []string{"1", "2", "Backspace"}, want: "1"},
		{name: "backspace on empty", keys: []string{"Backspace"}, want: "0"},
		{name: "escape clears", keys: []string{"1", "+", "Escape"}, want: "0"},
		{name: "c clears", keys: []string{"7", "c"}, want: "0"},
		{name: "C clears", keys: []string{"7", "C"}, want: "0"},
		{name: "leading decimal", keys: []string{"."}, want: "0."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestController(t, nil)
			typeKeys(t, c, tc.keys...)
			if got := c.View().Current; got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestHandleKeySubmitKeys(t *testing.T) {
	for _, key := range []string{"=", "Enter"} {
		t.Run(key, func(t *testing.T) {
			var got calculator.Request
			c, _ := newTestController(t, submitFunc(func(_ context.Context, req calculator.Request) (calculator.Result, error) {
				got = req
				return calculator.Result{Expression: "6/3", Result: 2}, nil
			}))
			typeKeys(t, c, "6", "/", "3", key)

			if got.Operation != calculator.OpDivide {
				t.Fatalf("expected divide request, got %+v", got)
			}
			if c.View().Current != "2" {
				t.Fatalf("expected result, got %+v", c.View())
			}
		})
	}
}

func TestHandleKeyPercent(t *testing.T) {
	var got calculator.Request
	c, _ := newTestController(t, submitFunc(func(_ context.Context, req calculator.Request) (calculator.Result, error) {
		got = req
		return calculator.Result{Expression: "50%", Result: 0.5}, nil
	}))
	typeKeys(t, c, "5", "0", "%")

	if got.Operation != calculator.OpPercentage || got.Num1 != 50 {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestHandleKeyUnknown(t *testing.T) {
	c, _ := newTestController(t, nil)

	err := c.HandleKey(context.Background(), "x")
	if !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
}

func TestIsCalculatorKey(t *testing.T) {
	for _, k := range []string{"0", "9", "+", "-", "*", "/", "=", "Enter", "Escape", "Backspace", ".", "c", "C", "%", "^"} {
		if !IsCalculatorKey(k) {
			t.Fatalf("expected %q to be a calculator key", k)
		}
	}
	for _, k := range []string{"a", "Tab", "", "**"} {
		if IsCalculatorKey(k) {
			t.Fatalf("expected %q to be rejected", k)
		}
	}
}
