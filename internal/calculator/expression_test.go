package calculator

import (
	"errors"
	"testing"
)

func TestParseBinaryOperators(t *testing.T) {
	tests := []struct {
		buffer string
		op     Operation
		a, b   float64
	}{
		{buffer: "12+8", op: OpAdd, a: 12, b: 8},
		{buffer: "12-8", op: OpSubtract, a: 12, b: 8},
		{buffer: "3*4", op: OpMultiply, a: 3, b: 4},
		{buffer: "9/3", op: OpDivide, a: 9, b: 3},
		{buffer: "2**3", op: OpPower, a: 2, b: 3},
		{buffer: "2^10", op: OpPower, a: 2, b: 10},
		{buffer: "1.5+2.25", op: OpAdd, a: 1.5, b: 2.25},
		{buffer: "-5+3", op: OpAdd, a: -5, b: 3},
		{buffer: "-5-3", op: OpSubtract, a: -5, b: 3},
		{buffer: "5*-3", op: OpMultiply, a: 5, b: -3},
		{buffer: "2**-1", op: OpPower, a: 2, b: -1},
		{buffer: " 7 / 2 ", op: OpDivide, a: 7, b: 2},
	}

	for _, tc := range tests {
		t.Run(tc.buffer, func(t *testing.T) {
			req, err := Parse(tc.buffer)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Operation != tc.op {
				t.Fatalf("expected operation %q, got %q", tc.op, req.Operation)
			}
			if req.Num1 != tc.a {
				t.Fatalf("expected num1 %g, got %g", tc.a, req.Num1)
			}
			if req.Num2 == nil || *req.Num2 != tc.b {
				t.Fatalf("expected num2 %g, got %v", tc.b, req.Num2)
			}
		})
	}
}

func TestParseMultiOperatorBufferSplitsOnRightMost(t *testing.T) {
	// "1+2" left of the right-most '*' is not a number.
	_, err := Parse("1+2*3")
	if !errors.Is(err, ErrInvalidExpression) {
		t.Fatalf("expected ErrInvalidExpression for multi-operator buffer, got %v", err)
	}
}

func TestParseSingleNumberPassThrough(t *testing.T) {
	for _, buffer := range []string{"42", "-5", "0.5"} {
		t.Run(buffer, func(t *testing.T) {
			req, err := Parse(buffer)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Operation != OpAdd {
				t.Fatalf("expected pass-through add, got %q", req.Operation)
			}
			if req.Num2 != nil {
				t.Fatalf("expected no second operand, got %v", *req.Num2)
			}
		})
	}
}

func TestParseFailures(t *testing.T) {
	for _, buffer := range []string{"", "-", "5+", "5**", "abc", "1.2.3", "NaN"} {
		t.Run(buffer, func(t *testing.T) {
			if _, err := Parse(buffer); !errors.Is(err, ErrInvalidExpression) {
				t.Fatalf("expected ErrInvalidExpression, got %v", err)
			}
		})
	}
}

func TestHasOperator(t *testing.T) {
	tests := []struct {
		buffer string
		want   bool
	}{
		{"123", false},
		{"1.5", false},
		{"-5", true},
		{"2**3", true},
		{"50%", true},
	}

	for _, tc := range tests {
		if got := HasOperator(tc.buffer); got != tc.want {
			t.Fatalf("HasOperator(%q): expected %t, got %t", tc.buffer, tc.want, got)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{20, "20"},
		{-3, "-3"},
		{0.1 + 0.2, "0.30000000000000004"},
		{2.5, "2.5"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-7"},
		{0.000001, "0.000001"},
	}

	for _, tc := range tests {
		if got := FormatNumber(tc.in); got != tc.want {
			t.Fatalf("FormatNumber(%v): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestParseOperation(t *testing.T) {
	op, err := ParseOperation("sqrt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !op.Unary() {
		t.Fatal("expected sqrt to be unary")
	}

	if _, err := ParseOperation("modulo"); err == nil {
		t.Fatal("expected error for unknown operation")
	}
}
