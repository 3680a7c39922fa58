package calculator

import "fmt"

// Operation names an arithmetic operation understood by the calculator service.
type Operation string

const (
	OpAdd        Operation = "add"
	OpSubtract   Operation = "subtract"
	OpMultiply   Operation = "multiply"
	OpDivide     Operation = "divide"
	OpPower      Operation = "power"
	OpSqrt       Operation = "sqrt"
	OpPercentage Operation = "percentage"
)

var operations = map[Operation]struct{}{
	OpAdd:        {},
	OpSubtract:   {},
	OpMultiply:   {},
	OpDivide:     {},
	OpPower:      {},
	OpSqrt:       {},
	OpPercentage: {},
}

// ParseOperation validates an operation name.
func ParseOperation(s string) (Operation, error) {
	op := Operation(s)
	if _, ok := operations[op]; !ok {
		return "", fmt.Errorf("unknown operation %q", s)
	}
	return op, nil
}

// Unary reports whether the operation takes a single operand.
func (o Operation) Unary() bool {
	return o == OpSqrt || o == OpPercentage
}

// Request is the JSON body for POST /calculate.
type Request struct {
	Num1      float64   `json:"num1"`
	Num2      *float64  `json:"num2,omitempty"` // absent for unary and pass-through requests
	Operation Operation `json:"operation"`
}

// NewBinaryRequest builds a two-operand request.
func NewBinaryRequest(op Operation, a, b float64) Request {
	return Request{Num1: a, Num2: &b, Operation: op}
}

// NewUnaryRequest builds a single-operand request.
func NewUnaryRequest(op Operation, a float64) Request {
	return Request{Num1: a, Operation: op}
}

// Result is the JSON body of a successful POST /calculate.
type Result struct {
	Expression string  `json:"expression"`
	Result     float64 `json:"result"`
}

// HistoryEntry is one line of the operation history, newest first.
type HistoryEntry struct {
	Operation string `json:"operation"`
	Result    string `json:"result"`
	Timestamp string `json:"timestamp"`
	IsError   bool   `json:"isError"`
}
