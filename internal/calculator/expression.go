package calculator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidExpression is returned when a buffer cannot be turned into a request.
var ErrInvalidExpression = errors.New("invalid expression")

// PowerToken is the buffer representation of exponentiation.
const PowerToken = "**"

// binaryOperators maps the single-character operator symbols to their
// operations. "**" is recognised separately while scanning.
var binaryOperators = map[byte]Operation{
	'+': OpAdd,
	'-': OpSubtract,
	'*': OpMultiply,
	'/': OpDivide,
	'^': OpPower,
}

// IsOperatorByte reports whether c is a binary operator character.
func IsOperatorByte(c byte) bool {
	_, ok := binaryOperators[c]
	return ok
}

// HasOperator reports whether the buffer contains any operator character,
// including the percent sign.
func HasOperator(buffer string) bool {
	return strings.ContainsAny(buffer, "+-*/^%")
}

type split struct {
	index  int
	width  int
	opName Operation
}

// lastOperator finds the right-most binary operator in buffer. Index 0 is
// never a split point since a leading minus is the sign of the first operand,
// and a minus directly following another operator is the sign of the second.
// A '*' preceded by '*' belongs to the power token.
func lastOperator(buffer string) (split, bool) {
	for i := len(buffer) - 1; i > 0; i-- {
		c := buffer[i]
		op, ok := binaryOperators[c]
		if !ok {
			continue
		}

		switch {
		case c == '-' && IsOperatorByte(buffer[i-1]):
			continue
		case c == '*' && buffer[i-1] == '*':
			if i-1 == 0 {
				return split{}, false
			}
			return split{index: i - 1, width: len(PowerToken), opName: OpPower}, true
		}

		return split{index: i, width: 1, opName: op}, true
	}
	return split{}, false
}

// Parse converts a display buffer into a calculation request using the
// right-most operator as the split point. A buffer without a split point is
// sent as a single-operand add so the service can normalise the literal.
func Parse(buffer string) (Request, error) {
	if s, ok := lastOperator(buffer); ok {
		left := strings.TrimSpace(buffer[:s.index])
		right := strings.TrimSpace(buffer[s.index+s.width:])
		if left == "" || right == "" {
			return Request{}, fmt.Errorf("%w: missing operand in %q", ErrInvalidExpression, buffer)
		}

		a, err := parseNumber(left)
		if err != nil {
			return Request{}, err
		}
		b, err := parseNumber(right)
		if err != nil {
			return Request{}, err
		}

		return NewBinaryRequest(s.opName, a, b), nil
	}

	n, err := parseNumber(strings.TrimSpace(buffer))
	if err != nil {
		return Request{}, err
	}
	return NewUnaryRequest(OpAdd, n), nil
}

// ParseOperand parses the whole buffer as the operand of a unary operation.
func ParseOperand(buffer string) (float64, error) {
	return parseNumber(strings.TrimSpace(buffer))
}

func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty operand", ErrInvalidExpression)
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidExpression, s)
	}
	return n, nil
}

// FormatNumber renders a result the way a browser stringifies numbers:
// plain decimals in the usual range and exponent form outside it.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}

	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(v, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + sign + digits
	}

	return strconv.FormatFloat(v, 'f', -1, 64)
}
