package frontend

import (
	"context"
	"errors"
	"fmt"

	"calculator-frontend/internal/calculator"
)

// ErrUnknownKey is returned for keys outside the calculator's keyboard surface.
var ErrUnknownKey = errors.New("unknown key")

// Key names of the keyboard surface beyond the printable characters.
const (
	KeyEnter     = "Enter"
	KeyEscape    = "Escape"
	KeyBackspace = "Backspace"
)

var calculatorKeys = map[string]struct{}{
	"0": {}, "1": {}, "2": {}, "3": {}, "4": {}, "5": {}, "6": {}, "7": {}, "8": {}, "9": {},
	"+": {}, "-": {}, "*": {}, "/": {}, "=": {}, ".": {}, "%": {}, "^": {},
	"c": {}, "C": {},
	KeyEnter: {}, KeyEscape: {}, KeyBackspace: {},
}

// IsCalculatorKey reports whether key belongs to the keyboard surface.
func IsCalculatorKey(key string) bool {
	_, ok := calculatorKeys[key]
	return ok
}

// HandleKey applies one key press. Errors from calculations are returned
// after the display has been updated; rejected edits are not errors.
func (c *Controller) HandleKey(ctx context.Context, key string) error {
	if !IsCalculatorKey(key) {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	switch key {
	case "^":
		c.Append(calculator.PowerToken)
	case "%":
		return c.CalculateUnary(ctx, calculator.OpPercentage)
	case "=", KeyEnter:
		return c.Calculate(ctx)
	case KeyEscape, "c", "C":
		c.Clear()
	case KeyBackspace:
		c.DeleteLast()
	default:
		c.Append(key)
	}
	return nil
}
