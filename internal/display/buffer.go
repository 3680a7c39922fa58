// Package display holds the calculator's in-progress input and its editing
// rules.
package display

import (
	"strings"

	"calculator-frontend/internal/calculator"
)

// Decimal is the decimal point token.
const Decimal = "."

// View is a render snapshot of the two display regions.
type View struct {
	Current  string `json:"current"`
	Previous string `json:"previous"`
	Waiting  bool   `json:"waiting"`
	Error    bool   `json:"error"`
}

// Buffer is the display state of one calculator. It is not safe for
// concurrent use; callers serialise access.
type Buffer struct {
	current  string
	previous string
	waiting  bool

	// errMsg overlays current while an error is displayed.
	errMsg     string
	generation uint64
}

// New returns an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

func isOperatorToken(token string) bool {
	switch token {
	case "+", "-", "*", "/", "^", calculator.PowerToken:
		return true
	}
	return false
}

func isDigits(token string) bool {
	if token == "" {
		return false
	}
	for i := 0; i < len(token); i++ {
		if token[i] < '0' || token[i] > '9' {
			return false
		}
	}
	return true
}

func (b *Buffer) lastIsOperator() bool {
	if b.current == "" {
		return false
	}
	return calculator.IsOperatorByte(b.current[len(b.current)-1])
}

func trailingStars(s string) int {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '*'; i-- {
		n++
	}
	return n
}

// edit marks a user-visible change: it drops any error overlay and
// invalidates pending restores.
func (b *Buffer) edit() {
	b.errMsg = ""
	b.generation++
}

// Append adds a digit, decimal point or operator token. Invalid edits are
// dropped silently; the return value reports whether the buffer changed.
func (b *Buffer) Append(token string) bool {
	isOp := isOperatorToken(token)
	if !isOp && token != Decimal && !isDigits(token) {
		return false
	}

	if isOp && b.lastIsOperator() && token != calculator.PowerToken {
		return false
	}

	if token == Decimal {
		// One decimal point per buffer, whatever the operand.
		if strings.Contains(b.current, Decimal) {
			return false
		}
		if b.current == "" || b.lastIsOperator() {
			token = "0" + Decimal
		}
	}

	if strings.HasPrefix(token, "*") && trailingStars(b.current)+len(token) > len(calculator.PowerToken) {
		return false
	}

	if isOp && b.current == "" && token != "-" {
		return false
	}

	b.current += token
	b.edit()
	return true
}

// DeleteLast removes the final character. It is a no-op on an empty buffer.
func (b *Buffer) DeleteLast() bool {
	if b.current == "" {
		return false
	}
	b.current = b.current[:len(b.current)-1]
	b.edit()
	return true
}

// Clear empties both buffers and resets the pending-operand flag.
func (b *Buffer) Clear() {
	b.current = ""
	b.previous = ""
	b.waiting = false
	b.edit()
}

// Current returns the live-edit buffer.
func (b *Buffer) Current() string { return b.current }

// Previous returns the pending-operation preview.
func (b *Buffer) Previous() string { return b.previous }

// Waiting reports whether a result is displayed and the next operand is expected.
func (b *Buffer) Waiting() bool { return b.waiting }

// SetPrevious sets the pending-operation preview.
func (b *Buffer) SetPrevious(s string) {
	b.previous = s
}

// SetResult replaces the buffer with a calculation result.
func (b *Buffer) SetResult(value string, waiting bool) {
	b.current = value
	if waiting {
		b.waiting = true
	}
	b.edit()
}

// ShowError overlays msg on the current value and returns the generation the
// overlay belongs to.
func (b *Buffer) ShowError(msg string) uint64 {
	b.errMsg = msg
	b.generation++
	return b.generation
}

// RestoreError removes the error overlay, but only if nothing has changed
// since the overlay for generation was shown.
func (b *Buffer) RestoreError(generation uint64) bool {
	if generation != b.generation || b.errMsg == "" {
		return false
	}
	b.errMsg = ""
	return true
}

// View returns the render snapshot. An empty buffer renders as "0".
func (b *Buffer) View() View {
	v := View{
		Current:  b.current,
		Previous: b.previous,
		Waiting:  b.waiting,
	}
	if b.errMsg != "" {
		v.Current = b.errMsg
		v.Error = true
	} else if v.Current == "" {
		v.Current = "0"
	}
	return v
}
