// Package numeric parses and formats the decimal integer tokens that editor
// actions increment and decrement.
//
// Parsing is strict: the whole token must match -?[0-9]+, so "1a" or "1.5"
// are rejected rather than truncated. A rejected token is an ordinary
// outcome, reported through the boolean result of Parse.
package numeric

import (
	"math"
	"strconv"
)

// Token is a parsed decimal integer.
type Token struct {
	Value int64
}

// Parse parses text as a signed decimal integer.
// It returns false when text is not entirely an optional '-' followed by
// one or more ASCII digits, or when the value does not fit in an int64.
func Parse(text string) (Token, bool) {
	digits := text
	if len(digits) > 0 && digits[0] == '-' {
		digits = digits[1:]
	}
	if len(digits) == 0 {
		return Token{}, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return Token{}, false
		}
	}

	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return Token{}, false
	}
	return Token{Value: v}, true
}

// Format renders t in canonical form: no leading zeros, no '+', and a '-'
// only for negative values.
func Format(t Token) string {
	return strconv.FormatInt(t.Value, 10)
}

// String implements fmt.Stringer.
func (t Token) String() string {
	return Format(t)
}

// Width returns the length of the canonical rendering, sign included.
func (t Token) Width() int {
	return len(Format(t))
}

// Add returns the token offset by delta, saturating at the int64 bounds.
func (t Token) Add(delta int64) Token {
	switch {
	case delta > 0 && t.Value > math.MaxInt64-delta:
		return Token{Value: math.MaxInt64}
	case delta < 0 && t.Value < math.MinInt64-delta:
		return Token{Value: math.MinInt64}
	}
	return Token{Value: t.Value + delta}
}
