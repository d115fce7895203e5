package numeric

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParse(t *testing.T) {
	tests := []struct {
		text  string
		want  int64
		valid bool
	}{
		{"0", 0, true},
		{"42", 42, true},
		{"-5", -5, true},
		{"-0", 0, true},
		{"007", 7, true},
		{"9223372036854775807", math.MaxInt64, true},
		{"-9223372036854775808", math.MinInt64, true},
		{"9223372036854775808", 0, false},
		{"", 0, false},
		{"-", 0, false},
		{"+1", 0, false},
		{"1a", 0, false},
		{"a1", 0, false},
		{"1.5", 0, false},
		{"1 ", 0, false},
		{"--1", 0, false},
		{"١٢", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			tok, ok := Parse(tt.text)
			require.Equal(t, tt.valid, ok)
			if ok {
				assert.Equal(t, tt.want, tok.Value)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "0", Format(Token{}))
	assert.Equal(t, "-1", Format(Token{Value: -1}))
	assert.Equal(t, "10", Token{Value: 10}.String())

	tok, ok := Parse("-0")
	require.True(t, ok)
	assert.Equal(t, "0", tok.String())
	assert.Equal(t, 1, tok.Width())
}

func TestAddWidthChanges(t *testing.T) {
	tests := []struct {
		from  string
		delta int64
		want  string
		width int
	}{
		{"9", 1, "10", 2},
		{"10", -1, "9", 1},
		{"0", -1, "-1", 2},
		{"-1", 1, "0", 1},
		{"-10", 1, "-9", 2},
		{"-5", 1, "-4", 2},
		{"5", 3, "8", 1},
	}

	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			tok, ok := Parse(tt.from)
			require.True(t, ok)
			got := tok.Add(tt.delta)
			assert.Equal(t, tt.want, got.String())
			assert.Equal(t, tt.width, got.Width())
		})
	}
}

func TestAddSaturates(t *testing.T) {
	assert.Equal(t, int64(math.MaxInt64), Token{Value: math.MaxInt64}.Add(1).Value)
	assert.Equal(t, int64(math.MinInt64), Token{Value: math.MinInt64}.Add(-1).Value)
	assert.Equal(t, int64(math.MaxInt64-1), Token{Value: math.MaxInt64}.Add(-1).Value)
}

func TestParseFormatRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Int64().Draw(t, "v")
		tok, ok := Parse(strconv.FormatInt(v, 10))
		if !ok {
			t.Fatalf("canonical rendering of %d rejected", v)
		}
		if tok.Value != v {
			t.Fatalf("round trip: got %d, want %d", tok.Value, v)
		}
	})
}

func TestParseIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`-?[0-9]{1,18}`).Draw(t, "text")
		first, ok := Parse(text)
		if !ok {
			t.Fatalf("%q rejected", text)
		}
		second, ok := Parse(Format(first))
		if !ok || second.Value != first.Value {
			t.Fatalf("parse(format(parse(%q))) = %d, want %d", text, second.Value, first.Value)
		}
	})
}

func TestParseRejectsNonNumeric(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prefix := rapid.StringMatching(`[0-9]{0,4}`).Draw(t, "prefix")
		bad := rapid.RuneFrom([]rune("abcxyz._+ ")).Draw(t, "bad")
		suffix := rapid.StringMatching(`[0-9]{0,4}`).Draw(t, "suffix")
		text := prefix + string(bad) + suffix
		if _, ok := Parse(text); ok {
			t.Fatalf("%q should be rejected", text)
		}
	})
}
