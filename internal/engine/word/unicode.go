package word

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// UnicodeSegmenter splits lines on Unicode word boundaries (UAX #29).
// Unlike ClassSegmenter it keeps numbers such as "1.5" or "1,000" together,
// and splits every punctuation character into its own word.
type UnicodeSegmenter struct{}

// NewUnicodeSegmenter creates a UAX #29 segmenter.
func NewUnicodeSegmenter() *UnicodeSegmenter {
	return &UnicodeSegmenter{}
}

// Segment implements Segmenter.
func (UnicodeSegmenter) Segment(line string) []Span {
	var spans []Span

	offset := 0
	rest := line
	state := -1
	for len(rest) > 0 {
		var w string
		w, rest, state = uniseg.FirstWordInString(rest, state)
		if strings.TrimFunc(w, unicode.IsSpace) != "" {
			spans = append(spans, newSpan(line, offset, offset+len(w)))
		}
		offset += len(w)
	}

	return spans
}
