package word

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/keyact/internal/engine/buffer"
)

// Span is a single word on a line. End is exclusive.
type Span struct {
	Start buffer.Position
	End   buffer.Position
	Text  string
}

// Segmenter splits a line into word spans.
// Spans are returned in order, on line 0, and never contain whitespace-only text.
type Segmenter interface {
	Segment(line string) []Span
}

// Class is the character class used by ClassSegmenter.
type Class uint8

const (
	ClassSpace Class = iota
	ClassWord
	ClassPunct
)

// ClassSegmenter groups runs of runes that share a Class into words.
// Letters and digits are word characters, plus any configured connectors.
// Every other non-space rune is punctuation, and a run of punctuation forms
// its own word.
type ClassSegmenter struct {
	connectors string
}

// NewClassSegmenter creates a segmenter treating the runes in connectors as
// word characters. An empty string means letters and digits only.
func NewClassSegmenter(connectors string) *ClassSegmenter {
	return &ClassSegmenter{connectors: connectors}
}

// Default returns the segmenter matching vim's 'iskeyword' default:
// letters, digits and underscore.
func Default() *ClassSegmenter {
	return NewClassSegmenter("_")
}

// ClassOf returns the class of r.
func (s *ClassSegmenter) ClassOf(r rune) Class {
	switch {
	case unicode.IsSpace(r):
		return ClassSpace
	case unicode.IsLetter(r), unicode.IsDigit(r), strings.ContainsRune(s.connectors, r):
		return ClassWord
	default:
		return ClassPunct
	}
}

// Segment implements Segmenter.
func (s *ClassSegmenter) Segment(line string) []Span {
	var spans []Span

	start, cur := -1, ClassSpace
	flush := func(end int) {
		if start >= 0 {
			spans = append(spans, newSpan(line, start, end))
		}
		start = -1
	}

	for i := 0; i < len(line); {
		r, size := utf8.DecodeRuneInString(line[i:])
		cls := s.ClassOf(r)
		if cls != cur {
			flush(i)
			if cls != ClassSpace {
				start = i
			}
			cur = cls
		}
		i += size
	}
	flush(len(line))

	return spans
}

func newSpan(line string, start, end int) Span {
	return Span{
		Start: buffer.Position{Character: start},
		End:   buffer.Position{Character: end},
		Text:  line[start:end],
	}
}

// onLine moves a span produced by a Segmenter onto the given line.
func onLine(s Span, line int) Span {
	s.Start.Line = line
	s.End.Line = line
	return s
}

// Left returns the start of the nearest word beginning at or before pos
// (strictly before pos when includeCurrent is false). It returns the start
// of the line when no such word exists.
func Left(seg Segmenter, line string, pos buffer.Position, includeCurrent bool) buffer.Position {
	result := buffer.Position{Line: pos.Line}
	for _, s := range seg.Segment(line) {
		c := s.Start.Character
		if c > pos.Character || (!includeCurrent && c == pos.Character) {
			break
		}
		result.Character = c
	}
	return result
}

// Iterate yields the words of line that start at or after from, in order.
// Consumers may stop early; the sequence is computed once per call.
func Iterate(seg Segmenter, line string, from buffer.Position) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		for _, s := range seg.Segment(line) {
			if s.Start.Character < from.Character {
				continue
			}
			if !yield(onLine(s, from.Line)) {
				return
			}
		}
	}
}
