package buffer

import "fmt"

// Range represents a span of text between two positions.
// Start is inclusive, End is exclusive: [Start, End).
type Range struct {
	Start Position // Inclusive start position
	End   Position // Exclusive end position
}

// NewRange creates a new Range from start and end positions.
func NewRange(start, end Position) Range {
	return Range{Start: start, End: end}
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%s:%s)", r.Start.String(), r.End.String())
}

// IsEmpty returns true if start equals end.
func (r Range) IsEmpty() bool {
	return r.Start.Compare(r.End) == 0
}

// IsValid returns true if both ends are valid and start <= end.
func (r Range) IsValid() bool {
	return r.Start.IsValid() && r.End.IsValid() && r.Start.Compare(r.End) <= 0
}

// Contains returns true if the given position is within the range.
func (r Range) Contains(p Position) bool {
	return p.Compare(r.Start) >= 0 && p.Compare(r.End) < 0
}

// IsSingleLine returns true if the range spans only one line.
func (r Range) IsSingleLine() bool {
	return r.Start.Line == r.End.Line
}

// Len returns the number of characters covered by a single-line range.
// Multi-line ranges return -1.
func (r Range) Len() int {
	if !r.IsSingleLine() {
		return -1
	}
	return r.End.Character - r.Start.Character
}
