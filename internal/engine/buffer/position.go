package buffer

import (
	"fmt"
	"sync/atomic"
)

// Position represents a line and character position.
// Both Line and Character are 0-indexed.
// Character is measured in bytes from the start of the line.
type Position struct {
	Line      int // 0-indexed line number
	Character int // 0-indexed column (byte offset within line)
}

// NewPosition creates a Position.
func NewPosition(line, character int) Position {
	return Position{Line: line, Character: character}
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Character)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Position) Compare(other Position) int {
	if p.Line < other.Line {
		return -1
	}
	if p.Line > other.Line {
		return 1
	}
	if p.Character < other.Character {
		return -1
	}
	if p.Character > other.Character {
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Position) Before(other Position) bool {
	return p.Compare(other) < 0
}

// After returns true if p comes after other.
func (p Position) After(other Position) bool {
	return p.Compare(other) > 0
}

// IsZero returns true if this is the zero position (0:0).
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Character == 0
}

// IsValid returns true if neither coordinate is negative.
func (p Position) IsValid() bool {
	return p.Line >= 0 && p.Character >= 0
}

// Left returns the position one character to the left, stopping at the
// start of the line.
func (p Position) Left() Position {
	if p.Character == 0 {
		return p
	}
	return Position{Line: p.Line, Character: p.Character - 1}
}

// Right returns the position one character to the right.
func (p Position) Right() Position {
	return Position{Line: p.Line, Character: p.Character + 1}
}

// Translate returns the position shifted by delta characters on the same line.
// The result is clamped at the start of the line.
func (p Position) Translate(delta int) Position {
	c := p.Character + delta
	if c < 0 {
		c = 0
	}
	return Position{Line: p.Line, Character: c}
}

// RevisionID uniquely identifies a buffer revision.
// Each modification to the buffer creates a new revision.
type RevisionID uint64

var revisionCounter uint64

// NewRevisionID generates a new unique revision ID.
func NewRevisionID() RevisionID {
	return RevisionID(atomic.AddUint64(&revisionCounter, 1))
}
