package buffer

import "fmt"

// ChangeType categorizes the type of change made to the buffer.
type ChangeType uint8

const (
	ChangeInsert  ChangeType = iota // Text was inserted
	ChangeDelete                    // Text was deleted
	ChangeReplace                   // Text was replaced
)

// String returns a string representation of the change type.
func (c ChangeType) String() string {
	switch c {
	case ChangeInsert:
		return "insert"
	case ChangeDelete:
		return "delete"
	case ChangeReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Change represents a single committed change to the buffer.
type Change struct {
	Type     ChangeType // Type of change
	Range    Range      // Original range that was affected
	NewRange Range      // Resulting range after the change
	OldText  string     // Text that was removed (for delete/replace)
	NewText  string     // Text that was added (for insert/replace)
	Revision RevisionID // Revision created by this change
}

// String returns a human-readable representation of the change.
func (c Change) String() string {
	switch c.Type {
	case ChangeInsert:
		return fmt.Sprintf("Insert(%s, %q)", c.Range.Start, c.NewText)
	case ChangeDelete:
		return fmt.Sprintf("Delete%s", c.Range)
	default:
		return fmt.Sprintf("Replace%s with %q", c.Range, c.NewText)
	}
}

// Invert returns the inverse change that would undo this change.
func (c Change) Invert() Change {
	switch c.Type {
	case ChangeInsert:
		return Change{
			Type:     ChangeDelete,
			Range:    c.NewRange,
			NewRange: Range{Start: c.NewRange.Start, End: c.NewRange.Start},
			OldText:  c.NewText,
		}
	case ChangeDelete:
		return Change{
			Type:     ChangeInsert,
			Range:    Range{Start: c.Range.Start, End: c.Range.Start},
			NewRange: c.Range,
			NewText:  c.OldText,
		}
	default:
		return Change{
			Type:     ChangeReplace,
			Range:    c.NewRange,
			NewRange: c.Range,
			OldText:  c.NewText,
			NewText:  c.OldText,
		}
	}
}

// endOf returns the position just past text when inserted at start.
func endOf(start Position, text string) Position {
	line, col := start.Line, start.Character
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			line++
			col = 0
			continue
		}
		col++
	}
	return Position{Line: line, Character: col}
}
