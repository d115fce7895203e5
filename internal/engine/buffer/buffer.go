package buffer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Errors returned by buffer operations.
var (
	ErrPositionOutOfRange = errors.New("position out of range")
	ErrRangeInvalid       = errors.New("invalid range")
	ErrNothingToUndo      = errors.New("nothing to undo")
)

// LineEnding specifies the line ending style.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
	LineEndingCR                     // Old Mac: \r
)

// String returns the string representation of the line ending.
func (le LineEnding) String() string {
	switch le {
	case LineEndingCRLF:
		return "\\r\\n"
	case LineEndingCR:
		return "\\r"
	default:
		return "\\n"
	}
}

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// Buffer is a line-oriented text document.
// Lines are stored without terminators; the line ending is applied when the
// buffer is rendered with Text. All methods are thread-safe.
type Buffer struct {
	mu         sync.RWMutex
	lines      []string
	revisionID RevisionID
	lineEnding LineEnding
	journal    []Change
	maxJournal int
}

// NewBuffer creates a new empty buffer.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{
		lines:      []string{""},
		revisionID: NewRevisionID(),
		lineEnding: LineEndingLF,
		maxJournal: 1000,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// NewBufferFromString creates a buffer with initial content.
// CRLF and CR line endings are accepted and split like LF.
func NewBufferFromString(s string, opts ...Option) *Buffer {
	b := NewBuffer(opts...)
	b.lines = splitLines(s)
	return b
}

// NewBufferFromReader creates a buffer from an io.Reader.
func NewBufferFromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	// Read everything first; CRLF sequences may be split across reads.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewBufferFromString(string(data), opts...), nil
}

// splitLines normalizes line endings to LF and splits on them.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}

// Read Operations

// Text returns the full buffer content joined with the buffer's line ending.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return strings.Join(b.lines, b.lineEnding.Sequence())
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// LineText returns the text of a specific line (without line ending).
// Returns an empty string if the line does not exist.
func (b *Buffer) LineText(line int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if line < 0 || line >= len(b.lines) {
		return ""
	}
	return b.lines[line]
}

// LineAt returns the full text of the line containing pos.
func (b *Buffer) LineAt(pos Position) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if pos.Line < 0 || pos.Line >= len(b.lines) {
		return "", fmt.Errorf("line %d: %w", pos.Line, ErrPositionOutOfRange)
	}
	return b.lines[pos.Line], nil
}

// TextRange returns the text covered by r.
func (b *Buffer) TextRange(r Range) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkRange(r); err != nil {
		return "", err
	}
	return b.extract(r), nil
}

// Write Operations

// Replace replaces the text in r with text.
func (b *Buffer) Replace(ctx context.Context, r Range, text string) error {
	return b.apply(ctx, ChangeReplace, r, text)
}

// Delete removes the text in r.
func (b *Buffer) Delete(ctx context.Context, r Range) error {
	return b.apply(ctx, ChangeDelete, r, "")
}

// InsertAt inserts text at pos.
func (b *Buffer) InsertAt(ctx context.Context, pos Position, text string) error {
	return b.apply(ctx, ChangeInsert, Range{Start: pos, End: pos}, text)
}

// Undo reverts the most recent journaled change.
func (b *Buffer) Undo(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.journal) == 0 {
		return ErrNothingToUndo
	}
	last := b.journal[len(b.journal)-1]
	b.journal = b.journal[:len(b.journal)-1]

	inv := last.Invert()
	b.splice(inv.Range, inv.NewText)
	b.revisionID = NewRevisionID()
	return nil
}

// apply validates and commits a single change, recording it in the journal.
func (b *Buffer) apply(ctx context.Context, typ ChangeType, r Range, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkRange(r); err != nil {
		return err
	}

	old := b.splice(r, text)
	b.revisionID = NewRevisionID()
	b.record(Change{
		Type:     typ,
		Range:    r,
		NewRange: Range{Start: r.Start, End: endOf(r.Start, text)},
		OldText:  old,
		NewText:  text,
		Revision: b.revisionID,
	})
	return nil
}

// checkRange reports whether r addresses existing text. Caller holds the lock.
func (b *Buffer) checkRange(r Range) error {
	if !r.IsValid() {
		return fmt.Errorf("%s: %w", r, ErrRangeInvalid)
	}
	for _, p := range []Position{r.Start, r.End} {
		if p.Line >= len(b.lines) || p.Character > len(b.lines[p.Line]) {
			return fmt.Errorf("%s: %w", p, ErrPositionOutOfRange)
		}
	}
	return nil
}

// extract returns the text in r. Caller holds the lock.
func (b *Buffer) extract(r Range) string {
	if r.IsSingleLine() {
		return b.lines[r.Start.Line][r.Start.Character:r.End.Character]
	}
	var sb strings.Builder
	sb.WriteString(b.lines[r.Start.Line][r.Start.Character:])
	for line := r.Start.Line + 1; line < r.End.Line; line++ {
		sb.WriteByte('\n')
		sb.WriteString(b.lines[line])
	}
	sb.WriteByte('\n')
	sb.WriteString(b.lines[r.End.Line][:r.End.Character])
	return sb.String()
}

// splice replaces r with text and returns the removed text. Caller holds the lock.
func (b *Buffer) splice(r Range, text string) string {
	old := b.extract(r)
	prefix := b.lines[r.Start.Line][:r.Start.Character]
	suffix := b.lines[r.End.Line][r.End.Character:]
	replacement := strings.Split(prefix+text+suffix, "\n")

	lines := make([]string, 0, len(b.lines)-(r.End.Line-r.Start.Line)+len(replacement)-1)
	lines = append(lines, b.lines[:r.Start.Line]...)
	lines = append(lines, replacement...)
	lines = append(lines, b.lines[r.End.Line+1:]...)
	b.lines = lines
	return old
}

// record appends c to the journal, dropping the oldest entries past the limit.
func (b *Buffer) record(c Change) {
	b.journal = append(b.journal, c)
	if b.maxJournal > 0 && len(b.journal) > b.maxJournal {
		b.journal = append(b.journal[:0], b.journal[len(b.journal)-b.maxJournal:]...)
	}
}

// Buffer State

// RevisionID returns the current revision ID.
func (b *Buffer) RevisionID() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revisionID
}

// Revision implements execctx.Revisioner.
func (b *Buffer) Revision() RevisionID {
	return b.RevisionID()
}

// Changes returns a copy of the change journal, oldest first.
func (b *Buffer) Changes() []Change {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Change, len(b.journal))
	copy(out, b.journal)
	return out
}

// IsEmpty returns true if the buffer holds a single empty line.
func (b *Buffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines) == 1 && b.lines[0] == ""
}

// LineEnding returns the buffer's line ending style.
func (b *Buffer) LineEnding() LineEnding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEnding
}
