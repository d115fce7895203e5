package number

import (
	"context"
	"fmt"

	"github.com/dshills/keyact/internal/dispatcher/command"
	"github.com/dshills/keyact/internal/dispatcher/execctx"
	"github.com/dshills/keyact/internal/engine/buffer"
	"github.com/dshills/keyact/internal/engine/numeric"
	"github.com/dshills/keyact/internal/engine/word"
)

// Action names for number commands.
const (
	ActionIncrement = "number.increment"
	ActionDecrement = "number.decrement"
)

// Command adds a fixed offset to the first number at or after the cursor's word.
type Command struct {
	command.Base
	offset int64
	seg    word.Segmenter
}

// Option configures a Command.
type Option func(*Command)

// WithSegmenter sets the word segmenter used to find candidate numbers.
func WithSegmenter(seg word.Segmenter) Option {
	return func(c *Command) {
		if seg != nil {
			c.seg = seg
		}
	}
}

// New creates a number command with the given offset.
//
// The recorded count scales the offset instead of repeating the command,
// so the command does not take a count prefix.
func New(offset int64, opts ...Option) *Command {
	c := &Command{
		Base:   command.NewBase(),
		offset: offset,
		seg:    word.Default(),
	}
	c.DotRepeat = true

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewIncrement creates the increment command (CTRL-A).
func NewIncrement(opts ...Option) *Command {
	return New(+1, opts...)
}

// NewDecrement creates the decrement command (CTRL-X).
func NewDecrement(opts ...Option) *Command {
	return New(-1, opts...)
}

// Offset returns the signed offset applied per count.
func (c *Command) Offset() int64 {
	return c.offset
}

// ApplyOnce implements command.Command.
func (c *Command) ApplyOnce(ctx context.Context, pos buffer.Position, st *execctx.ExecutionState) (*execctx.ExecutionState, error) {
	if err := st.Validate(); err != nil {
		return st, err
	}

	line, err := st.Engine.LineAt(pos)
	if err != nil {
		return st, fmt.Errorf("reading line %d: %w", pos.Line, err)
	}

	from := word.Left(c.seg, line, pos, true)
	for span := range word.Iterate(c.seg, line, from) {
		start, text := span.Start, span.Text
		// '-' is punctuation to the segmenter; reattach it before parsing.
		if start.Character > 0 && line[start.Character-1] == '-' {
			start = start.Left()
			text = "-" + text
		}

		tok, ok := numeric.Parse(text)
		if !ok {
			continue
		}

		delta := c.offset * int64(st.Recorded.Times())
		written, err := replaceNumber(ctx, st.Engine, tok, delta, buffer.NewRange(start, span.End))
		if err != nil {
			return st, err
		}
		// Rest on the last digit so the next application finds this number again.
		st.Cursor = written.End.Left()
		return st, nil
	}

	return st, nil
}

// ApplyRepeated implements command.Command.
func (c *Command) ApplyRepeated(ctx context.Context, pos buffer.Position, st *execctx.ExecutionState) (*execctx.ExecutionState, error) {
	return command.Repeat(ctx, c, pos, st)
}

// replaceNumber writes tok+delta over r and returns the range the new text
// occupies.
func replaceNumber(ctx context.Context, engine execctx.Engine, tok numeric.Token, delta int64, r buffer.Range) (buffer.Range, error) {
	oldWidth := tok.Width()
	next := tok.Add(delta)
	text := next.String()

	if next.Width() == oldWidth {
		if err := engine.Replace(ctx, r, text); err != nil {
			return buffer.Range{}, fmt.Errorf("replacing %s: %w", r, err)
		}
	} else {
		// The insert targets r.Start, which is only valid once the delete has committed.
		if err := engine.Delete(ctx, r); err != nil {
			return buffer.Range{}, fmt.Errorf("deleting %s: %w", r, err)
		}
		if err := engine.InsertAt(ctx, r.Start, text); err != nil {
			return buffer.Range{}, fmt.Errorf("inserting at %s: %w", r.Start, err)
		}
	}

	return buffer.NewRange(r.Start, r.Start.Translate(len(text))), nil
}
