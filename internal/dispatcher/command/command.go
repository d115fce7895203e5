// Package command defines the execution contract shared by editor actions.
//
// A command implements a single application (ApplyOnce). Count handling
// lives in Repeat, so concrete commands never loop on their own:
//
//	type Upcase struct{ command.Base }
//
//	func (c *Upcase) ApplyOnce(ctx context.Context, pos buffer.Position, st *execctx.ExecutionState) (*execctx.ExecutionState, error) {
//	    // one application at pos
//	}
//
//	func (c *Upcase) ApplyRepeated(ctx context.Context, pos buffer.Position, st *execctx.ExecutionState) (*execctx.ExecutionState, error) {
//	    return command.Repeat(ctx, c, pos, st)
//	}
package command

import (
	"context"

	"github.com/dshills/keyact/internal/dispatcher/execctx"
	"github.com/dshills/keyact/internal/engine/buffer"
)

// Applier performs one application of an action.
type Applier interface {
	// ApplyOnce performs exactly one application at pos and returns the
	// updated state (at minimum, an updated cursor).
	ApplyOnce(ctx context.Context, pos buffer.Position, st *execctx.ExecutionState) (*execctx.ExecutionState, error)

	// CanBePrefixedWithCount reports whether the recorded count multiplies
	// the number of applications.
	CanBePrefixedWithCount() bool
}

// Command is a polymorphic unit of editor behavior.
type Command interface {
	Applier

	// ApplyRepeated applies the command as many times as the state's count
	// requests. Implementations delegate to Repeat.
	ApplyRepeated(ctx context.Context, pos buffer.Position, st *execctx.ExecutionState) (*execctx.ExecutionState, error)

	// IsCompleteAction reports whether triggering this command alone is a
	// full action the dispatcher may run.
	IsCompleteAction() bool

	// CanBeRepeatedWithDot reports whether the command is recorded for '.'.
	CanBeRepeatedWithDot() bool
}

// Flags holds the declarative properties of a command.
type Flags struct {
	CompleteAction bool
	CountPrefix    bool
	DotRepeat      bool
}

// DefaultFlags returns the flags every command starts with: a complete
// action that ignores counts and is not recorded for '.'.
func DefaultFlags() Flags {
	return Flags{CompleteAction: true}
}

// IsCompleteAction implements Command.
func (f Flags) IsCompleteAction() bool { return f.CompleteAction }

// CanBePrefixedWithCount implements Command.
func (f Flags) CanBePrefixedWithCount() bool { return f.CountPrefix }

// CanBeRepeatedWithDot implements Command.
func (f Flags) CanBeRepeatedWithDot() bool { return f.DotRepeat }

// Base supplies flags to concrete commands.
// Its ApplyOnce panics: a command embedding Base must provide its own.
type Base struct {
	Flags
}

// NewBase creates a Base with DefaultFlags.
func NewBase() Base {
	return Base{Flags: DefaultFlags()}
}

// ApplyOnce panics with ErrNotImplemented.
func (Base) ApplyOnce(context.Context, buffer.Position, *execctx.ExecutionState) (*execctx.ExecutionState, error) {
	panic(ErrNotImplemented)
}

// Repeat drives an applier for the number of times the state requests.
// The count is honored only when a.CanBePrefixedWithCount(); absent or
// non-positive counts mean one application. Each iteration starts at the
// cursor left by the previous one. The first error stops the loop.
func Repeat(ctx context.Context, a Applier, pos buffer.Position, st *execctx.ExecutionState) (*execctx.ExecutionState, error) {
	times := 1
	if a.CanBePrefixedWithCount() {
		times = st.Recorded.Times()
	}

	var err error
	for i := 0; i < times; i++ {
		st, err = a.ApplyOnce(ctx, pos, st)
		if err != nil {
			return st, err
		}
		pos = st.Cursor
	}
	return st, nil
}

// ApplyFunc is the signature of a single application.
type ApplyFunc func(ctx context.Context, pos buffer.Position, st *execctx.ExecutionState) (*execctx.ExecutionState, error)

// Func adapts a function to the Command interface.
type Func struct {
	Flags
	fn ApplyFunc
}

// NewFunc creates a Func command with the given flags.
func NewFunc(flags Flags, fn ApplyFunc) *Func {
	return &Func{Flags: flags, fn: fn}
}

// ApplyOnce implements Command.
func (f *Func) ApplyOnce(ctx context.Context, pos buffer.Position, st *execctx.ExecutionState) (*execctx.ExecutionState, error) {
	if f.fn == nil {
		return st, ErrNilFunc
	}
	return f.fn(ctx, pos, st)
}

// ApplyRepeated implements Command.
func (f *Func) ApplyRepeated(ctx context.Context, pos buffer.Position, st *execctx.ExecutionState) (*execctx.ExecutionState, error) {
	return Repeat(ctx, f, pos, st)
}
