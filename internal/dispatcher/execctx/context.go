// Package execctx provides the execution state threaded through editor actions.
package execctx

import (
	"context"

	"github.com/dshills/keyact/internal/engine/buffer"
)

// Engine abstracts the text document for actions.
//
// Mutations are scoped and ordered: each call commits (or fails) before it
// returns, and a later call may rely on coordinates produced by an earlier one.
// Callers must not reorder or run them concurrently.
type Engine interface {
	// LineAt returns the full text of the line containing pos.
	LineAt(pos buffer.Position) (string, error)

	// Replace replaces the text in r.
	Replace(ctx context.Context, r buffer.Range, text string) error

	// Delete removes the text in r.
	Delete(ctx context.Context, r buffer.Range) error

	// InsertAt inserts text at pos.
	InsertAt(ctx context.Context, pos buffer.Position, text string) error
}

// Revisioner is implemented by engines that can report their revision.
// The dispatcher uses it to tell edits apart from no-ops.
type Revisioner interface {
	Revision() buffer.RevisionID
}

// RecordedState holds the pending input for the in-flight action.
type RecordedState struct {
	// Count is the numeric prefix typed before the action. Zero means none.
	Count int
}

// Times returns the repeat count, defaulting to 1.
func (r RecordedState) Times() int {
	if r.Count <= 0 {
		return 1
	}
	return r.Count
}

// Reset clears the recorded input.
func (r *RecordedState) Reset() {
	r.Count = 0
}

// ExecutionState is the mutable session state for one top-level invocation.
// It is updated in place across repeated applications and returned by each one.
type ExecutionState struct {
	// Cursor is the current cursor position.
	Cursor buffer.Position

	// Recorded holds the pending count.
	Recorded RecordedState

	// Engine is the document being edited.
	Engine Engine
}

// New creates an execution state for engine with the cursor at cursor.
func New(engine Engine, cursor buffer.Position) *ExecutionState {
	return &ExecutionState{
		Cursor: cursor,
		Engine: engine,
	}
}

// WithCount returns the state with the recorded count set.
func (s *ExecutionState) WithCount(count int) *ExecutionState {
	s.Recorded.Count = count
	return s
}

// WithCursor returns the state with the cursor set.
func (s *ExecutionState) WithCursor(pos buffer.Position) *ExecutionState {
	s.Cursor = pos
	return s
}

// Revision returns the engine revision and whether the engine reports one.
func (s *ExecutionState) Revision() (buffer.RevisionID, bool) {
	if r, ok := s.Engine.(Revisioner); ok {
		return r.Revision(), true
	}
	return 0, false
}

// Validate checks that the state has all required components.
func (s *ExecutionState) Validate() error {
	if s == nil {
		return ErrMissingState
	}
	if s.Engine == nil {
		return ErrMissingEngine
	}
	if !s.Cursor.IsValid() {
		return ErrInvalidCursor
	}
	return nil
}
