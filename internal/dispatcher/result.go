package dispatcher

import (
	"fmt"

	"github.com/dshills/keyact/internal/engine/buffer"
)

// Action names a command and the count typed before it.
type Action struct {
	// Name is the registered command name, e.g. "number.increment".
	Name string

	// Count is the numeric prefix. Zero means none.
	Count int
}

// String returns "name" or "count name".
func (a Action) String() string {
	if a.Count > 0 {
		return fmt.Sprintf("%d %s", a.Count, a.Name)
	}
	return a.Name
}

// Status indicates the outcome of an invocation.
type Status uint8

const (
	// StatusOK indicates the command ran and changed the document or cursor.
	StatusOK Status = iota
	// StatusNoOp indicates the command had no effect.
	StatusNoOp
	// StatusError indicates an error occurred.
	StatusError
	// StatusCancelled indicates a hook cancelled the invocation.
	StatusCancelled
)

// String returns a string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoOp:
		return "no-op"
	case StatusError:
		return "error"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result is the outcome of Execute or RepeatLast.
type Result struct {
	// Status is the outcome.
	Status Status

	// Error is set when Status is StatusError or StatusCancelled.
	Error error

	// Cursor is the cursor after the invocation.
	Cursor buffer.Position

	// InvocationID identifies the invocation in logs and traces.
	InvocationID string

	// Message is an optional human-readable note.
	Message string
}

// IsOK returns true if the status is StatusOK.
func (r Result) IsOK() bool {
	return r.Status == StatusOK
}

// IsError returns true if the status is StatusError.
func (r Result) IsError() bool {
	return r.Status == StatusError
}

func errorResult(err error) Result {
	return Result{Status: StatusError, Error: err, Message: err.Error()}
}
