package command

import "errors"

// Command errors.
var (
	// ErrNotImplemented is the panic value raised when a command relies on
	// Base.ApplyOnce instead of providing its own. It marks a programming
	// error and is never recovered.
	ErrNotImplemented = errors.New("command: ApplyOnce not implemented")

	// ErrNilFunc indicates a Func command without a function.
	ErrNilFunc = errors.New("command: function is nil")
)
