package execctx

import "errors"

// State validation errors.
var (
	// ErrMissingState indicates a nil execution state was passed.
	ErrMissingState = errors.New("execution state: state is required")

	// ErrMissingEngine indicates the engine is required but not set.
	ErrMissingEngine = errors.New("execution state: engine is required")

	// ErrInvalidCursor indicates the cursor has a negative coordinate.
	ErrInvalidCursor = errors.New("execution state: cursor position is invalid")
)
