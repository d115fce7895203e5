package dispatcher

import "errors"

// Dispatcher errors.
var (
	// ErrUnknownCommand indicates no command is registered for an action.
	ErrUnknownCommand = errors.New("dispatcher: no command for action")

	// ErrNothingToRepeat indicates RepeatLast was called before any
	// dot-repeatable command completed.
	ErrNothingToRepeat = errors.New("dispatcher: nothing to repeat")

	// ErrActionCancelled indicates the action was cancelled by a hook.
	ErrActionCancelled = errors.New("dispatcher: action cancelled by hook")

	// ErrPanic indicates the command panicked.
	ErrPanic = errors.New("dispatcher: command panic")

	// ErrInvalidAction indicates the action has no name.
	ErrInvalidAction = errors.New("dispatcher: invalid action")
)
