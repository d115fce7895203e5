package dispatcher

import (
	"github.com/dshills/keyact/internal/dispatcher/execctx"
)

// PreExecuteHook is called before a command runs.
// Returning false cancels the invocation.
type PreExecuteHook interface {
	// PreExecute may modify the action (for example its count).
	PreExecute(action *Action, st *execctx.ExecutionState) bool
}

// PostExecuteHook is called after a command runs, including on error.
type PostExecuteHook interface {
	// PostExecute may inspect or modify the result.
	PostExecute(action *Action, st *execctx.ExecutionState, result *Result)
}

// PreExecuteFunc is a function adapter for PreExecuteHook.
type PreExecuteFunc func(action *Action, st *execctx.ExecutionState) bool

// PreExecute implements PreExecuteHook.
func (f PreExecuteFunc) PreExecute(action *Action, st *execctx.ExecutionState) bool {
	return f(action, st)
}

// PostExecuteFunc is a function adapter for PostExecuteHook.
type PostExecuteFunc func(action *Action, st *execctx.ExecutionState, result *Result)

// PostExecute implements PostExecuteHook.
func (f PostExecuteFunc) PostExecute(action *Action, st *execctx.ExecutionState, result *Result) {
	f(action, st, result)
}

// ValidationHook rejects actions its function does not accept.
type ValidationHook struct {
	// ValidateFunc returns true if the action may run.
	ValidateFunc func(action *Action, st *execctx.ExecutionState) bool
}

// PreExecute validates the action.
func (h *ValidationHook) PreExecute(action *Action, st *execctx.ExecutionState) bool {
	if h.ValidateFunc != nil {
		return h.ValidateFunc(action, st)
	}
	return true
}

// RegisterPreHook registers a pre-execute hook.
func (d *Dispatcher) RegisterPreHook(hook PreExecuteHook) {
	d.hookMu.Lock()
	defer d.hookMu.Unlock()
	d.preHooks = append(d.preHooks, hook)
}

// RegisterPostHook registers a post-execute hook.
func (d *Dispatcher) RegisterPostHook(hook PostExecuteHook) {
	d.hookMu.Lock()
	defer d.hookMu.Unlock()
	d.postHooks = append(d.postHooks, hook)
}

// runPreHooks runs all pre-execute hooks.
// Returns false if any hook cancels the action.
func (d *Dispatcher) runPreHooks(action *Action, st *execctx.ExecutionState) bool {
	d.hookMu.RLock()
	hooks := make([]PreExecuteHook, len(d.preHooks))
	copy(hooks, d.preHooks)
	d.hookMu.RUnlock()

	for _, h := range hooks {
		if !h.PreExecute(action, st) {
			return false
		}
	}
	return true
}

// runPostHooks runs all post-execute hooks.
func (d *Dispatcher) runPostHooks(action *Action, st *execctx.ExecutionState, result *Result) {
	d.hookMu.RLock()
	hooks := make([]PostExecuteHook, len(d.postHooks))
	copy(hooks, d.postHooks)
	d.hookMu.RUnlock()

	for _, h := range hooks {
		h.PostExecute(action, st, result)
	}
}
