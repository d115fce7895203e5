package dispatcher

import (
	"sort"
	"sync"

	"github.com/dshills/keyact/internal/dispatcher/command"
)

// Registry maps action names to commands.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]command.Command
}

// NewRegistry creates a new command registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]command.Command),
	}
}

// Register binds cmd to name, replacing any previous binding.
// A nil cmd removes the binding.
func (r *Registry) Register(name string, cmd command.Command) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cmd == nil {
		delete(r.commands, name)
		return
	}
	r.commands[name] = cmd
}

// Unregister removes the command bound to name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.commands, name)
}

// Get returns the command bound to name, or nil.
func (r *Registry) Get(name string) command.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commands[name]
}

// Has returns true if a command is bound to name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.commands[name]
	return ok
}

// List returns all registered action names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered actions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Clear removes all registered commands.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = make(map[string]command.Command)
}
