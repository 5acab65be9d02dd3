package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Function is a host function callable from actor expressions.
// It receives a context and the positional arguments of the call, and
// returns a result or error.
type Function func(ctx context.Context, args []any) (any, error)

// Registry manages the host functions available to expression evaluators.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Function
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		funcs: make(map[string]Function),
	}
}

// Register adds a function to the registry.
// If a function with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Names returns the registered function names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call looks up a function by name and executes it.
// Returns an error if the function is not found.
func (r *Registry) Call(ctx context.Context, name string, args []any) (any, error) {
	r.mu.RLock()
	fn, ok := r.funcs[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("function not found: %s", name)
	}

	return fn(ctx, args)
}
