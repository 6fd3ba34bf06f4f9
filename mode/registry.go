package mode

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps mode names to Mode implementations. Modes are registered
// once, before any session using them is created. Thread-safe for concurrent
// access.
type Registry struct {
	mu    sync.RWMutex
	modes map[string]Mode
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{modes: make(map[string]Mode)}
}

// NewDefaultRegistry creates a Registry pre-loaded with the two reference
// modes: plain chat and the recognition-gated mode backed by rec.
func NewDefaultRegistry(rec Recognizer) *Registry {
	r := NewRegistry()
	// Built-ins cannot collide in a fresh registry.
	_ = r.Register(NewPlainChat())
	_ = r.Register(NewRecognitionMode(rec))
	return r
}

// Register adds a mode under its name.
// Returns ErrAlreadyExists if the name is taken; use Replace to swap.
func (r *Registry) Register(m Mode) error {
	name := m.Name()
	if name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modes[name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, name)
	}

	r.modes[name] = m
	return nil
}

// Replace swaps the implementation of an already-registered mode.
func (r *Registry) Replace(m Mode) error {
	name := m.Name()
	if name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modes[name]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	r.modes[name] = m
	return nil
}

// Get retrieves a mode by name.
func (r *Registry) Get(name string) (Mode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.modes[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return m, nil
}

// Names returns all registered mode names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modes))
	for name := range r.modes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
