package observability

import (
	"fmt"
	"log/slog"
	"sync"
)

var (
	observers = defaultObservers()
	mutex     sync.RWMutex
)

func defaultObservers() map[string]Observer {
	return map[string]Observer{
		"noop": NoOpObserver{},
		"slog": NewSlogObserver(slog.Default()),
	}
}

// GetObserver returns a registered observer by name.
// Pre-registered observers: "noop" and "slog" (default logger).
func GetObserver(name string) (Observer, error) {
	mutex.RLock()
	defer mutex.RUnlock()

	obs, exists := observers[name]
	if !exists {
		return nil, fmt.Errorf("unknown observer: %s", name)
	}
	return obs, nil
}

// RegisterObserver adds or replaces a named observer in the registry.
func RegisterObserver(name string, observer Observer) {
	mutex.Lock()
	defer mutex.Unlock()

	observers[name] = observer
}

// ResetObservers restores the registry to its pre-registered defaults.
// Intended for tests that register throwaway observers.
func ResetObservers() {
	mutex.Lock()
	defer mutex.Unlock()

	observers = defaultObservers()
}
