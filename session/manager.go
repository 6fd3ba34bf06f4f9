package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/000haoji/deep-student-sub016/core/chat"
	"github.com/000haoji/deep-student-sub016/mode"
	"github.com/000haoji/deep-student-sub016/observability"
)

// Manager is the identity map from session id to Store. Repeated
// GetOrCreate calls with the same id always return the identical Store
// pointer, which is what lets multiple UI observers of one session stay
// consistent without synchronizing with each other. Stores are created once
// and never evicted; the map grows with the number of distinct sessions the
// process has touched.
type Manager struct {
	cfg      Config
	registry *mode.Registry
	observer observability.Observer

	mu     sync.RWMutex
	stores map[string]*Store
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithModeRegistry attaches the registry used to resolve GetOptions.ModeName.
func WithModeRegistry(r *mode.Registry) ManagerOption {
	return func(m *Manager) { m.registry = r }
}

// WithManagerObserver overrides the default NoOpObserver for the manager and
// every store it creates.
func WithManagerObserver(o observability.Observer) ManagerOption {
	return func(m *Manager) { m.observer = o }
}

// NewManager creates a Manager whose stores initialize from cfg.
func NewManager(cfg Config, opts ...ManagerOption) *Manager {
	m := &Manager{
		cfg:      cfg,
		observer: observability.NoOpObserver{},
		stores:   make(map[string]*Store),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetOptions carries creation-time options for GetOrCreate. They apply only
// when the call actually creates the store; for an existing session they are
// ignored.
type GetOptions struct {
	// ModeName selects the interaction mode, resolved through the
	// manager's mode registry. Empty means no mode.
	ModeName string
	// ModeState seeds the mode-owned state before OnInit runs (e.g., the
	// input images for a recognition-gated session).
	ModeState any
}

// GetOrCreate returns the store for sessionID, constructing it exactly once.
// An empty sessionID creates a store under a fresh id. When a mode is
// selected, its OnInit hook runs on a dedicated goroutine after the store is
// registered, so callers never wait on preprocessing; init failures surface
// as EventModeInitError through the observer.
func (m *Manager) GetOrCreate(ctx context.Context, sessionID string, opts GetOptions) (*Store, error) {
	if sessionID == "" {
		sessionID = chat.NewID()
	}

	m.mu.Lock()
	if s, exists := m.stores[sessionID]; exists {
		m.mu.Unlock()
		return s, nil
	}

	var md mode.Mode
	if opts.ModeName != "" {
		if m.registry == nil {
			m.mu.Unlock()
			return nil, fmt.Errorf("%w: cannot resolve mode %q", ErrNoModeRegistry, opts.ModeName)
		}
		var err error
		md, err = m.registry.Get(opts.ModeName)
		if err != nil {
			m.mu.Unlock()
			return nil, err
		}
	}

	s := NewStore(sessionID, m.cfg,
		WithObserver(m.observer),
		WithMode(md),
		WithModeState(opts.ModeState),
	)
	m.stores[sessionID] = s
	m.mu.Unlock()

	m.observer.OnEvent(ctx, observability.Event{
		Type:      EventSessionCreate,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "session.Manager",
		Data: map[string]any{
			"session_id": sessionID,
			"mode":       opts.ModeName,
		},
	})

	if md != nil {
		go m.runModeInit(ctx, md, s)
	}
	return s, nil
}

// Get returns the store for sessionID without creating one.
func (m *Manager) Get(sessionID string) (*Store, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.stores[sessionID]
	return s, ok
}

// Has reports whether a store exists for sessionID.
func (m *Manager) Has(sessionID string) bool {
	_, ok := m.Get(sessionID)
	return ok
}

// Len returns the number of sessions the manager has created.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.stores)
}

// Sessions returns all known session ids, sorted.
func (m *Manager) Sessions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.stores))
	for id := range m.stores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *Manager) runModeInit(ctx context.Context, md mode.Mode, s *Store) {
	if err := md.OnInit(ctx, s); err != nil {
		m.observer.OnEvent(ctx, observability.Event{
			Type:      EventModeInitError,
			Level:     observability.LevelError,
			Timestamp: time.Now(),
			Source:    "session.Manager",
			Data: map[string]any{
				"session_id": s.ID(),
				"mode":       md.Name(),
				"error":      err.Error(),
			},
		})
	}
}
