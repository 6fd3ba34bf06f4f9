package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/000haoji/deep-student-sub016/mode"
	"github.com/000haoji/deep-student-sub016/session"
)

// signalMode records OnInit invocations on a channel so tests can wait for
// the manager's init goroutine.
type signalMode struct {
	mode.PlainChat
	inited chan string
}

func (m *signalMode) Name() string { return "signal" }

func (m *signalMode) OnInit(ctx context.Context, sess mode.Session) error {
	m.inited <- sess.ID()
	return nil
}

func TestManager_GetOrCreate_IdentityMap(t *testing.T) {
	m := session.NewManager(session.DefaultConfig())
	ctx := context.Background()

	s1, err := m.GetOrCreate(ctx, "sess-1", session.GetOptions{})
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	s2, err := m.GetOrCreate(ctx, "sess-1", session.GetOptions{})
	if err != nil {
		t.Fatalf("second GetOrCreate failed: %v", err)
	}
	if s1 != s2 {
		t.Error("same session id returned distinct stores")
	}

	other, err := m.GetOrCreate(ctx, "sess-2", session.GetOptions{})
	if err != nil {
		t.Fatalf("GetOrCreate(sess-2) failed: %v", err)
	}
	if other == s1 {
		t.Error("distinct session ids share a store")
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestManager_GetOrCreate_EmptyIDGenerates(t *testing.T) {
	m := session.NewManager(session.DefaultConfig())

	s, err := m.GetOrCreate(context.Background(), "", session.GetOptions{})
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if s.ID() == "" {
		t.Error("store created without a session id")
	}
	if !m.Has(s.ID()) {
		t.Error("generated id not registered in the manager")
	}
}

func TestManager_Get(t *testing.T) {
	m := session.NewManager(session.DefaultConfig())

	if _, ok := m.Get("missing"); ok {
		t.Error("Get should miss before creation")
	}

	created, err := m.GetOrCreate(context.Background(), "sess-1", session.GetOptions{})
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	got, ok := m.Get("sess-1")
	if !ok || got != created {
		t.Error("Get did not return the created store")
	}
}

func TestManager_Sessions_Sorted(t *testing.T) {
	m := session.NewManager(session.DefaultConfig())
	ctx := context.Background()
	for _, id := range []string{"charlie", "alpha", "bravo"} {
		if _, err := m.GetOrCreate(ctx, id, session.GetOptions{}); err != nil {
			t.Fatalf("GetOrCreate(%s) failed: %v", id, err)
		}
	}

	got := m.Sessions()
	want := []string{"alpha", "bravo", "charlie"}
	if len(got) != len(want) {
		t.Fatalf("Sessions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Sessions() = %v, want %v", got, want)
		}
	}
}

func TestManager_GetOrCreate_ModeResolution(t *testing.T) {
	registry := mode.NewRegistry()
	if err := registry.Register(mode.NewPlainChat()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	m := session.NewManager(session.DefaultConfig(), session.WithModeRegistry(registry))
	ctx := context.Background()

	s, err := m.GetOrCreate(ctx, "sess-1", session.GetOptions{ModeName: mode.PlainName})
	if err != nil {
		t.Fatalf("GetOrCreate with plain mode failed: %v", err)
	}
	if s.Mode() == nil || s.Mode().Name() != mode.PlainName {
		t.Error("store did not adopt the requested mode")
	}

	if _, err := m.GetOrCreate(ctx, "sess-2", session.GetOptions{ModeName: "nope"}); !errors.Is(err, mode.ErrNotFound) {
		t.Errorf("unknown mode: got %v, want mode.ErrNotFound", err)
	}
	if m.Has("sess-2") {
		t.Error("failed creation left a store behind")
	}
}

func TestManager_GetOrCreate_NoRegistry(t *testing.T) {
	m := session.NewManager(session.DefaultConfig())

	_, err := m.GetOrCreate(context.Background(), "sess-1", session.GetOptions{ModeName: mode.PlainName})
	if !errors.Is(err, session.ErrNoModeRegistry) {
		t.Errorf("got %v, want ErrNoModeRegistry", err)
	}
}

func TestManager_GetOrCreate_RunsModeInit(t *testing.T) {
	sig := &signalMode{inited: make(chan string, 1)}
	registry := mode.NewRegistry()
	if err := registry.Register(sig); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	m := session.NewManager(session.DefaultConfig(), session.WithModeRegistry(registry))

	if _, err := m.GetOrCreate(context.Background(), "sess-1", session.GetOptions{ModeName: "signal"}); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	select {
	case id := <-sig.inited:
		if id != "sess-1" {
			t.Errorf("OnInit saw session %q, want sess-1", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("mode OnInit was never invoked")
	}
}

func TestManager_ConcurrentGetOrCreate_SingleInstance(t *testing.T) {
	m := session.NewManager(session.DefaultConfig())
	ctx := context.Background()

	const goroutines = 16
	stores := make([]*session.Store, goroutines)
	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := m.GetOrCreate(ctx, "shared", session.GetOptions{})
			if err != nil {
				t.Errorf("GetOrCreate failed: %v", err)
				return
			}
			stores[i] = s
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		if stores[i] != stores[0] {
			t.Fatal("concurrent GetOrCreate produced distinct stores")
		}
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}
