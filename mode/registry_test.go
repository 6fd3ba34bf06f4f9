package mode_test

import (
	"context"
	"errors"
	"testing"

	"github.com/000haoji/deep-student-sub016/core/chat"
	"github.com/000haoji/deep-student-sub016/mode"
)

type stubRecognizer struct {
	result *mode.RecognitionResult
	err    error
	steps  []int
}

func (r *stubRecognizer) Recognize(ctx context.Context, images []chat.Attachment, progress func(int)) (*mode.RecognitionResult, error) {
	for _, p := range r.steps {
		progress(p)
	}
	return r.result, r.err
}

// namedMode lets tests register modes under arbitrary names.
type namedMode struct {
	mode.PlainChat
	name string
}

func (m *namedMode) Name() string { return m.name }

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := mode.NewRegistry()

	if err := r.Register(mode.NewPlainChat()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	m, err := r.Get(mode.PlainName)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if m.Name() != mode.PlainName {
		t.Errorf("Name() = %q, want %q", m.Name(), mode.PlainName)
	}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := mode.NewRegistry()
	if err := r.Register(mode.NewPlainChat()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(mode.NewPlainChat()); !errors.Is(err, mode.ErrAlreadyExists) {
		t.Errorf("got %v, want ErrAlreadyExists", err)
	}
}

func TestRegistry_RegisterEmptyName(t *testing.T) {
	r := mode.NewRegistry()
	if err := r.Register(&namedMode{}); !errors.Is(err, mode.ErrEmptyName) {
		t.Errorf("got %v, want ErrEmptyName", err)
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := mode.NewRegistry()
	if _, err := r.Get("missing"); !errors.Is(err, mode.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestRegistry_Replace(t *testing.T) {
	r := mode.NewRegistry()

	if err := r.Replace(mode.NewPlainChat()); !errors.Is(err, mode.ErrNotFound) {
		t.Errorf("Replace before Register: got %v, want ErrNotFound", err)
	}

	if err := r.Register(mode.NewPlainChat()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	replacement := &namedMode{name: mode.PlainName}
	if err := r.Replace(replacement); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	got, err := r.Get(mode.PlainName)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != mode.Mode(replacement) {
		t.Error("Replace did not swap the implementation")
	}
}

func TestRegistry_Names_Sorted(t *testing.T) {
	r := mode.NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register(&namedMode{name: name}); err != nil {
			t.Fatalf("Register(%s) failed: %v", name, err)
		}
	}

	got := r.Names()
	want := []string{"alpha", "mid", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", got, want)
		}
	}
}

func TestNewDefaultRegistry(t *testing.T) {
	r := mode.NewDefaultRegistry(&stubRecognizer{})

	for _, name := range []string{mode.PlainName, mode.RecognitionName} {
		if _, err := r.Get(name); err != nil {
			t.Errorf("default registry missing %q: %v", name, err)
		}
	}
}
