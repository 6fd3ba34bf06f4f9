package mode_test

import (
	"context"
	"testing"

	"github.com/000haoji/deep-student-sub016/mode"
	"github.com/000haoji/deep-student-sub016/session"
)

func TestPlainChat_NeverBlocksSends(t *testing.T) {
	m := mode.NewPlainChat()
	sess := session.NewStore("", session.DefaultConfig(), session.WithMode(m))

	if err := m.OnInit(context.Background(), sess); err != nil {
		t.Fatalf("OnInit failed: %v", err)
	}
	if sess.ModeState() != nil {
		t.Error("plain mode should carry no state")
	}
	if !sess.Sendable() {
		t.Error("plain session should always be sendable when idle")
	}
	if _, _, err := sess.SendMessage(context.Background(), "hi"); err != nil {
		t.Errorf("send failed: %v", err)
	}
}

func TestPlainChat_PromptAndTools(t *testing.T) {
	m := mode.NewPlainChat()
	sess := session.NewStore("", session.DefaultConfig(), session.WithMode(m))

	if got := m.BuildSystemPrompt(mode.PromptContext{ModeName: mode.PlainName}); got == "" {
		t.Error("plain prompt must not be empty")
	}
	if tools := m.EnabledTools(sess); tools != nil {
		t.Errorf("plain mode tools = %v, want nil", tools)
	}
	cfg := m.ModeConfig()
	if cfg.RequiresPreprocessing || cfg.AutoSendFirstMessage {
		t.Errorf("plain mode config should be zero: %+v", cfg)
	}
}
