// Package mode implements pluggable interaction modes for chat sessions.
//
// A mode is a named capability bundle the session store consults at fixed
// hook points: once at session initialization (OnInit), as a guard before
// every send (OnSendMessage), and when assembling the system prompt and tool
// set for an assistant turn. Modes never reach into store internals; they see
// sessions through the narrow Session interface, which the store satisfies.
// This keeps the store closed for modification while new conversation modes
// stay a Register call away.
package mode

import "context"

// Session is the view of a session store that mode hooks operate on.
// ModeState is opaque to the store and owned exclusively by the active
// mode's hooks; modes that need no state leave it nil.
type Session interface {
	// ID returns the session identifier.
	ID() string
	// SendMessage submits user text, returning the created user and
	// assistant message ids. Used by modes with auto-send behavior.
	SendMessage(ctx context.Context, text string) (userMsgID, assistantMsgID string, err error)
	// ModeState returns the mode-owned state attached to the session.
	ModeState() any
	// SetModeState replaces the mode-owned state.
	SetModeState(state any)
}

// Config describes a mode's static behavior flags.
type Config struct {
	// RequiresPreprocessing marks modes that must run an asynchronous
	// preparation step (e.g., document recognition) before the first send.
	RequiresPreprocessing bool
	// AutoSendFirstMessage makes OnInit submit the first message on the
	// user's behalf once preprocessing succeeds.
	AutoSendFirstMessage bool
	// DefaultTools lists the tool identifiers enabled in this mode.
	DefaultTools []string
}

// PromptContext carries the inputs for system prompt construction.
type PromptContext struct {
	SessionID string
	ModeName  string
	State     any
}

// Mode is a registered interaction mode. Implementations must be safe for
// concurrent use; a single Mode instance serves every session using it.
type Mode interface {
	// Name returns the unique mode name used for registry lookup.
	Name() string
	// ModeConfig returns the mode's static behavior flags.
	ModeConfig() Config
	// OnInit runs once when a session adopts the mode. It may block on
	// external work (the manager invokes it on its own goroutine) and may
	// call sess.SendMessage.
	OnInit(ctx context.Context, sess Session) error
	// OnSendMessage is the synchronous send guard. A non-nil error blocks
	// the send before any mutation.
	OnSendMessage(sess Session, text string) error
	// BuildSystemPrompt derives the system prompt from session id, mode
	// name, and mode state. Pure.
	BuildSystemPrompt(pc PromptContext) string
	// EnabledTools returns the tool identifiers available in this mode.
	EnabledTools(sess Session) []string
}

// CanSend reports whether the session's mode permits sending right now.
// Modes expose the check by implementing CanSend(Session) bool; modes
// without one never block, as does a nil mode.
func CanSend(m Mode, sess Session) bool {
	type sendGate interface {
		CanSend(Session) bool
	}
	if g, ok := m.(sendGate); ok {
		return g.CanSend(sess)
	}
	return true
}
