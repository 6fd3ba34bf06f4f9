// Package session implements the per-conversation state engine: the Store
// aggregate that owns a conversation's messages and blocks, the action set
// that mutates them, and the Manager identity map that guarantees one store
// per session id.
//
// The engine performs no I/O. Streaming backends, recognition services, and
// attachment storage are external collaborators; they drive the store by
// calling its actions in arrival order. All Store methods are safe for
// concurrent use, but the engine's only concurrency control is the
// single-flight guarantee: SendMessage refuses while an assistant turn is
// already in flight.
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

// Status is the session-level streaming state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusStreaming Status = "streaming"
)

// Store is the aggregate for one conversation. Create stores through
// Manager.GetOrCreate to get the identity guarantee, or NewStore directly in
// tests.
type Store struct {
	sessionID string
	cfg       Config
	mode      mode.Mode
	observer  observability.Observer

	mu                 sync.RWMutex
	status             Status
	messages           map[string]chat.Message
	order              []string
	blocks             map[string]chat.Block
	currentStreamingID string
	active             map[string]struct{}
	params             chat.Params
	features           map[string]bool
	panels             map[Panel]bool
	input              string
	attachments        []chat.Attachment
	modeState          any
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithObserver overrides the default NoOpObserver.
func WithObserver(o observability.Observer) Option {
	return func(s *Store) { s.observer = o }
}

// WithMode attaches an interaction mode consulted at send time.
func WithMode(m mode.Mode) Option {
	return func(s *Store) { s.mode = m }
}

// WithModeState seeds the mode-owned state before the mode's OnInit runs.
func WithModeState(state any) Option {
	return func(s *Store) { s.modeState = state }
}

// NewStore creates an idle store for the given session id, initialized from
// cfg's defaults. An empty sessionID gets a fresh UUIDv7.
func NewStore(sessionID string, cfg Config, opts ...Option) *Store {
	if sessionID == "" {
		sessionID = chat.NewID()
	}

	features := make(map[string]bool, len(cfg.Features))
	for name, on := range cfg.Features {
		features[name] = on
	}
	panels := defaultPanels()
	for name, on := range cfg.Panels {
		if _, known := panels[name]; known {
			panels[name] = on
		}
	}

	s := &Store{
		sessionID: sessionID,
		cfg:       cfg,
		observer:  observability.NoOpObserver{},
		status:    StatusIdle,
		messages:  make(map[string]chat.Message),
		blocks:    make(map[string]chat.Block),
		active:    make(map[string]struct{}),
		params:    cfg.Params,
		features:  features,
		panels:    panels,
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier.
func (s *Store) ID() string {
	return s.sessionID
}

// Mode returns the session's interaction mode, or nil.
func (s *Store) Mode() mode.Mode {
	return s.mode
}

// CanSend reports the core send precondition: false while an assistant turn
// is streaming. Mode-level gating is a separate check; see Sendable.
func (s *Store) CanSend() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status != StatusStreaming
}

// Sendable combines the core precondition with the mode's derived send
// predicate, for direct UI binding.
func (s *Store) Sendable() bool {
	return mode.CanSend(s.mode, s) && s.CanSend()
}

// SendMessage submits user text. On success it appends a user message and a
// streaming assistant message (in that order), snapshots the current
// generation parameters into both, clears the pending input and attachments,
// and marks the session streaming. The assistant message id becomes the
// stream target: this is the single-flight guarantee, at most one assistant
// turn in flight per session.
//
// The mode's send guard runs before the store lock, then the streaming check;
// either rejection leaves the store untouched.
func (s *Store) SendMessage(ctx context.Context, text string) (string, string, error) {
	if s.mode != nil {
		if err := s.mode.OnSendMessage(s, text); err != nil {
			s.emit(ctx, EventSendRejected, observability.LevelWarning, map[string]any{
				"reason": err.Error(),
			})
			return "", "", fmt.Errorf("mode %s rejected send: %w", s.mode.Name(), err)
		}
	}

	s.mu.Lock()
	if s.status == StatusStreaming {
		s.mu.Unlock()
		s.emit(ctx, EventSendRejected, observability.LevelWarning, map[string]any{
			"reason": ErrStreaming.Error(),
		})
		return "", "", ErrStreaming
	}

	now := time.Now()
	meta := s.params

	user := chat.Message{
		ID:        chat.NewID(),
		Role:      chat.RoleUser,
		Meta:      meta,
		CreatedAt: now,
	}
	// User text is stored as an immediately-final content block so the
	// whole transcript reads uniformly as messages-of-blocks.
	userBlock := chat.Block{
		ID:        chat.NewID(),
		Type:      chat.BlockContent,
		MessageID: user.ID,
		Status:    chat.StatusSuccess,
		Content:   text,
		StartedAt: now,
		EndedAt:   now,
	}
	user.BlockIDs = append(user.BlockIDs, userBlock.ID)

	assistant := chat.Message{
		ID:        chat.NewID(),
		Role:      chat.RoleAssistant,
		Meta:      meta,
		CreatedAt: now,
	}

	s.blocks[userBlock.ID] = userBlock
	s.messages[user.ID] = user
	s.order = append(s.order, user.ID)
	s.messages[assistant.ID] = assistant
	s.order = append(s.order, assistant.ID)

	s.status = StatusStreaming
	s.currentStreamingID = assistant.ID
	s.input = ""
	s.attachments = nil
	s.mu.Unlock()

	s.emit(ctx, EventSend, observability.LevelInfo, map[string]any{
		"user_message_id":      user.ID,
		"assistant_message_id": assistant.ID,
		"model":                meta.EffectiveModel(),
	})
	return user.ID, assistant.ID, nil
}

// AbortStream cancels the in-flight assistant turn. Every still-active
// content block is finalized as success with its partial text preserved;
// every other active block is finalized as an error with reason "aborted".
// The session returns to idle. Aborting an idle session is a no-op.
// Backend-side request cancellation is the caller's responsibility.
func (s *Store) AbortStream() error {
	s.finishStream(EventAbort)
	return nil
}

// CompleteStream marks the in-flight assistant turn as finished normally and
// returns the session to idle. A well-behaved backend finalizes every block
// before the stream ends; any stragglers are finalized with the same rule as
// AbortStream so the store never ends a turn with dangling active blocks.
func (s *Store) CompleteStream() error {
	s.finishStream(EventStreamComplete)
	return nil
}

func (s *Store) finishStream(event observability.EventType) {
	s.mu.Lock()
	now := time.Now()
	finalized := make([]string, 0, len(s.active))
	for id := range s.active {
		finalized = append(finalized, id)
	}
	sort.Strings(finalized)

	for _, id := range finalized {
		b, ok := s.blocks[id]
		if !ok || b.Status.Terminal() {
			continue
		}
		if b.Type.KeepsPartial() {
			b.Status = chat.StatusSuccess
		} else {
			b.Status = chat.StatusError
			b.Error = "aborted"
		}
		b.EndedAt = now
		s.blocks[id] = b
	}

	wasStreaming := s.status == StatusStreaming
	s.status = StatusIdle
	s.currentStreamingID = ""
	s.active = make(map[string]struct{})
	s.mu.Unlock()

	if wasStreaming || len(finalized) > 0 {
		s.emit(context.Background(), event, observability.LevelInfo, map[string]any{
			"finalized_blocks": len(finalized),
		})
	}
}

// DeleteMessage removes a message and every block it owns. Deleting the
// current streaming target is refused; abort the stream first.
func (s *Store) DeleteMessage(messageID string) error {
	s.mu.Lock()
	msg, ok := s.messages[messageID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrMessageNotFound, messageID)
	}
	if messageID == s.currentStreamingID {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrMessageStreaming, messageID)
	}

	for _, blockID := range msg.BlockIDs {
		delete(s.blocks, blockID)
		delete(s.active, blockID)
	}
	delete(s.messages, messageID)
	for i, id := range s.order {
		if id == messageID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.emit(context.Background(), EventMessageDelete, observability.LevelInfo, map[string]any{
		"message_id": messageID,
		"blocks":     len(msg.BlockIDs),
	})
	return nil
}

// SystemPrompt builds the system prompt for the next assistant turn by
// consulting the session's mode. Returns "" without a mode.
func (s *Store) SystemPrompt() string {
	if s.mode == nil {
		return ""
	}
	return s.mode.BuildSystemPrompt(mode.PromptContext{
		SessionID: s.sessionID,
		ModeName:  s.mode.Name(),
		State:     s.ModeState(),
	})
}

// EnabledTools returns the tool identifiers the session's mode makes
// available, or nil when tools are disabled or no mode is attached.
func (s *Store) EnabledTools() []string {
	if s.mode == nil {
		return nil
	}
	if s.Params().ToolsDisabled {
		return nil
	}
	return s.mode.EnabledTools(s)
}

func (s *Store) emit(ctx context.Context, t observability.EventType, level observability.Level, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["session_id"] = s.sessionID
	s.observer.OnEvent(ctx, observability.Event{
		Type:      t,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "session.Store",
		Data:      data,
	})
}
