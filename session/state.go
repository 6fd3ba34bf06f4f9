package session

import (
	"fmt"
	"maps"
	"sort"

	"github.com/000haoji/deep-student-sub016/core/chat"
)

// Status returns the session streaming status.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// CurrentStreamingMessageID returns the assistant message currently
// receiving the stream, or "" when idle.
func (s *Store) CurrentStreamingMessageID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentStreamingID
}

// MessageOrder returns the message ids in insertion order.
func (s *Store) MessageOrder() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Messages returns defensive copies of all messages in insertion order.
func (s *Store) Messages() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]chat.Message, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.messages[id].Clone())
	}
	return out
}

// Message returns a copy of one message by id.
func (s *Store) Message(id string) (chat.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.messages[id]
	if !ok {
		return chat.Message{}, false
	}
	return msg.Clone(), true
}

// Block returns a copy of one block by id.
func (s *Store) Block(id string) (chat.Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blocks[id]
	if !ok {
		return chat.Block{}, false
	}
	return b.Clone(), true
}

// BlocksFor returns copies of a message's blocks in their append order.
func (s *Store) BlocksFor(messageID string) []chat.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.messages[messageID]
	if !ok {
		return nil
	}
	out := make([]chat.Block, 0, len(msg.BlockIDs))
	for _, id := range msg.BlockIDs {
		if b, exists := s.blocks[id]; exists {
			out = append(out, b.Clone())
		}
	}
	return out
}

// ActiveBlockIDs returns the ids of blocks still pending or running, sorted.
func (s *Store) ActiveBlockIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.active))
	for id := range s.active {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Params returns the current generation parameters.
func (s *Store) Params() chat.Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// SetChatParams merges a partial update into the current parameters and
// returns the result. Messages already created keep their Meta snapshots.
func (s *Store) SetChatParams(patch chat.ParamsPatch) chat.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = s.params.Apply(patch)
	return s.params
}

// ResetChatParams restores the parameter defaults the store was created
// with.
func (s *Store) ResetChatParams() chat.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = s.cfg.Params
	return s.params
}

// Feature reports a feature toggle; unknown names are false.
func (s *Store) Feature(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.features[name]
}

// SetFeature sets a feature toggle.
func (s *Store) SetFeature(name string, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.features[name] = on
}

// Features returns a copy of all explicitly-set feature toggles.
func (s *Store) Features() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.features)
}

// Panel reports a panel's visibility flag.
func (s *Store) Panel(name Panel) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.panels[name]
}

// SetPanel sets a panel's visibility flag. Names outside the fixed panel
// set are rejected.
func (s *Store) SetPanel(name Panel, visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, known := s.panels[name]; !known {
		return fmt.Errorf("%w: %s", ErrUnknownPanel, name)
	}
	s.panels[name] = visible
	return nil
}

// Panels returns a copy of all panel flags.
func (s *Store) Panels() map[Panel]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.panels)
}

// Input returns the pending input value.
func (s *Store) Input() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.input
}

// SetInput replaces the pending input value.
func (s *Store) SetInput(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = value
}

// Attachments returns copies of the pending attachments.
func (s *Store) Attachments() []chat.Attachment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]chat.Attachment, 0, len(s.attachments))
	for _, a := range s.attachments {
		out = append(out, a.Clone())
	}
	return out
}

// AddAttachment appends a pending attachment, assigning an id when the
// record carries none, and returns the id. Attachment content is opaque to
// the engine.
func (s *Store) AddAttachment(a chat.Attachment) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = chat.NewID()
	}
	s.attachments = append(s.attachments, a)
	return a.ID
}

// RemoveAttachment removes a pending attachment by id, reporting whether it
// was present.
func (s *Store) RemoveAttachment(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.attachments {
		if a.ID == id {
			s.attachments = append(s.attachments[:i], s.attachments[i+1:]...)
			return true
		}
	}
	return false
}

// ClearAttachments drops all pending attachments.
func (s *Store) ClearAttachments() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachments = nil
}

// ModeState returns the opaque mode-owned state.
func (s *Store) ModeState() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modeState
}

// SetModeState replaces the opaque mode-owned state. After initialization
// the state belongs exclusively to the active mode's hooks.
func (s *Store) SetModeState(state any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modeState = state
}
