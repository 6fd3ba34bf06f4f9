package chat

import (
	"slices"
	"time"
)

// Role identifies the author of a conversational turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is an ordered group of blocks with a role. BlockIDs grows by
// appending only and is never re-sorted by the engine; any display-time
// reordering is a presentation concern. Meta is a snapshot of the generation
// parameters in effect when the message was created and is immutable after
// that.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	BlockIDs  []string  `json:"block_ids"`
	Meta      Params    `json:"meta"`
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a copy with an independent BlockIDs slice.
func (m Message) Clone() Message {
	m.BlockIDs = slices.Clone(m.BlockIDs)
	return m
}
