// Package chat defines the data model shared across the session engine:
// blocks, messages, generation parameters, and attachments. Types here are
// pure data; all mutation happens through session.Store actions.
package chat

import (
	"time"

	"github.com/google/uuid"
)

// BlockType identifies the kind of content a block carries.
type BlockType string

const (
	BlockContent   BlockType = "content"
	BlockThinking  BlockType = "thinking"
	BlockWebSearch BlockType = "web_search"
	BlockMCPTool   BlockType = "mcp_tool"
	BlockMemory    BlockType = "memory"
)

// KeepsPartial reports whether a block of this type is still usable when a
// stream is aborted mid-flight. Plain text reads fine half-finished; a
// half-finished tool call, search, or thinking trace has no meaningful
// partial result and is finalized as an error instead.
func (t BlockType) KeepsPartial() bool {
	return t == BlockContent
}

// BlockStatus tracks a block through its lifecycle:
// pending -> running -> {success | error}.
type BlockStatus string

const (
	StatusPending BlockStatus = "pending"
	StatusRunning BlockStatus = "running"
	StatusSuccess BlockStatus = "success"
	StatusError   BlockStatus = "error"
)

// Terminal reports whether the status is final. Terminal blocks accept no
// further content or status changes.
func (s BlockStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusError
}

// Valid reports whether s is one of the defined lifecycle statuses.
func (s BlockStatus) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusSuccess, StatusError:
		return true
	}
	return false
}

// Block is one content-bearing unit of a conversational turn. Content is an
// append-only text accumulator; ToolOutput holds the opaque result payload
// for non-content block types. EndedAt is set exactly when the status
// becomes terminal.
type Block struct {
	ID         string      `json:"id"`
	Type       BlockType   `json:"type"`
	MessageID  string      `json:"message_id"`
	Status     BlockStatus `json:"status"`
	Content    string      `json:"content,omitempty"`
	ToolOutput any         `json:"tool_output,omitempty"`
	Error      string      `json:"error,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
	EndedAt    time.Time   `json:"ended_at,omitzero"`
}

// Clone returns a value copy of the block.
func (b Block) Clone() Block {
	return b
}

// NewID returns a fresh UUIDv7 identifier, used for sessions, messages, and
// blocks alike. V7 ids sort by creation time, which keeps debugging output
// readable.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
