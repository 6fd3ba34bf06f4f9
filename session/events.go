package session

import "github.com/000haoji/deep-student-sub016/observability"

// Event types emitted by the store and the manager.
const (
	EventSessionCreate  observability.EventType = "session.create"
	EventSend           observability.EventType = "session.send"
	EventSendRejected   observability.EventType = "session.send.rejected"
	EventBlockCreate    observability.EventType = "session.block.create"
	EventBlockContent   observability.EventType = "session.block.content"
	EventBlockComplete  observability.EventType = "session.block.complete"
	EventAbort          observability.EventType = "session.abort"
	EventStreamComplete observability.EventType = "session.stream.complete"
	EventMessageDelete  observability.EventType = "session.message.delete"
	EventModeInitError  observability.EventType = "session.mode.init.error"
)
