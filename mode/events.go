package mode

import "github.com/000haoji/deep-student-sub016/observability"

// Recognition mode event types.
const (
	EventRecognitionStart    observability.EventType = "recognition.start"
	EventRecognitionProgress observability.EventType = "recognition.progress"
	EventRecognitionComplete observability.EventType = "recognition.complete"
	EventRecognitionError    observability.EventType = "recognition.error"
	EventRecognitionAutoSend observability.EventType = "recognition.autosend"
)
