package mode

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/000haoji/deep-student-sub016/core/chat"
	"github.com/000haoji/deep-student-sub016/observability"
)

// RecognitionName is the registry name of the recognition-gated mode.
const RecognitionName = "recognition"

const recognitionBasePrompt = "You are an analysis assistant. The user's documents were converted to text " +
	"by a recognition step before this conversation; ground your answers in that recognized content."

const recognitionAutoMessage = "Please analyze the recognized content."

// RecognitionStatus tracks the preprocessing step of the recognition mode.
type RecognitionStatus string

const (
	RecognitionIdle    RecognitionStatus = "idle"
	RecognitionPending RecognitionStatus = "pending"
	RecognitionRunning RecognitionStatus = "running"
	RecognitionSuccess RecognitionStatus = "success"
	RecognitionError   RecognitionStatus = "error"
)

// RecognitionResult is the structured output of the recognition backend.
type RecognitionResult struct {
	Summary string            `json:"summary"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// RecognitionState is the mode-owned session state for the recognition mode.
// OnInit mutates it from the manager's init goroutine while the send guard
// and UI polls read it, so all access goes through its mutex: hooks write via
// the locked setters, readers take a Snapshot.
type RecognitionState struct {
	mu              sync.RWMutex
	status          RecognitionStatus
	progress        int // 0-100
	meta            *RecognitionResult
	err             string
	images          []chat.Attachment
	autoMessageSent bool
}

// NewRecognitionState seeds recognition state with the session's input
// images. Attach it to the store (WithModeState or Manager GetOptions) before
// OnInit runs.
func NewRecognitionState(images []chat.Attachment) *RecognitionState {
	return &RecognitionState{
		status: RecognitionIdle,
		images: slices.Clone(images),
	}
}

// RecognitionSnapshot is a point-in-time copy of the recognition state.
type RecognitionSnapshot struct {
	Status          RecognitionStatus
	Progress        int // 0-100
	Meta            *RecognitionResult
	Err             string
	AutoMessageSent bool
}

// Snapshot returns a consistent copy of the state for reading.
func (st *RecognitionState) Snapshot() RecognitionSnapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return RecognitionSnapshot{
		Status:          st.status,
		Progress:        st.progress,
		Meta:            st.meta,
		Err:             st.err,
		AutoMessageSent: st.autoMessageSent,
	}
}

func (st *RecognitionState) inputImages() []chat.Attachment {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return slices.Clone(st.images)
}

func (st *RecognitionState) setIdle() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.status = RecognitionIdle
}

func (st *RecognitionState) setPending() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.status = RecognitionPending
	st.progress = 0
}

func (st *RecognitionState) setRunning(percent int) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.status = RecognitionRunning
	st.progress = percent
	return st.progress
}

func (st *RecognitionState) setSuccess(meta *RecognitionResult) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.status = RecognitionSuccess
	st.progress = 100
	st.meta = meta
}

func (st *RecognitionState) setFailure(reason string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.status = RecognitionError
	st.err = reason
}

// markAutoMessageSent flips the auto-send latch, reporting whether this call
// won it.
func (st *RecognitionState) markAutoMessageSent() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.autoMessageSent {
		return false
	}
	st.autoMessageSent = true
	return true
}

// Recognizer is the narrow contract with the recognition backend. Progress
// is reported through the callback as a 0-100 percentage; the final result
// or failure comes from the return values. Implementations live outside this
// module.
type Recognizer interface {
	Recognize(ctx context.Context, images []chat.Attachment, progress func(percent int)) (*RecognitionResult, error)
}

// RecognitionMode gates sending on an asynchronous recognition step. When a
// session starts with input images, OnInit drives the recognition backend
// and, on success, auto-sends the first message exactly once. Sends are
// blocked while recognition is pending or running.
type RecognitionMode struct {
	recognizer Recognizer
	observer   observability.Observer
}

// RecognitionOption configures a RecognitionMode.
type RecognitionOption func(*RecognitionMode)

// WithRecognitionObserver overrides the default NoOpObserver.
func WithRecognitionObserver(o observability.Observer) RecognitionOption {
	return func(m *RecognitionMode) { m.observer = o }
}

// NewRecognitionMode creates the recognition-gated mode backed by rec.
func NewRecognitionMode(rec Recognizer, opts ...RecognitionOption) *RecognitionMode {
	m := &RecognitionMode{
		recognizer: rec,
		observer:   observability.NoOpObserver{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// StateOf returns the session's RecognitionState, or nil when the session
// carries no recognition state.
func StateOf(sess Session) *RecognitionState {
	st, _ := sess.ModeState().(*RecognitionState)
	return st
}

func (*RecognitionMode) Name() string { return RecognitionName }

func (*RecognitionMode) ModeConfig() Config {
	return Config{
		RequiresPreprocessing: true,
		AutoSendFirstMessage:  true,
		DefaultTools:          []string{"web_search", "memory"},
	}
}

// OnInit runs the recognition step. With no input images the mode stays
// idle. Otherwise the state moves pending -> running (first progress
// callback) -> success or error. On success the first message is auto-sent,
// guarded by the auto-send latch so restarts never double-send.
func (m *RecognitionMode) OnInit(ctx context.Context, sess Session) error {
	st := StateOf(sess)
	if st == nil {
		st = NewRecognitionState(nil)
		sess.SetModeState(st)
	}

	images := st.inputImages()
	if len(images) == 0 {
		st.setIdle()
		return nil
	}

	st.setPending()
	m.emit(ctx, EventRecognitionStart, observability.LevelInfo, map[string]any{
		"session_id": sess.ID(),
		"images":     len(images),
	})

	result, err := m.recognizer.Recognize(ctx, images, func(percent int) {
		p := st.setRunning(clampPercent(percent))
		m.emit(ctx, EventRecognitionProgress, observability.LevelVerbose, map[string]any{
			"session_id": sess.ID(),
			"progress":   p,
		})
	})
	if err != nil {
		st.setFailure(err.Error())
		m.emit(ctx, EventRecognitionError, observability.LevelError, map[string]any{
			"session_id": sess.ID(),
			"error":      err.Error(),
		})
		return fmt.Errorf("recognition failed: %w", err)
	}

	st.setSuccess(result)
	m.emit(ctx, EventRecognitionComplete, observability.LevelInfo, map[string]any{
		"session_id": sess.ID(),
	})

	if !st.markAutoMessageSent() {
		return nil
	}
	if _, _, err := sess.SendMessage(ctx, recognitionAutoMessage); err != nil {
		return fmt.Errorf("auto-send after recognition: %w", err)
	}
	m.emit(ctx, EventRecognitionAutoSend, observability.LevelInfo, map[string]any{
		"session_id": sess.ID(),
	})
	return nil
}

// OnSendMessage blocks sends while recognition is still in flight.
func (*RecognitionMode) OnSendMessage(sess Session, text string) error {
	st := StateOf(sess)
	if st == nil {
		return nil
	}
	snap := st.Snapshot()
	if snap.Status == RecognitionPending || snap.Status == RecognitionRunning {
		return fmt.Errorf("%w: recognition at %d%%", ErrPreprocessing, snap.Progress)
	}
	return nil
}

// CanSend mirrors the OnSendMessage guard for UI use: true whenever the
// session has no recognition state or recognition is not in flight,
// including after an error.
func (*RecognitionMode) CanSend(sess Session) bool {
	st := StateOf(sess)
	if st == nil {
		return true
	}
	status := st.Snapshot().Status
	return status != RecognitionPending && status != RecognitionRunning
}

func (*RecognitionMode) BuildSystemPrompt(pc PromptContext) string {
	prompt := recognitionBasePrompt
	if st, ok := pc.State.(*RecognitionState); ok && st != nil {
		if snap := st.Snapshot(); snap.Meta != nil && snap.Meta.Summary != "" {
			prompt += "\n\nRecognized content:\n" + snap.Meta.Summary
		}
	}
	return prompt
}

func (m *RecognitionMode) EnabledTools(sess Session) []string {
	return slices.Clone(m.ModeConfig().DefaultTools)
}

func (m *RecognitionMode) emit(ctx context.Context, t observability.EventType, level observability.Level, data map[string]any) {
	m.observer.OnEvent(ctx, observability.Event{
		Type:      t,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "mode.recognition",
		Data:      data,
	})
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
