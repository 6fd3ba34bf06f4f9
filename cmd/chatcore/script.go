package main

import (
	"context"

	"github.com/000haoji/deep-student-sub016/core/chat"
	"github.com/000haoji/deep-student-sub016/mode"
	"github.com/000haoji/deep-student-sub016/session"
)

// replayScript stands in for a streaming backend: it plays a fixed sequence
// of block-lifecycle events into the assistant message, the same calls a
// real transport adapter would make in arrival order.
func replayScript(store *session.Store, assistantID string) error {
	thinking, err := store.CreateBlock(assistantID, chat.BlockThinking)
	if err != nil {
		return err
	}
	for _, chunk := range []string{"The user wants an overview. ", "Keep it short."} {
		if err := store.UpdateBlockContent(thinking, chunk); err != nil {
			return err
		}
	}
	if err := store.UpdateBlockStatus(thinking, chat.StatusSuccess); err != nil {
		return err
	}

	search, err := store.CreateBlock(assistantID, chat.BlockWebSearch)
	if err != nil {
		return err
	}
	if err := store.SetBlockResult(search, map[string]any{
		"query": "golang overview",
		"hits":  3,
	}); err != nil {
		return err
	}

	content, err := store.CreateBlock(assistantID, chat.BlockContent)
	if err != nil {
		return err
	}
	for _, chunk := range []string{
		"Go is a statically typed, compiled language ",
		"designed for building simple, reliable, ",
		"and efficient software.",
	} {
		if err := store.UpdateBlockContent(content, chunk); err != nil {
			return err
		}
	}
	if err := store.UpdateBlockStatus(content, chat.StatusSuccess); err != nil {
		return err
	}

	return store.CompleteStream()
}

// cannedRecognizer is a stand-in recognition backend for the demo: it
// reports progress in three steps and returns a fixed summary.
type cannedRecognizer struct{}

func (cannedRecognizer) Recognize(ctx context.Context, images []chat.Attachment, progress func(int)) (*mode.RecognitionResult, error) {
	for _, p := range []int{25, 60, 95} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		progress(p)
	}
	return &mode.RecognitionResult{
		Summary: "scanned document text",
		Fields:  map[string]string{"pages": "1"},
	}, nil
}
