package session

import (
	"context"
	"fmt"
	"time"

	"github.com/000haoji/deep-student-sub016/core/chat"
	"github.com/000haoji/deep-student-sub016/observability"
)

// CreateBlock allocates a pending block owned by the given message, appends
// its id to the message's block sequence, and marks it active. Blocks are
// appended strictly in call order; the store never reorders them.
func (s *Store) CreateBlock(messageID string, blockType chat.BlockType) (string, error) {
	s.mu.Lock()
	msg, ok := s.messages[messageID]
	if !ok {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrMessageNotFound, messageID)
	}

	block := chat.Block{
		ID:        chat.NewID(),
		Type:      blockType,
		MessageID: messageID,
		Status:    chat.StatusPending,
		StartedAt: time.Now(),
	}
	msg.BlockIDs = append(msg.BlockIDs, block.ID)
	s.messages[messageID] = msg
	s.blocks[block.ID] = block
	s.active[block.ID] = struct{}{}
	s.mu.Unlock()

	s.emit(context.Background(), EventBlockCreate, observability.LevelVerbose, map[string]any{
		"block_id":   block.ID,
		"block_type": string(blockType),
		"message_id": messageID,
	})
	return block.ID, nil
}

// UpdateBlockContent appends a chunk to the block's content accumulator. The
// first chunk moves the block from pending to running. Finalized blocks
// reject further content so late chunks cannot corrupt preserved output.
func (s *Store) UpdateBlockContent(blockID, chunk string) error {
	s.mu.Lock()
	b, ok := s.blocks[blockID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBlockNotFound, blockID)
	}
	if b.Status.Terminal() {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBlockFinalized, blockID)
	}

	if b.Status == chat.StatusPending {
		b.Status = chat.StatusRunning
	}
	b.Content += chunk
	s.blocks[blockID] = b
	s.mu.Unlock()

	s.emit(context.Background(), EventBlockContent, observability.LevelVerbose, map[string]any{
		"block_id": blockID,
		"chunk":    len(chunk),
	})
	return nil
}

// UpdateBlockStatus moves a block through its lifecycle
// (pending -> running -> success|error). Terminal statuses stamp EndedAt and
// retire the block from the active set; terminal states are final.
func (s *Store) UpdateBlockStatus(blockID string, status chat.BlockStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}

	s.mu.Lock()
	b, ok := s.blocks[blockID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBlockNotFound, blockID)
	}
	if b.Status == status {
		s.mu.Unlock()
		return nil
	}
	if b.Status.Terminal() {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBlockFinalized, blockID)
	}
	if status == chat.StatusPending {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, status)
	}

	b.Status = status
	if status.Terminal() {
		b.EndedAt = time.Now()
		delete(s.active, blockID)
	}
	s.blocks[blockID] = b
	s.mu.Unlock()

	if status.Terminal() {
		s.emit(context.Background(), EventBlockComplete, observability.LevelVerbose, map[string]any{
			"block_id": blockID,
			"status":   string(status),
		})
	}
	return nil
}

// SetBlockResult finalizes a block as success with an opaque result payload.
// Intended for non-content block types (tool calls, searches, memory
// lookups).
func (s *Store) SetBlockResult(blockID string, result any) error {
	s.mu.Lock()
	b, ok := s.blocks[blockID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBlockNotFound, blockID)
	}
	if b.Status.Terminal() {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBlockFinalized, blockID)
	}

	b.ToolOutput = result
	b.Status = chat.StatusSuccess
	b.EndedAt = time.Now()
	delete(s.active, blockID)
	s.blocks[blockID] = b
	s.mu.Unlock()

	s.emit(context.Background(), EventBlockComplete, observability.LevelVerbose, map[string]any{
		"block_id": blockID,
		"status":   string(chat.StatusSuccess),
	})
	return nil
}

// SetBlockError finalizes a block as failed. The failure stays confined to
// this block; the session keeps streaming.
func (s *Store) SetBlockError(blockID, message string) error {
	s.mu.Lock()
	b, ok := s.blocks[blockID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBlockNotFound, blockID)
	}
	if b.Status.Terminal() {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBlockFinalized, blockID)
	}

	b.Error = message
	b.Status = chat.StatusError
	b.EndedAt = time.Now()
	delete(s.active, blockID)
	s.blocks[blockID] = b
	s.mu.Unlock()

	s.emit(context.Background(), EventBlockComplete, observability.LevelVerbose, map[string]any{
		"block_id": blockID,
		"status":   string(chat.StatusError),
		"error":    message,
	})
	return nil
}
