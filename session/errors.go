package session

import "errors"

// Sentinel errors for store actions and the session manager. Guard
// violations are returned before any mutation takes place.
var (
	ErrStreaming         = errors.New("cannot send while streaming")
	ErrMessageNotFound   = errors.New("message not found")
	ErrBlockNotFound     = errors.New("block not found")
	ErrBlockFinalized    = errors.New("block already finalized")
	ErrInvalidTransition = errors.New("invalid block status transition")
	ErrMessageStreaming  = errors.New("message is the active streaming target")
	ErrUnknownPanel      = errors.New("unknown panel")
	ErrNoModeRegistry    = errors.New("no mode registry configured")
)
