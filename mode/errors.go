package mode

import "errors"

// Sentinel errors for the mode registry and the reference modes.
var (
	ErrNotFound      = errors.New("mode not found")
	ErrAlreadyExists = errors.New("mode already registered")
	ErrEmptyName     = errors.New("mode name is empty")
	ErrPreprocessing = errors.New("preprocessing in progress")
)
