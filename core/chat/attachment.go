package chat

import "slices"

// Attachment is an opaque pending upload attached to the session's input
// area. The engine never inspects Data; storage and upload belong to the
// attachment layer outside this module.
type Attachment struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Data      []byte `json:"data,omitempty"`
}

// Clone returns a copy with independent Data bytes.
func (a Attachment) Clone() Attachment {
	a.Data = slices.Clone(a.Data)
	return a
}
