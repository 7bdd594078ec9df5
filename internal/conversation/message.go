// ABOUTME: The store's view of a message with transient local state
// ABOUTME: Optimistic entries carry a negative ID and a uuid reconciliation tag

package conversation

import (
	"github.com/google/uuid"

	"github.com/2389/ava-client/internal/api"
)

// Message is a gateway message plus local-only display state. The embedded
// wire fields are server-authoritative once Pending is false.
type Message struct {
	api.Message

	// LocalID tags an optimistic entry for reconciliation with its
	// server-confirmed counterpart. Zero for confirmed messages.
	LocalID uuid.UUID

	// Pending marks an optimistic entry awaiting gateway confirmation.
	Pending bool

	// IsEditing marks the message currently in edit mode. Never persisted.
	IsEditing bool
}

// wrapMessages converts a server-ordered wire list into display messages.
func wrapMessages(messages []api.Message) []Message {
	wrapped := make([]Message, len(messages))
	for i, msg := range messages {
		wrapped[i] = Message{Message: msg}
	}
	return wrapped
}

// editFrontierLocked returns the ID of the single message currently
// eligible for editing: the most recent user-authored, non-deleted,
// not-yet-edited confirmed message. Returns 0 when nothing is eligible.
// Must be called with the store mutex held.
func (s *Store) editFrontierLocked() int64 {
	for i := len(s.messages) - 1; i >= 0; i-- {
		msg := &s.messages[i]
		if msg.Pending {
			continue // not server-confirmed, nothing to edit yet
		}
		if msg.Role == api.RoleUser && !msg.IsDeleted && !msg.IsEdited {
			return msg.ID
		}
	}
	return 0
}
