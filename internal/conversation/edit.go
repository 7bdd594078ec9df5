// ABOUTME: Edit mode lifecycle - frontier check, draft changes, save and delete
// ABOUTME: An empty saved draft falls through to deletion

package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/2389/ava-client/internal/api"
)

// BeginEdit puts the message into edit mode. Only the edit frontier - the
// most recent user message that is neither deleted nor already edited -
// is eligible; any other id is rejected with a user-visible error and no
// state change.
func (s *Store) BeginEdit(id int64) error {
	s.mu.Lock()
	frontier := s.editFrontierLocked()
	if id != frontier || frontier == 0 {
		s.mu.Unlock()
		s.fail("cannot edit this message", ErrNotEditable)
		return fmt.Errorf("begin edit %d: %w", id, ErrNotEditable)
	}

	for i := range s.messages {
		s.messages[i].IsEditing = s.messages[i].ID == id
	}
	s.editingID = id
	s.mu.Unlock()

	s.logger.Debug("edit started", "message_id", id)
	return nil
}

// ChangeDraft updates the in-memory content of the message in edit mode.
// No network effect.
func (s *Store) ChangeDraft(id int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.editingID || s.editingID == 0 {
		return fmt.Errorf("change draft %d: %w", id, ErrNotEditing)
	}
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].Content = text
			return nil
		}
	}
	return fmt.Errorf("change draft %d: %w", id, ErrNotEditing)
}

// SaveEdit persists the draft of the message in edit mode and resyncs the
// context. A draft that trims to empty is treated as a delete request.
// Guarded so concurrent saves cannot overlap.
func (s *Store) SaveEdit(ctx context.Context, id int64) error {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return nil
	}
	if id != s.editingID || s.editingID == 0 {
		s.mu.Unlock()
		return fmt.Errorf("save edit %d: %w", id, ErrNotEditing)
	}

	var draft string
	found := false
	for i := range s.messages {
		if s.messages[i].ID == id {
			draft = s.messages[i].Content
			found = true
			break
		}
	}
	if !found {
		s.editingID = 0
		s.mu.Unlock()
		return fmt.Errorf("save edit %d: %w", id, ErrNotEditing)
	}

	if strings.TrimSpace(draft) == "" {
		s.mu.Unlock()
		// An emptied message is a deletion
		return s.Delete(ctx, id)
	}

	s.saving = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.saving = false
		s.mu.Unlock()
	}()

	stored, err := s.gateway.UpdateMessage(ctx, id, draft)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			// The message vanished server-side; resync and drop edit state
			s.clearEditing(id)
			s.fail("message no longer exists", err)
			if reloadErr := s.reload(ctx); reloadErr != nil {
				return reloadErr
			}
			return fmt.Errorf("saving edit %d: %w", id, err)
		}
		// Leave the draft and edit mode intact so the user can retry
		s.fail("failed to save edit", err)
		return fmt.Errorf("saving edit %d: %w", id, err)
	}

	s.mu.Lock()
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i] = Message{Message: *stored}
			break
		}
	}
	s.editingID = 0
	s.mu.Unlock()

	s.logger.Debug("edit saved", "message_id", id)

	// Edits can make the gateway regenerate a downstream assistant turn
	return s.reload(ctx)
}

// Delete removes the message through the gateway and resyncs the context so
// cascading server-side deletions (such as an associated assistant reply)
// are reflected. Clears edit mode if it referenced the deleted id.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if _, err := s.gateway.DeleteMessage(ctx, id); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			// Already gone server-side; converge on the authoritative list
			s.clearEditing(id)
			s.fail("message no longer exists", err)
			if reloadErr := s.reload(ctx); reloadErr != nil {
				return reloadErr
			}
			return fmt.Errorf("deleting message %d: %w", id, err)
		}
		s.fail("failed to delete message", err)
		return fmt.Errorf("deleting message %d: %w", id, err)
	}

	s.mu.Lock()
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			break
		}
	}
	if s.editingID == id {
		s.editingID = 0
	}
	s.mu.Unlock()

	s.logger.Debug("message deleted", "message_id", id)
	return s.reload(ctx)
}

// clearEditing drops edit mode if it references the given id.
func (s *Store) clearEditing(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editingID == id {
		s.editingID = 0
	}
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].IsEditing = false
		}
	}
}
