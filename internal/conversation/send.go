// ABOUTME: Optimistic send with rollback and post-send resynchronization
// ABOUTME: Temporary entries use negative IDs tagged with a uuid

package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2389/ava-client/internal/api"
)

// Send appends the text optimistically, persists it through the gateway,
// reconciles the optimistic entry with the stored record, then re-fetches
// the context to pick up any assistant reply the gateway appended.
//
// Empty (after trimming) text and a send already in flight are both
// silent no-ops. The send guard is held for the whole optimistic-send-
// then-refetch sequence.
func (s *Store) Send(ctx context.Context, text string) error {
	content := strings.TrimSpace(text)
	if content == "" {
		return nil
	}

	s.mu.Lock()
	if s.sending {
		s.mu.Unlock()
		return nil
	}
	s.sending = true
	s.nextTempID--
	temp := Message{
		Message: api.Message{
			ID:        s.nextTempID,
			Role:      api.RoleUser,
			Content:   content,
			Timestamp: time.Now(),
			Context:   s.currentContext,
		},
		LocalID: uuid.New(),
		Pending: true,
	}
	s.messages = append(s.messages, temp)
	current := s.currentContext
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.sending = false
		s.mu.Unlock()
	}()

	stored, err := s.gateway.SendMessage(ctx, content, api.RoleUser, current)
	if err != nil {
		s.rollback(temp.LocalID)
		s.fail("failed to send message", err)
		return fmt.Errorf("sending message: %w", err)
	}

	s.reconcile(temp.LocalID, stored)
	s.logger.Debug("message sent",
		"message_id", stored.ID,
		"context", current)

	// The gateway appends the assistant reply as a side effect of the
	// send; only a re-fetch makes it visible.
	return s.reload(ctx)
}

// rollback removes an optimistic entry after a failed send.
func (s *Store) rollback(localID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].LocalID == localID {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return
		}
	}
}

// reconcile replaces an optimistic entry with its server-confirmed
// counterpart, matched by local tag. The entry may already be gone if the
// context switched mid-flight; the confirmed record then simply arrives
// with the next fetch of its own context.
func (s *Store) reconcile(localID uuid.UUID, stored *api.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].LocalID == localID {
			s.messages[i] = Message{Message: *stored}
			return
		}
	}
}
