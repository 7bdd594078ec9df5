// ABOUTME: Structured click actions scoped to the current context
// ABOUTME: The gateway's synthesized assistant message is appended to the list

package conversation

import (
	"context"
	"fmt"
)

// InvokeAction sends a structured action request for the current context
// and appends the assistant message the gateway synthesizes for it. The
// result is discarded if the context switched while the call was in flight.
func (s *Store) InvokeAction(ctx context.Context, actionType string) error {
	s.mu.Lock()
	current := s.currentContext
	s.mu.Unlock()

	stored, err := s.gateway.ClickAction(ctx, actionType, current)
	if err != nil {
		s.fail("action failed", err)
		return fmt.Errorf("invoking action %q: %w", actionType, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentContext != current {
		s.logger.Debug("discarding action result after context switch",
			"action", actionType,
			"context", current)
		return nil
	}
	s.messages = append(s.messages, Message{Message: *stored})
	return nil
}
