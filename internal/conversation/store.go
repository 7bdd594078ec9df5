// ABOUTME: Conversation store owning the context-scoped message list
// ABOUTME: Context switching with stale-fetch discard and authoritative reloads

package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/2389/ava-client/internal/api"
	"github.com/2389/ava-client/internal/notice"
)

// defaultPageSize is the full-reload window.
const defaultPageSize = 100

// Store errors surfaced to callers alongside the user-visible notice.
var (
	ErrNotEditable = errors.New("message is not eligible for editing")
	ErrNotEditing  = errors.New("message is not in edit mode")
)

// Gateway defines what the store needs from the gateway client.
type Gateway interface {
	GetMessages(ctx context.Context, skip, limit int, conversationContext string) ([]api.Message, error)
	SendMessage(ctx context.Context, content, role, conversationContext string) (*api.Message, error)
	UpdateMessage(ctx context.Context, id int64, content string) (*api.Message, error)
	DeleteMessage(ctx context.Context, id int64) (*api.Message, error)
	ClickAction(ctx context.Context, actionType, conversationContext string) (*api.Message, error)
}

// HistoryCache defines optional local persistence of fetched snapshots.
type HistoryCache interface {
	ReplaceContext(ctx context.Context, conversationContext string, messages []api.Message) error
	ListByContext(ctx context.Context, conversationContext string) ([]api.Message, error)
}

// Store maintains a consistent, context-scoped message list under
// concurrent user-initiated mutations with asynchronous gateway round trips.
type Store struct {
	gateway Gateway
	logger  *slog.Logger

	mu             sync.Mutex
	cache          HistoryCache
	pageSize       int
	lastErr        *notice.Notice
	messages       []Message
	currentContext string
	editingID      int64 // 0 when no message is in edit mode
	sending        bool
	saving         bool
	fetchSeq       uint64 // bumped on context switch to invalidate in-flight fetches
	nextTempID     int64  // counts down; optimistic IDs are disjoint from server IDs
}

// New creates a store starting in the Onboarding context. A nil logger
// falls back to slog.Default.
func New(gateway Gateway, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		gateway:        gateway,
		logger:         logger.With("component", "conversation"),
		pageSize:       defaultPageSize,
		lastErr:        notice.New(notice.DefaultTTL),
		currentContext: api.ContextOnboarding,
	}
}

// SetCache attaches a local history cache. Fetched snapshots are written
// through to it and SeedFromCache can pre-populate the list at startup.
func (s *Store) SetCache(cache HistoryCache) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = cache
}

// SetErrorTTL adjusts how long a user-facing failure notice stays visible.
func (s *Store) SetErrorTTL(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = notice.New(ttl)
}

// SetPageSize adjusts the full-reload window. Non-positive values keep
// the default.
func (s *Store) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > 0 {
		s.pageSize = n
	}
}

// Context returns the active conversation context.
func (s *Store) Context() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentContext
}

// Messages returns a snapshot of the displayed message list.
func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// EditingID returns the ID of the message in edit mode, or 0.
func (s *Store) EditingID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editingID
}

// Sending reports whether a send sequence is in flight.
func (s *Store) Sending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sending
}

// Saving reports whether an edit save is in flight.
func (s *Store) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

// LastError returns the most recent user-facing failure, or "" once it
// has auto-expired or been dismissed.
func (s *Store) LastError() string {
	return s.errNotice().Current()
}

// DismissError clears the user-facing failure immediately.
func (s *Store) DismissError() {
	s.errNotice().Clear()
}

func (s *Store) errNotice() *notice.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// SetContext switches the active conversation context and reloads the list
// wholesale. On failure the previous list stays (stale) and the error is
// recorded; an in-flight fetch for the prior context can no longer apply.
func (s *Store) SetContext(ctx context.Context, newContext string) error {
	s.mu.Lock()
	s.currentContext = newContext
	s.fetchSeq++
	s.mu.Unlock()

	s.logger.Debug("context switched", "context", newContext)
	return s.reload(ctx)
}

// Refresh re-fetches the current context's list from the gateway.
func (s *Store) Refresh(ctx context.Context) error {
	return s.reload(ctx)
}

// SeedFromCache pre-populates the list for the current context from the
// local history cache, for display before the first gateway fetch lands.
// Does nothing without a cache or when a fetch has already applied.
func (s *Store) SeedFromCache(ctx context.Context) error {
	s.mu.Lock()
	cache := s.cache
	seq := s.fetchSeq
	current := s.currentContext
	empty := len(s.messages) == 0
	s.mu.Unlock()
	if cache == nil || !empty {
		return nil
	}

	cached, err := cache.ListByContext(ctx, current)
	if err != nil {
		return fmt.Errorf("reading cached history: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchSeq != seq || len(s.messages) > 0 {
		return nil // a real fetch got there first
	}
	s.messages = wrapMessages(cached)
	s.logger.Debug("seeded from cache", "context", current, "messages", len(cached))
	return nil
}

// reload fetches the full list for the current context and applies it only
// if the context is still current when the response resolves.
func (s *Store) reload(ctx context.Context) error {
	s.mu.Lock()
	seq := s.fetchSeq
	current := s.currentContext
	limit := s.pageSize
	s.mu.Unlock()

	messages, err := s.gateway.GetMessages(ctx, 0, limit, current)
	if err != nil {
		s.fail("failed to load messages", err)
		// With nothing on screen, stale cached history beats a blank list
		if seedErr := s.SeedFromCache(ctx); seedErr != nil {
			s.logger.Debug("offline cache fallback unavailable", "error", seedErr)
		}
		return fmt.Errorf("fetching messages for %s: %w", current, err)
	}

	s.mu.Lock()
	if s.fetchSeq != seq {
		s.mu.Unlock()
		s.logger.Debug("discarding stale fetch", "context", current)
		return nil
	}
	s.applyLocked(messages)
	s.mu.Unlock()

	s.writeCache(ctx, current, messages)
	return nil
}

// applyLocked wholesale-replaces the displayed list with a fresh server
// snapshot. Any transient edit state belongs to the old list and is
// dropped with it. Must be called with the store mutex held.
func (s *Store) applyLocked(messages []api.Message) {
	s.messages = wrapMessages(messages)
	s.editingID = 0
}

// writeCache persists a fetched snapshot, best effort.
func (s *Store) writeCache(ctx context.Context, conversationContext string, messages []api.Message) {
	s.mu.Lock()
	cache := s.cache
	s.mu.Unlock()
	if cache == nil {
		return
	}
	if err := cache.ReplaceContext(ctx, conversationContext, messages); err != nil {
		s.logger.Warn("caching history snapshot",
			"context", conversationContext,
			"error", err)
	}
}

// fail records a user-facing failure notice and logs the underlying error.
func (s *Store) fail(summary string, err error) {
	s.logger.Warn(summary, "error", err)
	s.errNotice().Set(fmt.Sprintf("%s: %v", summary, err))
}
