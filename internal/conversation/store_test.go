// ABOUTME: Tests for context switching, stale-fetch discard and cache seeding
// ABOUTME: fakeGateway simulates the backend including assistant auto-replies

package conversation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/ava-client/internal/api"
)

// fakeGateway is an in-memory stand-in for the Ava gateway. It stores
// messages like the backend does (deleted ones retained but hidden), can
// append an assistant auto-reply on send, and supports error injection and
// per-context blocking gates for race tests.
type fakeGateway struct {
	mu        sync.Mutex
	nextID    int64
	messages  []api.Message
	autoReply string

	getErr    error
	sendErr   error
	updateErr error
	deleteErr error
	actionErr error

	blockGet map[string]chan struct{}
	onSend   func()
	onUpdate func()
	onAction func()

	getCalls    int
	updateCalls int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{nextID: 100, blockGet: map[string]chan struct{}{}}
}

func (f *fakeGateway) seed(role, content, conversationContext string) api.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.appendLocked(role, content, conversationContext)
}

func (f *fakeGateway) appendLocked(role, content, conversationContext string) api.Message {
	f.nextID++
	msg := api.Message{
		ID:        f.nextID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Context:   conversationContext,
	}
	if role == api.RoleUser {
		msg.UserID = 7
	}
	f.messages = append(f.messages, msg)
	return msg
}

func (f *fakeGateway) GetMessages(ctx context.Context, skip, limit int, conversationContext string) ([]api.Message, error) {
	f.mu.Lock()
	gate := f.blockGet[conversationContext]
	f.getCalls++
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	var out []api.Message
	for _, msg := range f.messages {
		if msg.Context == conversationContext && !msg.IsDeleted {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (f *fakeGateway) SendMessage(ctx context.Context, content, role, conversationContext string) (*api.Message, error) {
	if f.onSend != nil {
		f.onSend()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	msg := f.appendLocked(role, content, conversationContext)
	if f.autoReply != "" {
		f.appendLocked(api.RoleAssistant, f.autoReply, conversationContext)
	}
	return &msg, nil
}

func (f *fakeGateway) UpdateMessage(ctx context.Context, id int64, content string) (*api.Message, error) {
	if f.onUpdate != nil {
		f.onUpdate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i := range f.messages {
		if f.messages[i].ID == id && !f.messages[i].IsDeleted {
			f.messages[i].Content = content
			f.messages[i].IsEdited = true
			msg := f.messages[i]
			return &msg, nil
		}
	}
	return nil, &api.Error{Class: api.ErrNotFound, StatusCode: 404, Detail: "Message not found"}
}

func (f *fakeGateway) DeleteMessage(ctx context.Context, id int64) (*api.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	for i := range f.messages {
		if f.messages[i].ID == id && !f.messages[i].IsDeleted {
			f.messages[i].IsDeleted = true
			msg := f.messages[i]
			return &msg, nil
		}
	}
	return nil, &api.Error{Class: api.ErrNotFound, StatusCode: 404, Detail: "Message not found"}
}

func (f *fakeGateway) ClickAction(ctx context.Context, actionType, conversationContext string) (*api.Message, error) {
	if f.onAction != nil {
		f.onAction()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.actionErr != nil {
		return nil, f.actionErr
	}
	return &api.Message{
		ID:        f.nextID + 1000,
		Role:      api.RoleAssistant,
		Content:   "action: " + actionType,
		Timestamp: time.Now().UTC(),
		Context:   conversationContext,
	}, nil
}

func contents(messages []Message) []string {
	out := make([]string, len(messages))
	for i, msg := range messages {
		out[i] = msg.Content
	}
	return out
}

func TestStore_DefaultsToOnboarding(t *testing.T) {
	s := New(newFakeGateway(), nil)
	assert.Equal(t, api.ContextOnboarding, s.Context())
	assert.Empty(t, s.Messages())
}

func TestSetContext_ReplacesListWholesale(t *testing.T) {
	gw := newFakeGateway()
	gw.seed(api.RoleUser, "hello onboarding", api.ContextOnboarding)
	gw.seed(api.RoleAssistant, "welcome", api.ContextOnboarding)
	gw.seed(api.RoleUser, "hello support", api.ContextSupport)
	s := New(gw, nil)

	require.NoError(t, s.SetContext(context.Background(), api.ContextOnboarding))
	assert.Equal(t, []string{"hello onboarding", "welcome"}, contents(s.Messages()))

	require.NoError(t, s.SetContext(context.Background(), api.ContextSupport))
	messages := s.Messages()
	assert.Equal(t, []string{"hello support"}, contents(messages))
	for _, msg := range messages {
		assert.Equal(t, api.ContextSupport, msg.Context, "no cross-context leakage")
	}
}

func TestSetContext_FailureKeepsPriorListAndRecordsError(t *testing.T) {
	gw := newFakeGateway()
	gw.seed(api.RoleUser, "hello", api.ContextOnboarding)
	s := New(gw, nil)
	require.NoError(t, s.SetContext(context.Background(), api.ContextOnboarding))

	gw.mu.Lock()
	gw.getErr = &api.Error{Class: api.ErrNetwork, Detail: "connection refused"}
	gw.mu.Unlock()

	err := s.SetContext(context.Background(), api.ContextSupport)
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrNetwork)
	assert.Equal(t, []string{"hello"}, contents(s.Messages()), "prior list stays, stale")
	assert.NotEmpty(t, s.LastError())
}

func TestSetContext_StaleFetchIsDiscarded(t *testing.T) {
	gw := newFakeGateway()
	gw.seed(api.RoleUser, "slow context", api.ContextOnboarding)
	gw.seed(api.RoleUser, "fast context", api.ContextSupport)

	gate := make(chan struct{})
	gw.mu.Lock()
	gw.blockGet[api.ContextOnboarding] = gate
	gw.mu.Unlock()

	s := New(gw, nil)

	// Fetch for Onboarding parks on the gate
	done := make(chan error, 1)
	go func() {
		done <- s.SetContext(context.Background(), api.ContextOnboarding)
	}()

	// Wait until the slow fetch is in flight
	require.Eventually(t, func() bool {
		gw.mu.Lock()
		defer gw.mu.Unlock()
		return gw.getCalls == 1
	}, time.Second, 5*time.Millisecond)

	// Switch to Support while Onboarding's fetch is still pending
	require.NoError(t, s.SetContext(context.Background(), api.ContextSupport))
	assert.Equal(t, []string{"fast context"}, contents(s.Messages()))

	// Release the stale fetch: its result must not overwrite Support
	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, api.ContextSupport, s.Context())
	assert.Equal(t, []string{"fast context"}, contents(s.Messages()),
		"stale response for a switched-away context is discarded")
}

func TestRefresh_PicksUpServerChanges(t *testing.T) {
	gw := newFakeGateway()
	s := New(gw, nil)
	require.NoError(t, s.Refresh(context.Background()))
	assert.Empty(t, s.Messages())

	gw.seed(api.RoleAssistant, "while you were away", api.ContextOnboarding)
	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, []string{"while you were away"}, contents(s.Messages()))
}

// memCache implements HistoryCache in memory.
type memCache struct {
	mu        sync.Mutex
	snapshots map[string][]api.Message
}

func newMemCache() *memCache {
	return &memCache{snapshots: map[string][]api.Message{}}
}

func (c *memCache) ReplaceContext(ctx context.Context, conversationContext string, messages []api.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[conversationContext] = append([]api.Message(nil), messages...)
	return nil
}

func (c *memCache) ListByContext(ctx context.Context, conversationContext string) ([]api.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.Message(nil), c.snapshots[conversationContext]...), nil
}

func TestStore_WritesFetchedSnapshotThroughToCache(t *testing.T) {
	gw := newFakeGateway()
	gw.seed(api.RoleUser, "hello", api.ContextOnboarding)
	cache := newMemCache()

	s := New(gw, nil)
	s.SetCache(cache)
	require.NoError(t, s.Refresh(context.Background()))

	cached, err := cache.ListByContext(context.Background(), api.ContextOnboarding)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "hello", cached[0].Content)
}

func TestSeedFromCache_PopulatesBeforeFirstFetch(t *testing.T) {
	cache := newMemCache()
	require.NoError(t, cache.ReplaceContext(context.Background(), api.ContextOnboarding, []api.Message{
		{ID: 1, Role: api.RoleUser, Content: "cached turn", Context: api.ContextOnboarding},
	}))

	s := New(newFakeGateway(), nil)
	s.SetCache(cache)
	require.NoError(t, s.SeedFromCache(context.Background()))
	assert.Equal(t, []string{"cached turn"}, contents(s.Messages()))
}

func TestSeedFromCache_NeverOverwritesFetchedList(t *testing.T) {
	gw := newFakeGateway()
	gw.seed(api.RoleUser, "fresh", api.ContextOnboarding)
	cache := newMemCache()
	require.NoError(t, cache.ReplaceContext(context.Background(), api.ContextOnboarding, []api.Message{
		{ID: 1, Role: api.RoleUser, Content: "stale cached", Context: api.ContextOnboarding},
	}))

	s := New(gw, nil)
	s.SetCache(cache)
	require.NoError(t, s.Refresh(context.Background()))
	require.NoError(t, s.SeedFromCache(context.Background()))
	assert.Equal(t, []string{"fresh"}, contents(s.Messages()))
}

func TestRefresh_OfflineFallsBackToCachedHistory(t *testing.T) {
	gw := newFakeGateway()
	gw.getErr = &api.Error{Class: api.ErrNetwork, Detail: "connection refused"}
	cache := newMemCache()
	require.NoError(t, cache.ReplaceContext(context.Background(), api.ContextOnboarding, []api.Message{
		{ID: 1, Role: api.RoleUser, Content: "from last session", Context: api.ContextOnboarding},
	}))

	s := New(gw, nil)
	s.SetCache(cache)

	err := s.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"from last session"}, contents(s.Messages()),
		"blank list falls back to cached history when the gateway is unreachable")
	assert.NotEmpty(t, s.LastError())
}

func TestDismissError(t *testing.T) {
	gw := newFakeGateway()
	gw.getErr = &api.Error{Class: api.ErrNetwork}
	s := New(gw, nil)

	_ = s.Refresh(context.Background())
	require.NotEmpty(t, s.LastError())

	s.DismissError()
	assert.Empty(t, s.LastError())
}
