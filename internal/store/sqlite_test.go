// ABOUTME: Tests for the SQLite history cache
// ABOUTME: Covers snapshot replacement, ordering and context isolation

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/ava-client/internal/api"
)

func createTestCache(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func cachedMessage(id int64, role, content string) api.Message {
	return api.Message{
		ID:        id,
		Role:      role,
		Content:   content,
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Minute),
		UserID:    7,
	}
}

func TestSQLiteStore_EmptyContext(t *testing.T) {
	s := createTestCache(t)

	messages, err := s.ListByContext(context.Background(), api.ContextOnboarding)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestSQLiteStore_SnapshotRoundtrip(t *testing.T) {
	s := createTestCache(t)
	ctx := context.Background()

	snapshot := []api.Message{
		cachedMessage(1, api.RoleUser, "Hi"),
		cachedMessage(2, api.RoleAssistant, "Welcome!"),
	}
	require.NoError(t, s.ReplaceContext(ctx, api.ContextOnboarding, snapshot))

	messages, err := s.ListByContext(ctx, api.ContextOnboarding)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, int64(1), messages[0].ID)
	assert.Equal(t, "Hi", messages[0].Content)
	assert.Equal(t, api.ContextOnboarding, messages[0].Context)
	assert.Equal(t, snapshot[0].Timestamp, messages[0].Timestamp)
	assert.Equal(t, api.RoleAssistant, messages[1].Role)
}

func TestSQLiteStore_ReplacePreservesServerOrder(t *testing.T) {
	s := createTestCache(t)
	ctx := context.Background()

	// Server order is authoritative even when IDs are not monotonic
	snapshot := []api.Message{
		cachedMessage(9, api.RoleUser, "first"),
		cachedMessage(3, api.RoleAssistant, "second"),
		cachedMessage(12, api.RoleUser, "third"),
	}
	require.NoError(t, s.ReplaceContext(ctx, api.ContextSupport, snapshot))

	messages, err := s.ListByContext(ctx, api.ContextSupport)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, []int64{9, 3, 12}, []int64{messages[0].ID, messages[1].ID, messages[2].ID})
}

func TestSQLiteStore_ReplaceIsWholesale(t *testing.T) {
	s := createTestCache(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceContext(ctx, api.ContextOnboarding, []api.Message{
		cachedMessage(1, api.RoleUser, "old"),
		cachedMessage(2, api.RoleAssistant, "old reply"),
	}))
	require.NoError(t, s.ReplaceContext(ctx, api.ContextOnboarding, []api.Message{
		cachedMessage(5, api.RoleUser, "new"),
	}))

	messages, err := s.ListByContext(ctx, api.ContextOnboarding)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "new", messages[0].Content)
}

func TestSQLiteStore_ContextsAreIsolated(t *testing.T) {
	s := createTestCache(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceContext(ctx, api.ContextOnboarding, []api.Message{
		cachedMessage(1, api.RoleUser, "onboarding"),
	}))
	require.NoError(t, s.ReplaceContext(ctx, api.ContextSupport, []api.Message{
		cachedMessage(1, api.RoleUser, "support"),
	}))

	onboarding, err := s.ListByContext(ctx, api.ContextOnboarding)
	require.NoError(t, err)
	support, err := s.ListByContext(ctx, api.ContextSupport)
	require.NoError(t, err)

	require.Len(t, onboarding, 1)
	require.Len(t, support, 1)
	assert.Equal(t, "onboarding", onboarding[0].Content)
	assert.Equal(t, "support", support[0].Content)

	// Clearing one context leaves the other intact
	require.NoError(t, s.ReplaceContext(ctx, api.ContextOnboarding, nil))
	onboarding, err = s.ListByContext(ctx, api.ContextOnboarding)
	require.NoError(t, err)
	support, err = s.ListByContext(ctx, api.ContextSupport)
	require.NoError(t, err)
	assert.Empty(t, onboarding)
	assert.Len(t, support, 1)
}

func TestSQLiteStore_EditAndDeleteFlags(t *testing.T) {
	s := createTestCache(t)
	ctx := context.Background()

	msg := cachedMessage(1, api.RoleUser, "amended")
	msg.IsEdited = true
	require.NoError(t, s.ReplaceContext(ctx, api.ContextMarketing, []api.Message{msg}))

	messages, err := s.ListByContext(ctx, api.ContextMarketing)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.True(t, messages[0].IsEdited)
	assert.False(t, messages[0].IsDeleted)
}
