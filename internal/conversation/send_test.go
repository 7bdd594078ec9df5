// ABOUTME: Tests for optimistic send, reconciliation, rollback and the send guard
// ABOUTME: Covers the optimistic-insert-then-resync sequence end to end

package conversation

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/ava-client/internal/api"
)

func TestSend_EmptyAndWhitespaceAreNoOps(t *testing.T) {
	gw := newFakeGateway()
	s := New(gw, nil)

	require.NoError(t, s.Send(context.Background(), ""))
	require.NoError(t, s.Send(context.Background(), "   "))
	require.NoError(t, s.Send(context.Background(), "\n\t"))

	assert.Empty(t, s.Messages())
	assert.False(t, s.Sending())
	gw.mu.Lock()
	defer gw.mu.Unlock()
	assert.Empty(t, gw.messages, "nothing reached the gateway")
}

func TestSend_OptimisticEntryVisibleDuringRoundTrip(t *testing.T) {
	gw := newFakeGateway()
	s := New(gw, nil)

	var inFlight []Message
	var wasSending bool
	gw.onSend = func() {
		inFlight = s.Messages()
		wasSending = s.Sending()
	}

	require.NoError(t, s.Send(context.Background(), "Hi"))

	require.Len(t, inFlight, 1, "optimistic entry appended before the gateway answers")
	assert.Equal(t, "Hi", inFlight[0].Content)
	assert.Equal(t, api.RoleUser, inFlight[0].Role)
	assert.True(t, inFlight[0].Pending)
	assert.Negative(t, inFlight[0].ID, "temporary IDs are disjoint from server IDs")
	assert.NotEqual(t, [16]byte{}, [16]byte(inFlight[0].LocalID))
	assert.True(t, wasSending)
}

func TestSend_ReconcilesAndPicksUpAutoReply(t *testing.T) {
	gw := newFakeGateway()
	gw.autoReply = "Welcome!"
	s := New(gw, nil)

	require.NoError(t, s.Send(context.Background(), "Hi"))

	messages := s.Messages()
	require.Len(t, messages, 2)

	assert.Equal(t, "Hi", messages[0].Content)
	assert.Positive(t, messages[0].ID, "temporary id replaced by server-assigned id")
	assert.False(t, messages[0].Pending)
	assert.Equal(t, "Welcome!", messages[1].Content)
	assert.Equal(t, api.RoleAssistant, messages[1].Role)

	for _, msg := range messages {
		assert.Positive(t, msg.ID, "no temporary id survives reconciliation")
	}
	assert.False(t, s.Sending())
}

func TestSend_TrimsContent(t *testing.T) {
	gw := newFakeGateway()
	s := New(gw, nil)

	require.NoError(t, s.Send(context.Background(), "  hello  "))

	messages := s.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "hello", messages[0].Content)
}

func TestSend_FailureRollsBackOptimisticEntry(t *testing.T) {
	gw := newFakeGateway()
	gw.seed(api.RoleUser, "earlier", api.ContextOnboarding)
	s := New(gw, nil)
	require.NoError(t, s.Refresh(context.Background()))

	gw.mu.Lock()
	gw.sendErr = &api.Error{Class: api.ErrNetwork, Detail: "connection reset"}
	gw.mu.Unlock()

	err := s.Send(context.Background(), "doomed")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrNetwork)

	assert.Equal(t, []string{"earlier"}, contents(s.Messages()), "optimistic bubble removed")
	assert.NotEmpty(t, s.LastError())
	assert.False(t, s.Sending())
}

func TestSend_SecondSendWhileInFlightIsANoOp(t *testing.T) {
	gw := newFakeGateway()
	s := New(gw, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	gw.onSend = func() {
		close(started)
		<-release
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.Send(context.Background(), "first")
	}()

	<-started
	require.True(t, s.Sending())

	// The guard holds for the whole send-then-refetch sequence
	require.NoError(t, s.Send(context.Background(), "second"))
	assert.Len(t, s.Messages(), 1, "second send ignored while first is in flight")

	close(release)
	wg.Wait()

	assert.False(t, s.Sending())
	assert.Equal(t, []string{"first"}, contents(s.Messages()))
}

func TestSend_GuardClearsAfterFailure(t *testing.T) {
	gw := newFakeGateway()
	gw.sendErr = &api.Error{Class: api.ErrNetwork}
	s := New(gw, nil)

	require.Error(t, s.Send(context.Background(), "doomed"))
	require.False(t, s.Sending())

	// A retry goes through once the guard is released
	gw.mu.Lock()
	gw.sendErr = nil
	gw.mu.Unlock()
	require.NoError(t, s.Send(context.Background(), "retry"))
	assert.Equal(t, []string{"retry"}, contents(s.Messages()))
}

func TestSend_TemporaryIDsAreUnique(t *testing.T) {
	gw := newFakeGateway()
	s := New(gw, nil)

	var tempIDs []int64
	gw.onSend = func() {
		messages := s.Messages()
		tempIDs = append(tempIDs, messages[len(messages)-1].ID)
	}

	require.NoError(t, s.Send(context.Background(), "one"))
	require.NoError(t, s.Send(context.Background(), "two"))

	require.Len(t, tempIDs, 2)
	assert.NotEqual(t, tempIDs[0], tempIDs[1])
	assert.Negative(t, tempIDs[0])
	assert.Negative(t, tempIDs[1])
}

func TestSend_ConcreteOnboardingScenario(t *testing.T) {
	// Empty Onboarding context; send "Hi"; the backend stores it and
	// auto-replies; the settled list holds exactly the two server records.
	gw := newFakeGateway()
	gw.autoReply = "Welcome!"
	s := New(gw, nil)
	require.NoError(t, s.SetContext(context.Background(), api.ContextOnboarding))
	require.Empty(t, s.Messages())

	require.NoError(t, s.Send(context.Background(), "Hi"))

	messages := s.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "Hi", messages[0].Content)
	assert.Equal(t, api.RoleUser, messages[0].Role)
	assert.Equal(t, "Welcome!", messages[1].Content)
	assert.Equal(t, api.RoleAssistant, messages[1].Role)
	assert.Greater(t, messages[1].ID, messages[0].ID)
	for _, msg := range messages {
		assert.Equal(t, api.ContextOnboarding, msg.Context)
		assert.False(t, msg.Pending)
	}
}
