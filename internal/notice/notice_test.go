// ABOUTME: Tests for the TTL-bounded notice
// ABOUTME: Uses an injected clock for deterministic expiry

package notice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotice_EmptyByDefault(t *testing.T) {
	n := New(0)
	assert.Empty(t, n.Current())
}

func TestNotice_SetAndRead(t *testing.T) {
	n := New(5 * time.Second)
	n.Set("send failed")
	assert.Equal(t, "send failed", n.Current())
}

func TestNotice_ExpiresAfterTTL(t *testing.T) {
	base := time.Now()
	clock := base
	n := New(5 * time.Second)
	n.now = func() time.Time { return clock }

	n.Set("send failed")
	clock = base.Add(4 * time.Second)
	assert.Equal(t, "send failed", n.Current())

	clock = base.Add(5 * time.Second)
	assert.Empty(t, n.Current())
}

func TestNotice_SetRestartsWindow(t *testing.T) {
	base := time.Now()
	clock := base
	n := New(5 * time.Second)
	n.now = func() time.Time { return clock }

	n.Set("first")
	clock = base.Add(4 * time.Second)
	n.Set("second")
	clock = base.Add(8 * time.Second)
	assert.Equal(t, "second", n.Current())
}

func TestNotice_Clear(t *testing.T) {
	n := New(5 * time.Second)
	n.Set("send failed")
	n.Clear()
	assert.Empty(t, n.Current())
}
