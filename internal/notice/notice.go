// ABOUTME: TTL-bounded single-value notice for user-facing errors
// ABOUTME: Auto-expires on read so dismissal needs no background goroutine

package notice

import (
	"sync"
	"time"
)

// DefaultTTL is how long an error banner stays visible by default.
const DefaultTTL = 5 * time.Second

// Notice holds at most one user-facing message at a time. A message set
// longer than the TTL ago reads back as empty.
type Notice struct {
	mu    sync.Mutex
	text  string
	setAt time.Time
	ttl   time.Duration
	now   func() time.Time
}

// New creates a notice with the given TTL. A non-positive TTL uses the
// default.
func New(ttl time.Duration) *Notice {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Notice{ttl: ttl, now: time.Now}
}

// Set replaces the current message and restarts its expiry window.
func (n *Notice) Set(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.text = text
	n.setAt = n.now()
}

// Current returns the live message, or "" when unset or expired.
func (n *Notice) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.text == "" || n.now().Sub(n.setAt) >= n.ttl {
		return ""
	}
	return n.text
}

// Clear dismisses the message immediately.
func (n *Notice) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.text = ""
}
