// Package notice provides a thread-safe, TTL-bounded holder for the most
// recent user-facing failure message. A notice expires on its own so stale
// errors never linger in the UI.
package notice
