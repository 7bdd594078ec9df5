// Package store provides a local SQLite cache of fetched conversation
// history, keyed by conversation context. The gateway remains the source
// of truth; the cache exists so a fresh launch or an offline moment can
// still show the last known messages for a context.
package store
