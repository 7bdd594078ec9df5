// Package conversation maintains the context-scoped message list shown to
// the user.
//
// # Overview
//
// The Store owns the ordered message list for the currently selected
// conversation context and reconciles it against the gateway under
// concurrent user-initiated mutations.
//
// # Consistency model
//
// Every operation that mutates server state (send, save-edit, delete) is
// followed by a full authoritative re-fetch of the current context before
// it is considered complete. The one exception is the optimistic insert a
// send performs for perceived latency, which is reconciled or rolled back
// when the gateway answers. This trades an extra round trip for strong
// convergence with server-side side effects the client cannot predict,
// such as auto-generated assistant replies. Do not "optimize away" the
// second call.
//
// Context switches are raced safely: a fetch response is applied only if
// the context it was issued for is still current when it resolves.
//
// # Edit frontier
//
// Only the most recent user-authored message that is neither deleted nor
// already edited may enter edit mode. This keeps the edit history linear
// so downstream assistant replies never desynchronize from an amended
// earlier turn.
package conversation
