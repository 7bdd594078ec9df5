// Package session owns the authentication lifecycle of the client.
//
// # Overview
//
// A Session is the single source of truth for "who is logged in" and
// whether protected surfaces may render. It is explicitly constructed
// with an injected identity client and credential store; there is no
// package-level singleton.
//
// # Lifecycle
//
//	sess := session.New(apiClient, tokenFile, themeFile, logger)
//	sess.Restore(ctx)          // once at startup
//	sess.Login(ctx, token)     // after credential exchange
//	sess.Logout()              // clears credential and identity
//
// Authenticated() is true only while a resolved user identity is held.
// Loading() is true while a credential resolution is in flight and is
// guaranteed to reach false on every terminal outcome.
package session
