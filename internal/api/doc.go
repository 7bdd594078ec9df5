// Package api provides a typed HTTP client for the Ava chat gateway.
//
// # Overview
//
// The gateway exposes a small REST surface: credential exchange (/login,
// /register), identity lookup (/users/me), and per-context message CRUD
// plus a click-action endpoint under /messages/. The Client wraps each
// endpoint with request/response types and maps HTTP failures onto the
// package's error taxonomy.
//
// # Authentication
//
// Authenticated calls attach a bearer token obtained from the injected
// TokenProvider. Login and Register tolerate an absent token; every other
// endpoint fails with ErrAuth when the gateway rejects the credential.
//
// # Errors
//
// All failures unwrap to one of four sentinels:
//
//   - ErrAuth: invalid or expired credential (401, 403)
//   - ErrValidation: rejected input (400, 422)
//   - ErrNotFound: target entity absent (404)
//   - ErrNetwork: transport failure or server-side error (5xx)
//
// Use errors.Is to branch on the class and errors.As(*api.Error) to reach
// the HTTP status and server-supplied detail string.
package api
