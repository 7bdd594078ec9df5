// ABOUTME: Error taxonomy for gateway client failures
// ABOUTME: Sentinel classes plus a typed Error carrying HTTP status and detail

package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel error classes. Every failure returned by the Client unwraps to
// exactly one of these.
var (
	ErrAuth       = errors.New("authentication failed")
	ErrValidation = errors.New("request rejected")
	ErrNotFound   = errors.New("not found")
	ErrNetwork    = errors.New("network error")
)

// Error is a gateway failure with transport-level detail attached.
type Error struct {
	Class      error  // one of the sentinel classes above
	StatusCode int    // HTTP status, 0 for transport failures
	Detail     string // server-supplied detail message, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%v: %s", e.Class, e.Detail)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%v: status %d", e.Class, e.StatusCode)
	}
	return e.Class.Error()
}

// Unwrap exposes the sentinel class for errors.Is matching.
func (e *Error) Unwrap() error {
	return e.Class
}

// classify maps an HTTP status code to its sentinel error class.
func classify(status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuth
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrValidation
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrNetwork
	}
}

// netError wraps a transport-level failure in the taxonomy.
func netError(err error) *Error {
	return &Error{Class: ErrNetwork, Detail: err.Error()}
}
