// ABOUTME: Session manager for the authentication lifecycle
// ABOUTME: Restore/Login/Logout with a persisted bearer token and resolved identity

package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/2389/ava-client/internal/api"
	"github.com/2389/ava-client/internal/auth"
)

// IdentityClient defines what the session needs from the gateway client.
type IdentityClient interface {
	GetCurrentUser(ctx context.Context) (*api.User, error)
}

// CredentialStore defines what the session needs from token persistence.
type CredentialStore interface {
	Load() string
	Save(token string) error
	Clear() error
}

// Session tracks the bearer credential and the resolved user identity.
// All state transitions keep two invariants: Authenticated() is never true
// without a resolved user, and Loading() reaches false on every terminal
// outcome of a credential resolution.
type Session struct {
	client IdentityClient
	creds  CredentialStore
	themes *ThemeFile
	logger *slog.Logger
	now    func() time.Time

	mu            sync.Mutex
	token         string
	user          *api.User
	authenticated bool
	loading       bool
}

// New creates a session. The theme file may be nil when no theme
// preference is persisted; a nil logger falls back to slog.Default.
func New(client IdentityClient, creds CredentialStore, themes *ThemeFile, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		client: client,
		creds:  creds,
		themes: themes,
		logger: logger.With("component", "session"),
		now:    time.Now,
	}
}

// Restore attempts to resume a previous session from the persisted token.
// With no persisted token it settles immediately. A token the local clock
// already knows to be expired is discarded without a network call. Any
// resolution failure clears the persisted token and leaves the session
// unauthenticated.
func (s *Session) Restore(ctx context.Context) error {
	token := s.creds.Load()
	if token == "" {
		s.settle("", nil)
		return nil
	}

	if auth.Expired(token, s.now()) {
		s.logger.Info("persisted token expired, discarding")
		s.clearCredential()
		s.settle("", nil)
		return nil
	}

	s.beginLoading(token)
	user, err := s.client.GetCurrentUser(ctx)
	if err != nil {
		s.logger.Warn("session restore failed", "error", err)
		s.clearCredential()
		s.settle("", nil)
		return fmt.Errorf("restoring session: %w", err)
	}

	s.settle(token, user)
	s.logger.Info("session restored", "user_id", user.ID, "username", user.Username)
	return nil
}

// Login persists the token and resolves the user identity behind it.
// On failure the session applies full logout semantics and returns the
// error for the caller to surface.
func (s *Session) Login(ctx context.Context, token string) error {
	if err := s.creds.Save(token); err != nil {
		return fmt.Errorf("persisting token: %w", err)
	}

	s.beginLoading(token)
	user, err := s.client.GetCurrentUser(ctx)
	if err != nil {
		s.Logout()
		return fmt.Errorf("resolving user: %w", err)
	}

	s.settle(token, user)
	s.logger.Info("logged in", "user_id", user.ID, "username", user.Username)
	return nil
}

// Logout clears the persisted token, the resolved identity, and resets the
// persisted theme preference. Calling it while already logged out only
// re-asserts the cleared state.
func (s *Session) Logout() {
	s.clearCredential()
	if s.themes != nil {
		if err := s.themes.Reset(); err != nil {
			s.logger.Warn("resetting theme preference", "error", err)
		}
	}
	s.settle("", nil)
	s.logger.Info("logged out")
}

// Authenticated reports whether a resolved user identity is held.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Loading reports whether a credential resolution is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// CurrentUser returns the resolved identity, or nil when unauthenticated.
func (s *Session) CurrentUser() *api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Token returns the in-memory bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// beginLoading marks a resolution attempt in flight for the given token.
func (s *Session) beginLoading(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.loading = true
}

// settle records a terminal resolution outcome. A nil user means
// unauthenticated; loading always ends here.
func (s *Session) settle(token string, user *api.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
	s.authenticated = user != nil
	s.loading = false
}

func (s *Session) clearCredential() {
	if err := s.creds.Clear(); err != nil {
		s.logger.Warn("clearing persisted token", "error", err)
	}
}
