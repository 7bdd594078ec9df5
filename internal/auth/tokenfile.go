// ABOUTME: Durable bearer token storage in a file under the user config dir
// ABOUTME: AVA_TOKEN env var overrides the file for ephemeral sessions

package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// envToken overrides the token file when set. Useful for CI and one-off
// sessions; Save and Clear never touch the environment.
const envToken = "AVA_TOKEN"

// DefaultTokenPath returns the standard token location:
// $XDG_CONFIG_HOME/ava/token, falling back to ~/.config/ava/token.
func DefaultTokenPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "ava", "token"), nil
}

// TokenFile persists a single bearer token. Absence of the file means
// logged out.
type TokenFile struct {
	path   string
	logger *slog.Logger
}

// NewTokenFile creates a token store at the given path. An empty path uses
// DefaultTokenPath.
func NewTokenFile(path string, logger *slog.Logger) (*TokenFile, error) {
	if path == "" {
		var err error
		path, err = DefaultTokenPath()
		if err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenFile{path: path, logger: logger.With("component", "auth")}, nil
}

// Path returns the file location backing this store.
func (f *TokenFile) Path() string { return f.path }

// Load returns the persisted token, or "" when logged out.
// The AVA_TOKEN environment variable takes precedence over the file.
func (f *TokenFile) Load() string {
	if token := os.Getenv(envToken); token != "" {
		return token
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			f.logger.Warn("reading token file", "path", f.path, "error", err)
		}
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Token implements the gateway client's TokenProvider.
func (f *TokenFile) Token() string { return f.Load() }

// Save persists the token, creating parent directories as needed.
// The file is written with owner-only permissions.
func (f *TokenFile) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	f.logger.Debug("token saved", "path", f.path)
	return nil
}

// Clear removes the persisted token. Clearing an absent token is a no-op.
func (f *TokenFile) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	f.logger.Debug("token cleared", "path", f.path)
	return nil
}
