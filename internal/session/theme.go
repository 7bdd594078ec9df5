// ABOUTME: Persisted theme preference, reset to light on logout
// ABOUTME: Single-value file next to the bearer token in the config dir

package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Theme values.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// ThemeFile persists the UI theme preference. Logout resets it to light.
type ThemeFile struct {
	path string
}

// NewThemeFile creates a theme store at the given path.
func NewThemeFile(path string) *ThemeFile {
	return &ThemeFile{path: path}
}

// Load returns the persisted theme, defaulting to light.
func (f *ThemeFile) Load() string {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return ThemeLight
	}
	theme := strings.TrimSpace(string(data))
	if theme != ThemeDark {
		return ThemeLight
	}
	return theme
}

// Save persists the theme preference.
func (f *ThemeFile) Save(theme string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("creating preference directory: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(theme+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing theme preference: %w", err)
	}
	return nil
}

// Reset restores the default light theme.
func (f *ThemeFile) Reset() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing theme preference: %w", err)
	}
	return nil
}
