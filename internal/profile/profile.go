package profile

import (
	"fmt"
	"os"
	"path/filepath"
)

// sessionSubdir is the browser's default-session directory inside a profile.
const sessionSubdir = "Default"

// sessionArtifacts are the profile entries that carry authentication state.
// Each one is copied independently during a refresh; a missing entry is
// expected on a fresh login and is skipped.
var sessionArtifacts = []string{
	"Cookies",
	"Cookies-journal",
	"Session Storage",
	"Local Storage",
	"Web Data",
	"Web Data-journal",
}

// Store is the persistent browser profile used to authenticate scraping
// sessions. The scraper reads from it; the wipe and refresh flows are the
// only writers.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the persistent profile directory.
func (s *Store) Root() string {
	return s.root
}

// TempRoot returns the sibling directory used for one interactive
// re-authentication session.
func (s *Store) TempRoot() string {
	return s.root + "_tmp"
}

// SessionDir returns the default-session directory inside the persistent
// profile, where the session artifacts live.
func (s *Store) SessionDir() string {
	return filepath.Join(s.root, sessionSubdir)
}

// CookiesPath returns the path of the persistent profile's cookie database.
func (s *Store) CookiesPath() string {
	return filepath.Join(s.SessionDir(), "Cookies")
}

// Wipe removes all contents of the persistent profile directory, recreating
// it empty. A missing directory is not an error: it is created.
func (s *Store) Wipe() error {
	if err := os.RemoveAll(s.root); err != nil {
		return fmt.Errorf("remove profile dir %q: %w", s.root, err)
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("recreate profile dir %q: %w", s.root, err)
	}
	return nil
}
