package browser

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFakeExecutable creates a runnable file and returns its path.
func writeFakeExecutable(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	return path
}

func TestLocateFindsFirstRunnableCandidate(t *testing.T) {
	dir := t.TempDir()
	first := writeFakeExecutable(t, dir, "chromium")
	second := writeFakeExecutable(t, dir, "google-chrome")

	chrome := NewChrome([]string{
		filepath.Join(dir, "missing"),
		first,
		second,
	}, "")

	path, err := chrome.Locate()
	require.NoError(t, err)
	assert.Equal(t, first, path)
}

func TestLocateSkipsNonExecutableFiles(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bit not checked on windows")
	}
	dir := t.TempDir()
	plain := filepath.Join(dir, "chromium")
	require.NoError(t, os.WriteFile(plain, []byte("not a binary"), 0o644))
	runnable := writeFakeExecutable(t, dir, "google-chrome")

	chrome := NewChrome([]string{plain, runnable}, "")

	path, err := chrome.Locate()
	require.NoError(t, err)
	assert.Equal(t, runnable, path)
}

func TestLocateReturnsErrNoBrowser(t *testing.T) {
	dir := t.TempDir()
	chrome := NewChrome([]string{
		filepath.Join(dir, "nope"),
		"definitely-not-a-real-browser-binary",
	}, "")

	_, err := chrome.Locate()
	assert.ErrorIs(t, err, ErrNoBrowser)
}

func TestLocateHonoursEnvOverride(t *testing.T) {
	dir := t.TempDir()
	override := writeFakeExecutable(t, dir, "my-browser")
	t.Setenv(envBrowserPath, override)

	chrome := NewChrome([]string{filepath.Join(dir, "ignored")}, "")

	path, err := chrome.Locate()
	require.NoError(t, err)
	assert.Equal(t, override, path)
}

func TestLocateRejectsBadEnvOverride(t *testing.T) {
	t.Setenv(envBrowserPath, filepath.Join(t.TempDir(), "missing"))

	chrome := NewChrome(nil, "")

	_, err := chrome.Locate()
	assert.ErrorIs(t, err, ErrNoBrowser)
}

func TestLaunchArgs(t *testing.T) {
	args := launchArgs("/tmp/profile", "https://www.1001tracklists.com")

	assert.Contains(t, args, "--user-data-dir=/tmp/profile")
	assert.Contains(t, args, "--no-first-run")
	assert.Contains(t, args, "--no-default-browser-check")
	assert.Contains(t, args, "--profile-directory=Default")
	assert.Equal(t, "https://www.1001tracklists.com", args[len(args)-1])

	// No start URL: flag list only.
	bare := launchArgs("/tmp/profile", "")
	assert.Equal(t, "--disable-background-networking", bare[len(bare)-1])
}
