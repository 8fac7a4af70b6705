package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// envBrowserPath overrides candidate probing when set.
const envBrowserPath = "WHATS_THIS_ID_BROWSER"

// ErrNoBrowser is returned when no candidate resolves to a runnable
// executable. There is no way to refresh a session without a browser, so
// callers surface this directly instead of retrying.
var ErrNoBrowser = errors.New("no compatible browser found")

// Chrome locates and runs a Chromium-family browser with an isolated
// user-data directory.
type Chrome struct {
	candidates []string
	startURL   string
}

// NewChrome builds a launcher probing the given candidates in order. A
// candidate containing a path separator is checked on disk; a bare name is
// looked up on PATH. An empty list falls back to per-OS defaults.
func NewChrome(candidates []string, startURL string) *Chrome {
	if len(candidates) == 0 {
		candidates = defaultCandidates()
	}
	return &Chrome{candidates: candidates, startURL: startURL}
}

// Locate resolves the browser executable, honouring the WHATS_THIS_ID_BROWSER
// override before probing the candidate list.
func (c *Chrome) Locate() (string, error) {
	if p := strings.TrimSpace(os.Getenv(envBrowserPath)); p != "" {
		if isRunnableFile(p) {
			return p, nil
		}
		return "", fmt.Errorf("%s points to %q which is not runnable: %w", envBrowserPath, p, ErrNoBrowser)
	}

	for _, candidate := range c.candidates {
		if strings.ContainsRune(candidate, os.PathSeparator) {
			if isRunnableFile(candidate) {
				return candidate, nil
			}
			continue
		}
		if p, err := exec.LookPath(candidate); err == nil {
			return p, nil
		}
	}
	return "", ErrNoBrowser
}

// Launch runs the browser as a blocking foreground process and returns when
// the operator closes it. There is deliberately no timeout: the login flow
// takes as long as the human does.
func (c *Chrome) Launch(ctx context.Context, execPath, userDataDir string) error {
	cmd := exec.CommandContext(ctx, execPath, launchArgs(userDataDir, c.startURL)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("browser %q: %w", execPath, err)
	}
	return nil
}

// launchArgs builds the flag set for an isolated interactive session:
// a throwaway user-data dir with all first-run and sync chrome suppressed.
func launchArgs(userDataDir, startURL string) []string {
	args := []string{
		"--user-data-dir=" + userDataDir,
		"--no-first-run",
		"--no-default-browser-check",
		"--profile-directory=Default",
		"--disable-sync",
		"--disable-extensions",
		"--disable-default-apps",
		"--disable-background-networking",
	}
	if strings.TrimSpace(startURL) != "" {
		args = append(args, startURL)
	}
	return args
}

// defaultCandidates lists the usual Chromium/Chrome install locations for the
// current OS. Chromium comes first: it is what the scraping profile was
// recorded with historically.
func defaultCandidates() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"chromium",
			"google-chrome",
		}
	case "windows":
		return []string{
			filepath.Join(os.Getenv("PROGRAMFILES"), "Google", "Chrome", "Application", "chrome.exe"),
			filepath.Join(os.Getenv("PROGRAMFILES(X86)"), "Google", "Chrome", "Application", "chrome.exe"),
			filepath.Join(os.Getenv("LOCALAPPDATA"), "Google", "Chrome", "Application", "chrome.exe"),
		}
	default:
		return []string{
			"chromium",
			"chromium-browser",
			"google-chrome",
			"google-chrome-stable",
		}
	}
}

func isRunnableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode()&0o111 != 0
}
