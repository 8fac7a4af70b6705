package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Refresher drives the human-in-the-loop session refresh: it opens a browser
// on a throwaway profile, waits for the operator to log in and close the
// window, then copies the session artifacts into the persistent profile.
type Refresher struct {
	store   *Store
	browser Browser
	target  string
	confirm string
	out     io.Writer
}

func NewRefresher(store *Store, browser Browser, targetURL, confirmURL string) *Refresher {
	return &Refresher{
		store:   store,
		browser: browser,
		target:  targetURL,
		confirm: confirmURL,
		out:     os.Stdout,
	}
}

// Refresh runs one refresh session and returns the number of session
// artifacts that were copied into the persistent profile.
//
// The temporary profile is deleted on every exit path. Individual artifact
// copies are best-effort: a failed or missing artifact never aborts the rest.
func (r *Refresher) Refresh(ctx context.Context) (copied int, err error) {
	tmp := r.store.TempRoot()

	// A stale temp profile from an earlier failed run would make the browser
	// reuse its session instead of starting a clean one.
	if err := os.RemoveAll(tmp); err != nil {
		return 0, fmt.Errorf("remove stale temp profile %q: %w", tmp, err)
	}

	execPath, err := r.browser.Locate()
	if err != nil {
		return 0, fmt.Errorf("locate browser: %w", err)
	}

	if err := os.MkdirAll(tmp, 0o755); err != nil {
		return 0, fmt.Errorf("create temp profile %q: %w", tmp, err)
	}
	defer func() {
		if rmErr := os.RemoveAll(tmp); rmErr != nil {
			if err == nil {
				err = fmt.Errorf("remove temp profile %q: %w", tmp, rmErr)
			} else {
				slog.Warn("failed to remove temp profile", "path", tmp, "error", rmErr)
			}
		}
	}()

	r.printInstructions()

	slog.Info("launching browser for session refresh", "executable", execPath, "profile", tmp)
	if err := r.browser.Launch(ctx, execPath, tmp); err != nil {
		return 0, fmt.Errorf("run browser: %w", err)
	}

	return r.copySessionArtifacts(), nil
}

func (r *Refresher) printInstructions() {
	fmt.Fprintln(r.out, "A browser window will open with a clean temporary profile.")
	fmt.Fprintf(r.out, "  1. Navigate to %s\n", r.target)
	fmt.Fprintln(r.out, "  2. Log in and complete any captcha challenge")
	fmt.Fprintf(r.out, "  3. Visit %s to confirm the session is active\n", r.confirm)
	fmt.Fprintln(r.out, "  4. Close the browser window to finish")
}

// copySessionArtifacts copies whichever session artifacts the interactive
// session produced from the temp profile into the persistent one. Artifacts
// absent from the temp profile are skipped; the persistent copies, if any,
// stay as they are.
func (r *Refresher) copySessionArtifacts() int {
	srcDir := filepath.Join(r.store.TempRoot(), sessionSubdir)
	dstDir := r.store.SessionDir()

	copied := 0
	for _, name := range sessionArtifacts {
		src := filepath.Join(srcDir, name)
		info, err := os.Stat(src)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				slog.Warn("skipping session artifact", "artifact", name, "error", err)
			}
			continue
		}

		dst := filepath.Join(dstDir, name)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			slog.Warn("failed to prepare destination for artifact", "artifact", name, "error", err)
			continue
		}

		if info.IsDir() {
			err = copyDir(src, dst)
		} else {
			err = copyFile(src, dst)
		}
		if err != nil {
			slog.Warn("failed to copy session artifact", "artifact", name, "error", err)
			continue
		}

		slog.Debug("copied session artifact", "artifact", name)
		copied++
	}
	return copied
}
