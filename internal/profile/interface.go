package profile

import "context"

// Browser abstracts the external browser used for interactive
// re-authentication.
type Browser interface {
	// Locate resolves the path of a usable browser executable.
	Locate() (string, error)
	// Launch runs the browser in the foreground with the given directory as
	// its isolated user-data dir, returning once the operator closes it.
	Launch(ctx context.Context, execPath, userDataDir string) error
}
