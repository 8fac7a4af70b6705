package cookies

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// snapshotCopy copies a SQLite cookie database (and its -wal and -shm
// companions when present) to a temporary directory, so reads never contend
// with a browser that has the live database open.
//
// The caller must invoke cleanup when done.
func snapshotCopy(srcPath string) (dbPath string, cleanup func(), err error) {
	info, err := os.Stat(srcPath)
	if err != nil {
		return "", nil, fmt.Errorf("cookie database not found: %s", srcPath)
	}
	if info.IsDir() {
		return "", nil, fmt.Errorf("cookie database path %s is a directory", srcPath)
	}
	if info.Size() == 0 {
		return "", nil, fmt.Errorf("cookie database at %s is empty", srcPath)
	}

	tempDir, err := os.MkdirTemp("", "whats-this-id-cookies-*")
	if err != nil {
		return "", nil, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup = func() { _ = os.RemoveAll(tempDir) }

	target := filepath.Join(tempDir, filepath.Base(srcPath))
	if err := copyFile(srcPath, target); err != nil {
		cleanup()
		return "", nil, err
	}

	// WAL mode keeps recent writes in sidecar files; copy them best-effort.
	for _, suffix := range []string{"-wal", "-shm"} {
		if _, err := os.Stat(srcPath + suffix); err == nil {
			_ = copyFile(srcPath+suffix, target+suffix)
		}
	}

	return target, cleanup, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Sync()
}
