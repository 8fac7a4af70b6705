package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jaki95/whats-this-id/internal/domain"
)

// LocalStorage implements the Storage interface on the local filesystem,
// rooted at a single output directory.
type LocalStorage struct {
	outputDir string
}

// NewLocalStorage creates a local storage instance rooted at outputDir,
// creating the directory if needed.
func NewLocalStorage(outputDir string) (*LocalStorage, error) {
	if outputDir == "" {
		outputDir = "output"
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}
	return &LocalStorage{outputDir: outputDir}, nil
}

// SaveArchive writes the archive stream to a file under the output directory.
// A partially written file is removed on failure.
func (s *LocalStorage) SaveArchive(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(s.outputDir, sanitizeName(name))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create archive file: %w", err)
	}

	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write archive: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close archive file: %w", err)
	}
	return path, nil
}

// SaveTracklist writes the tracklist document as pretty-printed JSON next to
// the archives.
func (s *LocalStorage) SaveTracklist(ctx context.Context, name string, tracklist *domain.Tracklist) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(tracklist, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode tracklist: %w", err)
	}

	path := filepath.Join(s.outputDir, tracklistFilename(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write tracklist: %w", err)
	}
	return path, nil
}

// LoadTracklist reads a stored tracklist document back.
func (s *LocalStorage) LoadTracklist(ctx context.Context, name string) (*domain.Tracklist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.outputDir, tracklistFilename(name))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tracklist: %w", err)
	}

	var tracklist domain.Tracklist
	if err := json.Unmarshal(data, &tracklist); err != nil {
		return nil, fmt.Errorf("failed to parse tracklist %s: %w", path, err)
	}
	return &tracklist, nil
}

// ListArchives lists stored ZIP archives matching the name prefix.
func (s *LocalStorage) ListArchives(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	var results []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".zip") {
			continue
		}
		if prefix != "" && !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		results = append(results, filepath.Join(s.outputDir, entry.Name()))
	}
	return results, nil
}

// Close is a no-op for local storage.
func (s *LocalStorage) Close() error {
	return nil
}

func tracklistFilename(name string) string {
	base := strings.TrimSuffix(sanitizeName(name), ".zip")
	return base + ".json"
}
