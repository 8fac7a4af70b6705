package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jaki95/whats-this-id/config"
	"github.com/jaki95/whats-this-id/internal/domain"
)

// Storage type names accepted in config.
const (
	TypeLocal = "local"
	TypeGCS   = "gcs"
)

// Storage persists finished set archives and their tracklist documents.
type Storage interface {
	// SaveArchive streams a ZIP archive into the store under the given file
	// name and returns the stored location.
	SaveArchive(ctx context.Context, name string, r io.Reader) (string, error)

	// SaveTracklist stores the tracklist document for a set.
	SaveTracklist(ctx context.Context, name string, tracklist *domain.Tracklist) (string, error)

	// LoadTracklist reads a stored tracklist document back.
	LoadTracklist(ctx context.Context, name string) (*domain.Tracklist, error)

	// ListArchives returns the locations of stored archives whose names start
	// with prefix; an empty prefix lists everything.
	ListArchives(ctx context.Context, prefix string) ([]string, error)

	// Close releases any underlying clients.
	Close() error
}

// New builds the storage backend selected by the config.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "", TypeLocal:
		return NewLocalStorage(cfg.OutputDir)
	case TypeGCS:
		return NewGCSStorage(ctx, cfg.Bucket, cfg.ObjectPrefix, cfg.CredentialsFile)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// sanitizeName makes a set name safe to use as a file or object name.
func sanitizeName(name string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_",
		"\n", "_", "\r", "_", "\t", "_",
	)
	result := strings.Trim(replacer.Replace(name), " .")
	if result == "" {
		result = "untitled"
	}
	return result
}
