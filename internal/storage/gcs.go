package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/jaki95/whats-this-id/internal/domain"
)

// GCSStorage implements the Storage interface on a Google Cloud Storage
// bucket.
type GCSStorage struct {
	client       *storage.Client
	bucket       string
	objectPrefix string
}

// NewGCSStorage creates a GCS-backed store. An empty credentialsFile uses
// application default credentials.
func NewGCSStorage(ctx context.Context, bucketName, objectPrefix, credentialsFile string) (*GCSStorage, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("gcs storage requires a bucket name")
	}

	var client *storage.Client
	var err error
	if credentialsFile != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	} else {
		client, err = storage.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStorage{
		client:       client,
		bucket:       bucketName,
		objectPrefix: objectPrefix,
	}, nil
}

// SaveArchive streams the archive into a bucket object.
func (s *GCSStorage) SaveArchive(ctx context.Context, name string, r io.Reader) (string, error) {
	objectName := s.objectName(sanitizeName(name))

	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = "application/zip"
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to upload archive: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return s.location(objectName), nil
}

// SaveTracklist stores the tracklist document as a JSON object.
func (s *GCSStorage) SaveTracklist(ctx context.Context, name string, tracklist *domain.Tracklist) (string, error) {
	data, err := json.MarshalIndent(tracklist, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode tracklist: %w", err)
	}

	objectName := s.objectName(tracklistFilename(name))
	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to upload tracklist: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return s.location(objectName), nil
}

// LoadTracklist reads a stored tracklist document from the bucket.
func (s *GCSStorage) LoadTracklist(ctx context.Context, name string) (*domain.Tracklist, error) {
	objectName := s.objectName(tracklistFilename(name))
	r, err := s.client.Bucket(s.bucket).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open tracklist object: %w", err)
	}
	defer r.Close()

	var tracklist domain.Tracklist
	if err := json.NewDecoder(r).Decode(&tracklist); err != nil {
		return nil, fmt.Errorf("failed to parse tracklist %s: %w", objectName, err)
	}
	return &tracklist, nil
}

// ListArchives lists stored ZIP objects matching the name prefix.
func (s *GCSStorage) ListArchives(ctx context.Context, prefix string) ([]string, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{
		Prefix: s.objectName(prefix),
	})

	var results []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error listing objects: %w", err)
		}
		if !strings.HasSuffix(attrs.Name, ".zip") {
			continue
		}
		results = append(results, s.location(attrs.Name))
	}
	return results, nil
}

// Close closes the GCS client.
func (s *GCSStorage) Close() error {
	return s.client.Close()
}

func (s *GCSStorage) objectName(name string) string {
	if s.objectPrefix != "" {
		return s.objectPrefix + "/" + name
	}
	return name
}

func (s *GCSStorage) location(objectName string) string {
	return fmt.Sprintf("gs://%s/%s", s.bucket, objectName)
}
