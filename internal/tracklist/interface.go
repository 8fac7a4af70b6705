package tracklist

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jaki95/whats-this-id/internal/domain"
	"github.com/jaki95/whats-this-id/internal/google"
)

// Importer imports a tracklist from a given source.
type Importer interface {
	Import(ctx context.Context, source string) (*domain.Tracklist, error)
	Name() string
}

const (
	Source1001Tracklists = "1001tracklists"
	SourceTrackIDNet     = "trackid.net"
	SourceCSV            = "csv"
	SourceText           = "text"
)

// CookieSource supplies browser session cookies for the given hosts. The
// profile maintained by the cookie refresher implements it.
type CookieSource interface {
	Cookies(ctx context.Context, hosts ...string) ([]*http.Cookie, error)
}

// SearchResult represents a single result from a search operation
type SearchResult struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
	Source      string `json:"source"`
}

// Searcher provides functionality to search for tracklists
type Searcher interface {
	// Search performs a search for tracklists matching the given query
	Search(ctx context.Context, query string) ([]SearchResult, error)

	// GetTracklist retrieves the full tracklist for a specific search result
	GetTracklist(ctx context.Context, resultID string) (*domain.Tracklist, error)
}

// CompositeImporter tries multiple importers in sequence until one succeeds
type CompositeImporter struct {
	importers []Importer
}

func NewCompositeImporter(importers ...Importer) *CompositeImporter {
	return &CompositeImporter{importers: importers}
}

func (c *CompositeImporter) Name() string {
	return "composite"
}

func (c *CompositeImporter) Import(ctx context.Context, source string) (*domain.Tracklist, error) {
	var errors []error
	for _, importer := range c.importers {
		tracklist, err := importer.Import(ctx, source)
		if err == nil {
			return tracklist, nil
		}
		errors = append(errors, fmt.Errorf("%s: %v", importer.Name(), err))
	}
	return nil, fmt.Errorf("all importers failed: %v", errors)
}

// NewDefaultImporter assembles the standard import chain: 1001tracklists,
// trackid.net, CSV files, then pasted text.
func NewDefaultImporter(searchClient google.Client, cookieSource CookieSource, cacheDir string, cacheTTL time.Duration) Importer {
	return NewCompositeImporter(
		New1001TracklistsImporter(searchClient, cookieSource, cacheDir, cacheTTL),
		NewTrackIDImporter(),
		NewCSVImporter(),
		NewTextImporter(),
	)
}
