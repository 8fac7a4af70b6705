package tracklist

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jaki95/whats-this-id/internal/domain"
	"github.com/jaki95/whats-this-id/internal/google"
)

// WebsiteSearcher finds tracklist pages on a single website through
// site-scoped web search and hands matches to an importer.
type WebsiteSearcher struct {
	searchClient google.Client
	importer     Importer
	website      string
	source       string

	// Cache for search results
	mu      sync.RWMutex
	results []google.SearchResult
}

func NewWebsiteSearcher(searchClient google.Client, importer Importer, website, source string) *WebsiteSearcher {
	return &WebsiteSearcher{
		searchClient: searchClient,
		importer:     importer,
		website:      website,
		source:       source,
	}
}

// New1001TracklistsSearcher searches 1001tracklists.com.
func New1001TracklistsSearcher(searchClient google.Client, importer Importer) *WebsiteSearcher {
	return NewWebsiteSearcher(searchClient, importer, "1001tracklists.com", Source1001Tracklists)
}

func (s *WebsiteSearcher) Search(ctx context.Context, query string) ([]SearchResult, error) {
	runID := uuid.NewString()
	slog.Info("Searching for tracklists", "site", s.website, "query", query, "run", runID)

	// Scope the query to the website
	siteQuery := query + " site:" + s.website

	results, err := s.searchClient.Search(ctx, siteQuery, s.source)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %v", err)
	}

	// Store the results for later use
	s.mu.Lock()
	s.results = results
	s.mu.Unlock()

	var searchResults []SearchResult
	for i, result := range results {
		searchResults = append(searchResults, SearchResult{
			ID:     fmt.Sprintf("%s_%d", s.source, i),
			Title:  result.Title,
			URL:    result.Link,
			Source: s.source,
		})
	}

	slog.Info("Tracklist search finished", "run", runID, "results", len(searchResults))
	return searchResults, nil
}

func (s *WebsiteSearcher) GetTracklist(ctx context.Context, resultID string) (*domain.Tracklist, error) {
	// The resultID is in the format "source_X" where X is a numeric index
	// into the last search's results
	var index int
	if _, err := fmt.Sscanf(resultID, s.source+"_%d", &index); err != nil {
		return nil, fmt.Errorf("invalid result ID: %v", err)
	}

	s.mu.RLock()
	results := s.results
	s.mu.RUnlock()

	if index < 0 || index >= len(results) {
		return nil, fmt.Errorf("result not found")
	}

	return s.importer.Import(ctx, results[index].Link)
}
