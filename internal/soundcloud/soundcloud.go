package soundcloud

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jaki95/whats-this-id/internal/google"
)

// Result is a candidate audio source for a set.
type Result struct {
	Title  string `json:"title"`
	Artist string `json:"artist,omitempty"`
	URL    string `json:"url"`
}

// Finder locates SoundCloud uploads of a set through site-scoped web search.
type Finder struct {
	googleClient google.Client
}

func NewFinder(googleClient google.Client) *Finder {
	return &Finder{googleClient: googleClient}
}

// Search returns every SoundCloud hit for the query, best match first.
func (f *Finder) Search(ctx context.Context, query string) ([]Result, error) {
	slog.Info("Searching SoundCloud", "query", query)

	// Create a more specific search query for SoundCloud
	soundcloudQuery := fmt.Sprintf("site:soundcloud.com %s", query)

	// Search using Google with site-specific search engine
	searchResults, err := f.googleClient.Search(ctx, soundcloudQuery, "soundcloud")
	if err != nil {
		return nil, fmt.Errorf("failed to search for track: %w", err)
	}

	results := make([]Result, 0, len(searchResults))
	for _, sr := range searchResults {
		if !strings.Contains(sr.Link, "soundcloud.com") {
			continue
		}
		title, artist := extractTrackInfo(sr.Title)
		results = append(results, Result{
			Title:  title,
			Artist: artist,
			URL:    sr.Link,
		})
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("no SoundCloud results found for query: %s", query)
	}

	return results, nil
}

// FindURL returns the first SoundCloud URL matching the query.
func (f *Finder) FindURL(ctx context.Context, query string) (string, error) {
	results, err := f.Search(ctx, query)
	if err != nil {
		return "", err
	}

	slog.Debug("Found SoundCloud URL", "url", results[0].URL)
	return results[0].URL, nil
}

func extractTrackInfo(title string) (string, string) {
	// Try to split on common separators
	separators := []string{" - ", " – ", " — ", " by ", " · "}
	for _, sep := range separators {
		parts := strings.SplitN(title, sep, 2)
		if len(parts) == 2 {
			// Clean up the parts
			artist := strings.TrimSpace(parts[0])
			trackTitle := strings.TrimSpace(parts[1])

			// Remove common suffixes
			trackTitle = strings.TrimSuffix(trackTitle, " | Free Download")
			trackTitle = strings.TrimSuffix(trackTitle, " | Free Stream")
			trackTitle = strings.TrimSuffix(trackTitle, " | Stream")
			trackTitle = strings.TrimSuffix(trackTitle, " | Download")

			return trackTitle, artist
		}
	}

	// If no separator found, return the whole title as the track title
	return title, ""
}
