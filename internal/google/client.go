package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

const defaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// SearchResult is a single custom-search hit.
type SearchResult struct {
	Title string
	Link  string
}

// GoogleClient queries the Google Custom Search API. Each supported site is
// backed by its own search engine ID.
type GoogleClient struct {
	apiKey        string
	searchEngines map[string]string // map of site name to search engine ID
	baseURL       string
	httpClient    *http.Client
}

// NewGoogleClient creates a client with explicit credentials.
func NewGoogleClient(apiKey string, searchEngines map[string]string) (*GoogleClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google api key is required")
	}

	// Validate that we have at least one search engine configured
	hasValidEngine := false
	for _, id := range searchEngines {
		if id != "" {
			hasValidEngine = true
			break
		}
	}
	if !hasValidEngine {
		return nil, fmt.Errorf("at least one search engine ID must be configured")
	}

	return &GoogleClient{
		apiKey:        apiKey,
		searchEngines: searchEngines,
		baseURL:       defaultBaseURL,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// NewGoogleClientFromEnv creates a client from the GOOGLE_API_KEY,
// GOOGLE_SEARCH_ID_1001TRACKLISTS and GOOGLE_SEARCH_ID_SOUNDCLOUD variables.
func NewGoogleClientFromEnv() (*GoogleClient, error) {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY environment variable is required")
	}
	searchEngines := map[string]string{
		"1001tracklists": os.Getenv("GOOGLE_SEARCH_ID_1001TRACKLISTS"),
		"soundcloud":     os.Getenv("GOOGLE_SEARCH_ID_SOUNDCLOUD"),
	}
	return NewGoogleClient(apiKey, searchEngines)
}

func (c *GoogleClient) Search(ctx context.Context, query string, site string) ([]SearchResult, error) {
	searchID, ok := c.searchEngines[site]
	if !ok {
		return nil, fmt.Errorf("no search engine configured for site: %s", site)
	}
	if searchID == "" {
		return nil, fmt.Errorf("search engine ID not configured for site: %s", site)
	}

	params := url.Values{}
	params.Add("key", c.apiKey)
	params.Add("cx", searchID)
	params.Add("q", query)

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var result struct {
		Items []struct {
			Title string `json:"title"`
			Link  string `json:"link"`
		} `json:"items"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]SearchResult, len(result.Items))
	for i, item := range result.Items {
		results[i] = SearchResult{
			Title: item.Title,
			Link:  item.Link,
		}
	}

	return results, nil
}
