package google

import "context"

// Client searches the web scoped to a configured site.
type Client interface {
	Search(ctx context.Context, query string, site string) ([]SearchResult, error)
}

// MockGoogleClient is a mock implementation of Client for testing
type MockGoogleClient struct {
	SearchFunc func(ctx context.Context, query string, site string) ([]SearchResult, error)
}

// Search implements the Client interface
func (m *MockGoogleClient) Search(ctx context.Context, query string, site string) ([]SearchResult, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, site)
	}
	return nil, nil
}
