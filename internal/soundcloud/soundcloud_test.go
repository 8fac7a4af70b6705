package soundcloud

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaki95/whats-this-id/internal/google"
)

func TestSearch(t *testing.T) {
	mockClient := &google.MockGoogleClient{
		SearchFunc: func(ctx context.Context, query string, site string) ([]google.SearchResult, error) {
			assert.Equal(t, "site:soundcloud.com boris brejcha tomorrowland 2023", query)
			assert.Equal(t, "soundcloud", site)
			return []google.SearchResult{
				{Title: "Boris Brejcha - Tomorrowland 2023 | Free Download", Link: "https://soundcloud.com/borisbrejcha/tomorrowland-2023"},
				{Title: "Unrelated", Link: "https://example.com/nothing"},
				{Title: "Tomorrowland 2023 Full Set", Link: "https://soundcloud.com/festival-recordings/tml-2023"},
			}, nil
		},
	}

	finder := NewFinder(mockClient)
	results, err := finder.Search(context.Background(), "boris brejcha tomorrowland 2023")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Tomorrowland 2023", results[0].Title)
	assert.Equal(t, "Boris Brejcha", results[0].Artist)
	assert.Equal(t, "https://soundcloud.com/borisbrejcha/tomorrowland-2023", results[0].URL)

	assert.Equal(t, "Tomorrowland 2023 Full Set", results[1].Title)
	assert.Empty(t, results[1].Artist)
}

func TestSearch_NoResults(t *testing.T) {
	mockClient := &google.MockGoogleClient{
		SearchFunc: func(ctx context.Context, query string, site string) ([]google.SearchResult, error) {
			return []google.SearchResult{{Title: "Other", Link: "https://example.com"}}, nil
		},
	}

	finder := NewFinder(mockClient)
	_, err := finder.Search(context.Background(), "obscure set")
	assert.ErrorContains(t, err, "no SoundCloud results")
}

func TestSearch_GoogleError(t *testing.T) {
	mockClient := &google.MockGoogleClient{
		SearchFunc: func(ctx context.Context, query string, site string) ([]google.SearchResult, error) {
			return nil, fmt.Errorf("quota exceeded")
		},
	}

	finder := NewFinder(mockClient)
	_, err := finder.Search(context.Background(), "any")
	assert.ErrorContains(t, err, "failed to search")
}

func TestFindURL(t *testing.T) {
	mockClient := &google.MockGoogleClient{
		SearchFunc: func(ctx context.Context, query string, site string) ([]google.SearchResult, error) {
			return []google.SearchResult{
				{Title: "Artist - Set", Link: "https://soundcloud.com/artist/set"},
			}, nil
		},
	}

	finder := NewFinder(mockClient)
	url, err := finder.FindURL(context.Background(), "artist set")
	require.NoError(t, err)
	assert.Equal(t, "https://soundcloud.com/artist/set", url)
}

func TestExtractTrackInfo(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantTitle  string
		wantArtist string
	}{
		{
			name:       "hyphen separator",
			input:      "Charlotte de Witte - KNTXT Radio 100",
			wantTitle:  "KNTXT Radio 100",
			wantArtist: "Charlotte de Witte",
		},
		{
			name:       "by separator",
			input:      "Essential Mix by Four Tet",
			wantTitle:  "Four Tet",
			wantArtist: "Essential Mix",
		},
		{
			name:       "strips stream suffix",
			input:      "Amelie Lens - Exhale 050 | Stream",
			wantTitle:  "Exhale 050",
			wantArtist: "Amelie Lens",
		},
		{
			name:       "no separator",
			input:      "Warehouse Project Closing Set",
			wantTitle:  "Warehouse Project Closing Set",
			wantArtist: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, artist := extractTrackInfo(tt.input)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantArtist, artist)
		})
	}
}
