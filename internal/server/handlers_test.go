package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaki95/whats-this-id/internal/domain"
	"github.com/jaki95/whats-this-id/internal/soundcloud"
	"github.com/jaki95/whats-this-id/internal/tracklist"
)

func TestSearch(t *testing.T) {
	server, deps := newTestServer(t)
	deps.searcher.results = []tracklist.SearchResult{
		{ID: "1001tracklists_0", Title: "Amelie Lens @ Awakenings 2023", URL: "https://www.1001tracklists.com/x", Source: "1001tracklists"},
	}
	deps.finder.results = []soundcloud.Result{
		{Title: "Awakenings 2023", Artist: "Amelie Lens", URL: "https://soundcloud.com/x"},
	}

	w := performRequest(server, http.MethodPost, "/api/search", strings.NewReader(`{"query":"amelie lens awakenings"}`))

	require.Equal(t, http.StatusOK, w.Code)

	var response SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "amelie lens awakenings", response.Query)
	require.Len(t, response.Tracklists, 1)
	assert.Equal(t, "1001tracklists_0", response.Tracklists[0].ID)
	require.Len(t, response.Audio, 1)
	assert.Equal(t, "https://soundcloud.com/x", response.Audio[0].URL)
}

func TestSearchMissingQuery(t *testing.T) {
	server, _ := newTestServer(t)

	w := performRequest(server, http.MethodPost, "/api/search", strings.NewReader(`{}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchAudioFailureStillReturnsTracklists(t *testing.T) {
	server, deps := newTestServer(t)
	deps.searcher.results = []tracklist.SearchResult{
		{ID: "1001tracklists_0", Title: "Set", URL: "https://www.1001tracklists.com/x", Source: "1001tracklists"},
	}
	deps.finder.err = errors.New("no SoundCloud results found")

	w := performRequest(server, http.MethodPost, "/api/search", strings.NewReader(`{"query":"obscure set"}`))

	require.Equal(t, http.StatusOK, w.Code)

	var response SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Tracklists, 1)
	assert.Empty(t, response.Audio)
}

func TestSearchBothSidesFail(t *testing.T) {
	server, deps := newTestServer(t)
	deps.searcher.err = errors.New("quota exceeded")
	deps.finder.err = errors.New("no SoundCloud results found")

	w := performRequest(server, http.MethodPost, "/api/search", strings.NewReader(`{"query":"anything"}`))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "quota exceeded")
}

func TestImportTracklistFromURL(t *testing.T) {
	server, deps := newTestServer(t)
	deps.importer.tracklist = &domain.Tracklist{
		Name:   "Test Mix",
		Artist: "Test Artist",
		Tracks: []*domain.Track{
			{Name: "Track 1", StartTime: "00:00:00", TrackNumber: 1},
		},
	}

	w := performRequest(server, http.MethodPost, "/api/tracklists/import",
		strings.NewReader(`{"url":"https://www.1001tracklists.com/tracklist/abc"}`))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://www.1001tracklists.com/tracklist/abc", deps.importer.lastSource)

	var imported domain.Tracklist
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &imported))
	assert.Equal(t, "Test Mix", imported.Name)
	require.Len(t, imported.Tracks, 1)
}

func TestImportTracklistFromText(t *testing.T) {
	server, deps := newTestServer(t)
	deps.importer.tracklist = &domain.Tracklist{Name: "Pasted", Artist: "A"}

	pasted := "00:00:00 Artist - Track One\n01:02:03 Artist - Track Two"
	body, err := json.Marshal(ImportRequest{Text: pasted})
	require.NoError(t, err)

	w := performRequest(server, http.MethodPost, "/api/tracklists/import", strings.NewReader(string(body)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pasted, deps.importer.lastSource)
}

func TestImportTracklistMissingSource(t *testing.T) {
	server, _ := newTestServer(t)

	w := performRequest(server, http.MethodPost, "/api/tracklists/import", strings.NewReader(`{"url":"  "}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "either url or text is required")
}

func TestImportTracklistFailure(t *testing.T) {
	server, deps := newTestServer(t)
	deps.importer.err = errors.New("all importers failed")

	w := performRequest(server, http.MethodPost, "/api/tracklists/import",
		strings.NewReader(`{"text":"not a tracklist"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "failed to import tracklist")
}
