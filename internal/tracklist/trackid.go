package tracklist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jaki95/whats-this-id/internal/domain"
)

const (
	trackIDAPIBase    = "https://trackid.net:8001/api/public/audiostreams"
	trackIDPublicBase = "https://trackid.net/audiostreams"
)

// TrackIDImporter imports tracklists from trackid.net, which publishes
// audio-fingerprint detections for recorded streams. It also implements
// Searcher so the frontend can list candidate streams before importing one.
type TrackIDImporter struct {
	baseURL    string
	searchURL  string
	httpClient *http.Client

	// Streams from the last search, for GetTracklist lookups.
	mu      sync.RWMutex
	streams []trackIDStream
}

func NewTrackIDImporter() *TrackIDImporter {
	return &TrackIDImporter{
		baseURL:    trackIDAPIBase + "/",
		searchURL:  trackIDAPIBase,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *TrackIDImporter) Name() string {
	return SourceTrackIDNet
}

type trackIDResponse struct {
	Result struct {
		Title     string `json:"title"`
		Duration  string `json:"duration"`
		Processes []struct {
			Tracks []trackIDTrack `json:"detectionProcessMusicTracks"`
		} `json:"detectionProcesses"`
	} `json:"result"`
}

type trackIDTrack struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Artist    string `json:"artist"`
	Title     string `json:"title"`
}

type trackIDSearchResponse struct {
	Result struct {
		Audiostreams []trackIDStream `json:"audiostreams"`
		RowCount     int             `json:"rowCount"`
	} `json:"result"`
}

type trackIDStream struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// Import fetches the detections for a trackid.net stream. The source can be
// a trackid.net URL, a stream slug, or free-text keywords to search for.
func (t *TrackIDImporter) Import(ctx context.Context, source string) (*domain.Tracklist, error) {
	slug, ok := slugFromSource(source)
	if !ok {
		var err error
		slug, err = t.findSlug(ctx, source)
		if err != nil {
			return nil, err
		}
	}

	resp, err := t.fetchTrackData(ctx, slug)
	if err != nil {
		return nil, err
	}

	tracklist, err := t.parseTracklist(resp)
	if err != nil {
		return nil, err
	}

	if len(tracklist.Tracks) == 0 {
		return nil, fmt.Errorf("no tracks found in TrackID response")
	}

	return tracklist, nil
}

// Search lists audiostreams matching the query.
func (t *TrackIDImporter) Search(ctx context.Context, query string) ([]SearchResult, error) {
	runID := uuid.NewString()
	slog.Info("Searching trackid.net", "query", query, "run", runID)

	searchResp, err := t.search(ctx, query)
	if err != nil {
		return nil, err
	}

	streams := searchResp.Result.Audiostreams
	t.mu.Lock()
	t.streams = streams
	t.mu.Unlock()

	results := make([]SearchResult, 0, len(streams))
	for i, stream := range streams {
		results = append(results, SearchResult{
			ID:     fmt.Sprintf("%s_%d", SourceTrackIDNet, i),
			Title:  stream.Title,
			URL:    trackIDPublicBase + "/" + stream.Slug,
			Source: SourceTrackIDNet,
		})
	}

	slog.Info("trackid.net search finished", "run", runID, "results", len(results))
	return results, nil
}

// GetTracklist imports the stream behind a result returned by Search.
func (t *TrackIDImporter) GetTracklist(ctx context.Context, resultID string) (*domain.Tracklist, error) {
	var index int
	if _, err := fmt.Sscanf(resultID, SourceTrackIDNet+"_%d", &index); err != nil {
		return nil, fmt.Errorf("invalid result ID: %v", err)
	}

	t.mu.RLock()
	streams := t.streams
	t.mu.RUnlock()

	if index < 0 || index >= len(streams) {
		return nil, fmt.Errorf("result not found")
	}

	return t.Import(ctx, streams[index].Slug)
}

func (t *TrackIDImporter) search(ctx context.Context, keywords string) (*trackIDSearchResponse, error) {
	params := url.Values{}
	params.Add("keywords", keywords)
	params.Add("pageSize", "20")
	params.Add("currentPage", "0")
	params.Add("status", "3")

	reqURL := t.searchURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}

	setTrackIDHeaders(req)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch search results: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response body: %w", err)
	}

	var searchResp trackIDSearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal search JSON: %w", err)
	}

	return &searchResp, nil
}

func (t *TrackIDImporter) findSlug(ctx context.Context, keywords string) (string, error) {
	searchResp, err := t.search(ctx, keywords)
	if err != nil {
		return "", err
	}

	if searchResp.Result.RowCount == 0 || len(searchResp.Result.Audiostreams) == 0 {
		return "", fmt.Errorf("no matching audiostreams found for keywords: %s", keywords)
	}

	slug := searchResp.Result.Audiostreams[0].Slug
	slog.Debug("Found audiostream",
		"keywords", keywords,
		"slug", slug,
		"title", searchResp.Result.Audiostreams[0].Title)

	return slug, nil
}

func (t *TrackIDImporter) fetchTrackData(ctx context.Context, slug string) (*trackIDResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", t.baseURL+slug, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	setTrackIDHeaders(req)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch track data: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var trackResp trackIDResponse
	if err := json.Unmarshal(body, &trackResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	slog.Debug("TrackID response received",
		"title", trackResp.Result.Title,
		"duration", trackResp.Result.Duration)

	return &trackResp, nil
}

func setTrackIDHeaders(req *http.Request) {
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Sec-Fetch-Site", "same-site")
	req.Header.Set("Origin", "https://www.trackid.net")
	req.Header.Set("Sec-Fetch-Dest", "empty")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.3 Safari/605.1.15")
	req.Header.Set("Referer", "https://www.trackid.net/")
	req.Header.Set("Priority", "u=3, i")
}

func (t *TrackIDImporter) parseTracklist(resp *trackIDResponse) (*domain.Tracklist, error) {
	title := resp.Result.Title
	tracklist := &domain.Tracklist{
		Name:   title,
		Artist: inferArtistFromTitle(title),
	}

	totalDuration, err := normalizeCueTime(resp.Result.Duration)
	if err != nil {
		return nil, fmt.Errorf("invalid stream duration: %w", err)
	}

	var allTracks []trackIDTrack
	for _, process := range resp.Result.Processes {
		allTracks = append(allTracks, process.Tracks...)
	}

	trackCounter := 1
	previousEndTime := ""

	for i, track := range allTracks {
		startTime, err := normalizeCueTime(track.StartTime)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i+1, err)
		}
		endTime, err := normalizeCueTime(track.EndTime)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i+1, err)
		}

		if i == 0 {
			handleLeadingGap(tracklist, startTime, &trackCounter)
		} else {
			handleTrackGap(tracklist, previousEndTime, startTime, &trackCounter)
		}

		addTrack(tracklist, track.Artist, track.Title, startTime, endTime, trackCounter)
		trackCounter++
		previousEndTime = endTime
	}

	if err := handleFinalGap(tracklist, previousEndTime, totalDuration, &trackCounter); err != nil {
		return nil, err
	}

	return tracklist, nil
}

// slugFromSource extracts the stream slug when the source is a trackid.net
// URL.
func slugFromSource(source string) (string, bool) {
	source = strings.TrimSpace(source)
	if !strings.Contains(source, "trackid.net") {
		return "", false
	}

	u, err := url.Parse(source)
	if err != nil {
		return "", false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) == 0 {
		return "", false
	}

	slug := segments[len(segments)-1]
	if slug == "" || slug == "audiostreams" {
		return "", false
	}
	return slug, true
}

// inferArtistFromTitle attempts to extract the artist name from a DJ set title
// based on common patterns like "Artist - Title", "Artist @ Venue", etc.
func inferArtistFromTitle(title string) string {
	// Common separators in DJ set titles
	separators := []struct {
		pattern string
		regex   *regexp.Regexp
	}{
		// Artist - Title
		{"-", regexp.MustCompile(`^([^-]+)\s*-\s*.+`)},
		// Artist @ Venue/Event
		{"@", regexp.MustCompile(`^([^@]+)\s*@\s*.+`)},
		// Artist | Event/Show
		{"|", regexp.MustCompile(`^([^|]+)\s*\|\s*.+`)},
		// Artist presents Title
		{"presents", regexp.MustCompile(`^([^\s]+(?:\s+[^\s]+)?)\s+presents\s+.+`)},
		// Artist live at Venue
		{"live at", regexp.MustCompile(`^([^(]+?)\s+live\s+at\s+.+`)},
	}

	for _, sep := range separators {
		matches := sep.regex.FindStringSubmatch(title)
		if len(matches) > 1 {
			return strings.TrimSpace(matches[1])
		}
	}

	// Special format for series like "Drumcode Radio Live" -> "Drumcode Radio"
	// and "Anjunadeep Edition Episode 400" -> "Anjunadeep Edition"
	seriesPatterns := []struct {
		regex     *regexp.Regexp
		maxGroups int // How many words to consider as the artist name
	}{
		{regexp.MustCompile(`^((?:[A-Z][a-z]*\s*)+)(?:Live|Episode|Podcast|Radio Show|Mix|Set)\b`), 2},
	}

	for _, pattern := range seriesPatterns {
		matches := pattern.regex.FindStringSubmatch(title)
		if len(matches) > 1 {
			words := strings.Fields(matches[1])
			if len(words) > pattern.maxGroups {
				words = words[:pattern.maxGroups]
			}
			return strings.Join(words, " ")
		}
	}

	// If no patterns match, check if there's any whitespace - take first part
	// This is less reliable but can work for cases like "Artist Title"
	parts := strings.Fields(title)
	if len(parts) > 1 {
		// Skip articles and common non-artist words
		skipArtistWords := map[string]bool{
			"The": true, "A": true, "An": true,
			"By": true, "With": true, "And": true,
			"From": true, "Of": true, "In": true,
			"On": true, "At": true, "To": true,
		}

		// If first word is a skip word, don't attempt this heuristic
		if len(parts) > 0 && skipArtistWords[parts[0]] {
			return ""
		}

		// If first 2-3 words are capitalized, they likely represent an artist name
		// This is a heuristic and not always accurate
		nameCandidate := ""
		wordCount := min(3, len(parts))

		for i := 0; i < wordCount; i++ {
			// Check if word starts with uppercase (likely part of a name)
			word := parts[i]
			if len(word) > 0 && word[0] >= 'A' && word[0] <= 'Z' && !skipArtistWords[word] {
				if nameCandidate != "" {
					nameCandidate += " "
				}
				nameCandidate += word
			} else if nameCandidate != "" {
				// Stop if we've already found some name parts and hit a non-matching word
				break
			}
		}

		if nameCandidate != "" {
			return nameCandidate
		}
	}

	return "" // No pattern matched
}
