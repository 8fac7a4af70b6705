package tracklist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"

	"github.com/jaki95/whats-this-id/internal/domain"
	"github.com/jaki95/whats-this-id/internal/google"
)

const tracklists1001BaseURL = "https://www.1001tracklists.com"

type tracklists1001Importer struct {
	searchClient google.Client
	cookieSource CookieSource
	siteURL      string
	cacheDir     string
	cacheTTL     time.Duration
	maxRetries   int
	baseDelay    time.Duration
	userAgents   []string
	cookieFile   string
	proxyURLs    []string
}

// New1001TracklistsImporter imports tracklists scraped from 1001tracklists.
// The search client resolves free-text queries to tracklist URLs and may be
// nil if only direct URLs are used. The cookie source carries the browser
// session that gets the scraper past the site's bot checks; it may be nil.
// A non-positive cacheTTL selects the 24 hour default.
func New1001TracklistsImporter(searchClient google.Client, cookieSource CookieSource, cacheDir string, cacheTTL time.Duration) *tracklists1001Importer {
	if cacheDir == "" {
		cacheDir = defaultCacheDir()
	}
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}

	return &tracklists1001Importer{
		searchClient: searchClient,
		cookieSource: cookieSource,
		siteURL:      tracklists1001BaseURL,
		cacheDir:     cacheDir,
		cacheTTL:     cacheTTL,
		maxRetries:   4,
		baseDelay:    2 * time.Second,
		userAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
		},
		cookieFile: filepath.Join(cacheDir, "cookies.json"),
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "whats-this-id", "tracklists")
	}
	return filepath.Join(os.TempDir(), "whats-this-id", "tracklists")
}

func (t *tracklists1001Importer) Name() string {
	return Source1001Tracklists
}

func (t *tracklists1001Importer) Import(ctx context.Context, source string) (*domain.Tracklist, error) {
	pageURL, err := t.resolveURL(ctx, source)
	if err != nil {
		return nil, err
	}

	cacheFile := filepath.Join(t.cacheDir, SanitizeFilename(pageURL)+".json")

	if err := os.MkdirAll(t.cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	if cachedTracklist, err := t.loadFromCache(cacheFile); err == nil {
		slog.Debug("Using cached tracklist data", "url", pageURL)
		return cachedTracklist, nil
	}

	tracklist, err := t.scrapeWithColly(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("scraping failed: %w", err)
	}

	if len(tracklist.Tracks) == 0 {
		return nil, fmt.Errorf("no tracks found in tracklist")
	}

	if err := t.saveToCache(cacheFile, tracklist); err != nil {
		slog.Warn("Failed to cache tracklist", "error", err)
	}

	return tracklist, nil
}

// resolveURL turns the source into a 1001tracklists page URL, searching the
// web when the source is a free-text query.
func (t *tracklists1001Importer) resolveURL(ctx context.Context, source string) (string, error) {
	source = strings.TrimSpace(source)
	if strings.Contains(source, "1001tracklists.com") {
		return source, nil
	}
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return "", fmt.Errorf("not a 1001tracklists URL: %s", source)
	}
	if strings.ContainsAny(source, "\n") {
		return "", fmt.Errorf("source is not a URL or search query")
	}

	if t.searchClient == nil {
		return "", fmt.Errorf("no search client configured for query: %s", source)
	}

	results, err := t.searchClient.Search(ctx, "site:1001tracklists.com "+source, "1001tracklists")
	if err != nil {
		return "", fmt.Errorf("failed to search for tracklist: %w", err)
	}
	if len(results) == 0 {
		return "", fmt.Errorf("no tracklist found for query: %s", source)
	}

	// Prefer results that look like tracklist pages
	for _, result := range results {
		if strings.Contains(strings.ToLower(result.Title), "tracklist") {
			slog.Debug("Found tracklist URL", "url", result.Link, "title", result.Title)
			return result.Link, nil
		}
	}

	slog.Debug("Using first search result as tracklist URL", "url", results[0].Link)
	return results[0].Link, nil
}

func (t *tracklists1001Importer) scrapeWithColly(ctx context.Context, pageURL string) (*domain.Tracklist, error) {
	var tracklist domain.Tracklist
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.MaxDepth(1),
		colly.UserAgent(t.userAgents[rand.Intn(len(t.userAgents))]),
	)

	c.SetRequestTimeout(30 * time.Second)

	if err := t.loadCookies(ctx, c); err != nil {
		slog.Warn("Failed to load cookies", "error", err)
	}

	if len(t.proxyURLs) > 0 {
		randProxy := t.proxyURLs[rand.Intn(len(t.proxyURLs))]
		c.WithTransport(&http.Transport{
			Proxy: http.ProxyURL(mustParseURL(randProxy)),
		})
	}

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
		r.Headers.Set("Connection", "keep-alive")
		r.Headers.Set("Upgrade-Insecure-Requests", "1")
		r.Headers.Set("Referer", tracklists1001BaseURL+"/")
		r.Headers.Set("Cache-Control", "max-age=0")
	})

	c.OnResponse(func(r *colly.Response) {
		bodyText := strings.ToLower(string(r.Body))
		if strings.Contains(bodyText, "captcha") ||
			strings.Contains(bodyText, "security check") ||
			strings.Contains(bodyText, "verify you are human") {
			slog.Warn("Bot check detected; the saved browser session may be stale",
				"url", pageURL,
				"hint", "run refresh-cookies and retry")
		}

		// Persist cookies for the next scrape
		if err := t.saveCookies(c); err != nil {
			slog.Warn("Failed to save cookies", "error", err)
		}
	})

	c.OnHTML("form", func(e *colly.HTMLElement) {
		if e.DOM.Find("input[name*='captcha']").Length() > 0 ||
			e.DOM.Find("input[id*='captcha']").Length() > 0 {
			slog.Warn("CAPTCHA form detected; solve it in a real browser session",
				"hint", "run refresh-cookies and retry")
		}
	})

	trackCounter := 1
	c.OnHTML("div.tlpTog", func(e *colly.HTMLElement) {
		startTime := strings.TrimSpace(e.ChildText("div.cue.noWrap.action.mt5"))
		if startTime == "" {
			startTime = "00:00"
		}
		normalized, err := normalizeCueTime(startTime)
		if err != nil {
			slog.Warn("Skipping track with invalid cue", "cue", startTime)
			return
		}

		trackValue := strings.TrimSpace(e.ChildText("span.trackValue"))
		artist, name := parseTrackValue(trackValue)

		track := &domain.Track{
			Artist:      artist,
			Name:        name,
			StartTime:   normalized,
			EndTime:     "",
			TrackNumber: trackCounter,
		}

		if trackCounter > 1 && len(tracklist.Tracks) > 0 {
			tracklist.Tracks[len(tracklist.Tracks)-1].EndTime = normalized
		}

		tracklist.Tracks = append(tracklist.Tracks, track)
		trackCounter++
	})

	c.OnHTML("div#pageTitle h1", func(e *colly.HTMLElement) {
		fullText := strings.TrimSpace(e.Text)
		var artists []string
		e.DOM.Find("a[href*='/dj/']").Each(func(_ int, s *goquery.Selection) {
			artists = append(artists, strings.TrimSpace(s.Text()))
		})

		setName := extractSetName(fullText)
		tracklist.Artist = strings.Join(artists, " & ")
		tracklist.Name = setName
		slog.Info("Extracted metadata", "artists", tracklist.Artist, "setName", setName)
	})

	c.OnHTML("noscript", func(e *colly.HTMLElement) {
		if strings.Contains(e.Text, "Please enable JavaScript") {
			slog.Warn("Website requires JavaScript to be enabled")
		}
	})

	slog.Info("Fetching tracklist data", "url", pageURL)
	if err := t.visitWithRetries(ctx, c, pageURL); err != nil {
		return nil, err
	}

	if len(tracklist.Tracks) == 0 && (tracklist.Artist == "" || tracklist.Name == "") {
		slog.Warn("Possibly blocked by anti-scraping measures", "trackCount", len(tracklist.Tracks))
	} else {
		if len(tracklist.Tracks) > 0 {
			tracklist.Tracks[len(tracklist.Tracks)-1].EndTime = ""
		}
		slog.Info("Successfully scraped tracklist", "trackCount", len(tracklist.Tracks))
	}

	return &tracklist, nil
}

// loadCookies primes the collector with the browser profile's session
// cookies, falling back to cookies saved from a previous scrape.
func (t *tracklists1001Importer) loadCookies(ctx context.Context, c *colly.Collector) error {
	if t.cookieSource != nil {
		cookies, err := t.cookieSource.Cookies(ctx, "1001tracklists.com")
		if err != nil {
			slog.Warn("Failed to read profile cookies", "error", err)
		} else if len(cookies) > 0 {
			if err := c.SetCookies(t.siteURL, cookies); err != nil {
				return err
			}
			slog.Info("Loaded profile cookies", "count", len(cookies))
			return nil
		}
	}

	if _, err := os.Stat(t.cookieFile); os.IsNotExist(err) {
		return nil
	}

	file, err := os.Open(t.cookieFile)
	if err != nil {
		return err
	}
	defer file.Close()

	var cookies []*http.Cookie
	if err := json.NewDecoder(file).Decode(&cookies); err != nil {
		return err
	}

	// Filter out expired cookies
	var validCookies []*http.Cookie
	now := time.Now()
	for _, cookie := range cookies {
		if cookie.Expires.IsZero() || cookie.Expires.After(now) {
			validCookies = append(validCookies, cookie)
		}
	}

	if err := c.SetCookies(t.siteURL, validCookies); err != nil {
		slog.Warn("Failed to set cookies", "error", err)
	}
	slog.Info("Loaded cookies", "count", len(validCookies), "file", t.cookieFile)
	return nil
}

func (t *tracklists1001Importer) saveCookies(c *colly.Collector) error {
	cookies := c.Cookies(t.siteURL)
	if len(cookies) == 0 {
		return nil
	}

	jsonBytes, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(t.cookieFile, jsonBytes, 0644); err != nil {
		return err
	}
	slog.Debug("Saved cookies", "count", len(cookies), "file", t.cookieFile)
	return nil
}

func (t *tracklists1001Importer) visitWithRetries(ctx context.Context, c *colly.Collector, pageURL string) error {
	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if attempt > 0 {
			delay := t.baseDelay * time.Duration(1<<uint(attempt))
			jitter := time.Duration(rand.Int63n(3000)) * time.Millisecond
			totalDelay := delay + jitter
			slog.Info("Retrying request", "attempt", attempt+1, "delay", totalDelay.String(), "url", pageURL)

			select {
			case <-time.After(totalDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = c.Visit(pageURL)
		if lastErr == nil {
			return nil
		}
		slog.Warn("Request failed", "attempt", attempt+1, "error", lastErr)
	}
	return fmt.Errorf("failed after %d attempts: %w", t.maxRetries+1, lastErr)
}

func (t *tracklists1001Importer) loadFromCache(filePath string) (*domain.Tracklist, error) {
	info, err := os.Stat(filePath)
	if err != nil || time.Since(info.ModTime()) > t.cacheTTL {
		return nil, fmt.Errorf("cache miss or expired")
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var tracklist domain.Tracklist
	if err := json.NewDecoder(file).Decode(&tracklist); err != nil {
		return nil, err
	}
	return &tracklist, nil
}

func (t *tracklists1001Importer) saveToCache(filePath string, tracklist *domain.Tracklist) error {
	jsonBytes, err := json.MarshalIndent(tracklist, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, jsonBytes, 0644)
}

func extractSetName(fullText string) string {
	// Try first with standard format
	re := regexp.MustCompile(`[@-] (.+?)( \d{4}|$)`)
	matches := re.FindStringSubmatch(fullText)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	// Fallback to simple split
	parts := strings.SplitN(fullText, " - ", 2)
	if len(parts) > 1 {
		return strings.TrimSpace(parts[1])
	}

	// Last resort
	return strings.TrimSpace(fullText)
}

func mustParseURL(rawurl string) *url.URL {
	u, err := url.Parse(rawurl)
	if err != nil {
		panic(err)
	}
	return u
}
