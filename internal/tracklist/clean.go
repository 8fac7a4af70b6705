package tracklist

import (
	"regexp"
	"strings"
)

// Pasted tracklists carry site furniture around the track names: catalogue
// numbers, edit markers, "Save" widgets, cue prefixes. These run in order
// against each line. Bracketed remix and mix info is deliberately left
// alone.
var trackCleanupPatterns = []*regexp.Regexp{
	// label name and catalogue numbers trailing the title
	regexp.MustCompile(`\s+[A-Z\s]{4,}\s+\d+.*$`),
	// edit info such as "EDIT [extended mix]"
	regexp.MustCompile(`\s+[A-Z]+\s+\[.*?\].*$`),
	// user actions such as "3 people Save"
	regexp.MustCompile(`\s+\d+\s+[a-zA-Z0-9()\s]+\s+Save.*$`),
}

var (
	trackNumberTimeRe = regexp.MustCompile(`^\s*(\d+)[.)]?\s+(\d+:\d+(?::\d+)?)\s+`)
	trackNumberRe     = regexp.MustCompile(`^\s*(\d+)[.)]?\s+`)
	timestampPrefixRe = regexp.MustCompile(`^\s*\[?(\d+:\d+(?::\d+)?)\]?\s*`)
	trailingCueRe     = regexp.MustCompile(`\s\[?(\d+:\d+(?::\d+)?)\]?\s*$`)
)

// Lines containing these are page furniture, not tracks.
var skipWords = []string{"copyright", "rights", "reserved", "tracklist", "playlist"}

// cleanTrackText strips cue prefixes and trailing site furniture from a
// pasted track line.
func cleanTrackText(line string) string {
	cleaned := trackNumberTimeRe.ReplaceAllString(line, "")
	cleaned = trackNumberRe.ReplaceAllString(cleaned, "")
	cleaned = timestampPrefixRe.ReplaceAllString(cleaned, "")
	for _, pattern := range trackCleanupPatterns {
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}
	cleaned = trailingCueRe.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// extractCue pulls the cue time out of a pasted track line, wherever the
// source put it: after a track number, as a prefix, or trailing.
func extractCue(line string) string {
	if m := trackNumberTimeRe.FindStringSubmatch(line); len(m) > 2 {
		return m[2]
	}
	unnumbered := trackNumberRe.ReplaceAllString(line, "")
	if m := timestampPrefixRe.FindStringSubmatch(unnumbered); len(m) > 1 {
		return m[1]
	}
	if m := trailingCueRe.FindStringSubmatch(line); len(m) > 1 {
		return m[1]
	}
	return ""
}

// isNoiseLine reports whether a pasted line is page furniture rather than a
// track entry.
func isNoiseLine(line string) bool {
	lower := strings.ToLower(line)
	for _, word := range skipWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// parseTrackValue splits "Artist - Title" formatted text.
func parseTrackValue(trackValue string) (artist, title string) {
	parts := strings.SplitN(trackValue, " - ", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return "Unknown Artist", strings.TrimSpace(trackValue)
}

// SanitizeFilename removes or replaces unsafe characters from filenames
func SanitizeFilename(filename string) string {
	// Define a regex to match unsafe characters (anything except letters, numbers, underscore, and dot)
	re := regexp.MustCompile(`[^\w\.-]`)

	// Replace unsafe characters with an underscore
	safeName := re.ReplaceAllString(filename, "_")

	// Trim multiple underscores and ensure a clean format
	safeName = strings.Trim(safeName, "_")
	safeName = strings.ReplaceAll(safeName, "__", "_") // Avoid double underscores

	return safeName
}
