package tracklist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jaki95/whats-this-id/internal/domain"
)

// TextImporter parses tracklists pasted as plain text, the kind copied out
// of a site, a YouTube description or a forum post. Lines can carry track
// numbers and cue times in most common shapes; page furniture is stripped.
type TextImporter struct {
}

func NewTextImporter() *TextImporter {
	return &TextImporter{}
}

func (t *TextImporter) Name() string {
	return SourceText
}

func (t *TextImporter) Import(ctx context.Context, source string) (*domain.Tracklist, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return nil, fmt.Errorf("empty text")
	}
	if !strings.Contains(trimmed, "\n") && !strings.Contains(trimmed, " - ") {
		return nil, fmt.Errorf("source does not look like a pasted tracklist")
	}

	totalDuration := extractTotalDuration(trimmed)

	tracklist := &domain.Tracklist{}
	headerSeen := false

	for _, rawLine := range strings.Split(trimmed, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || isNoiseLine(line) {
			continue
		}

		cue := extractCue(line)
		cleaned := cleanTrackText(line)
		if cleaned == "" {
			continue
		}

		if !strings.Contains(cleaned, " - ") {
			// The first plain line before any tracks is the set title
			if !headerSeen && len(tracklist.Tracks) == 0 && cue == "" {
				tracklist.Name = cleaned
				tracklist.Artist = inferArtistFromTitle(cleaned)
				headerSeen = true
				slog.Debug("Found title line", "name", tracklist.Name, "artist", tracklist.Artist)
			}
			continue
		}

		startTime := ""
		if cue != "" {
			normalized, err := normalizeCueTime(cue)
			if err != nil {
				slog.Warn("Ignoring unparseable cue", "cue", cue, "line", line)
			} else {
				startTime = normalized
			}
		}

		artist, name := parseTrackValue(cleaned)
		addTrack(tracklist, artist, name, startTime, "", len(tracklist.Tracks)+1)
	}

	if len(tracklist.Tracks) == 0 {
		return nil, fmt.Errorf("no tracks found in text")
	}

	applyTimingRules(tracklist.Tracks, totalDuration)

	// The backend cannot split what it cannot place on the timeline.
	for i, track := range tracklist.Tracks {
		if track.StartTime == "" {
			return nil, fmt.Errorf("track %d (%s) has no start time", i+1, track.Name)
		}
	}

	slog.Info("Parsed text tracklist",
		"name", tracklist.Name,
		"tracks", len(tracklist.Tracks),
		"totalDuration", totalDuration)

	return tracklist, nil
}
