package tracklist

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jaki95/whats-this-id/internal/domain"
)

// Cue times arrive in whatever shape the source uses ("2:16", "01:02:16",
// "01:02:16.500"). Everything is normalised to HH:MM:SS before it reaches a
// Tracklist.

const (
	// Gaps shorter than this are absorbed into the neighbouring track.
	shortGapSeconds = 60
	// A final gap at or beyond this is treated as corrupt source data.
	maxFinalGapSeconds = 86400

	minSetDuration = 30 * time.Minute
	maxSetDuration = 480 * time.Minute
)

var cueTimeRe = regexp.MustCompile(`^\d{1,3}(?::\d{1,2}){1,2}(?:\.\d+)?$`)

// parseCueTime parses MM:SS or HH:MM:SS, ignoring fractional seconds.
// Parsed times are anchored to year 0 so a successfully parsed "00:00:00"
// is distinguishable from the zero Time returned on failure.
func parseCueTime(timeStr string) time.Time {
	if !cueTimeRe.MatchString(timeStr) {
		return time.Time{}
	}

	parts := strings.Split(timeStr, ".")
	timeParts := strings.Split(parts[0], ":")

	var hours, minutes, seconds int
	switch len(timeParts) {
	case 2:
		minutes, _ = strconv.Atoi(timeParts[0])
		seconds, _ = strconv.Atoi(timeParts[1])
	case 3:
		hours, _ = strconv.Atoi(timeParts[0])
		minutes, _ = strconv.Atoi(timeParts[1])
		seconds, _ = strconv.Atoi(timeParts[2])
	default:
		return time.Time{}
	}

	return time.Date(0, 1, 1, hours, minutes, seconds, 0, time.UTC)
}

// normalizeCueTime converts a cue to HH:MM:SS form. Empty input stays empty.
func normalizeCueTime(timeStr string) (string, error) {
	if timeStr == "" {
		return "", nil
	}
	t := parseCueTime(timeStr)
	if t.IsZero() {
		return "", fmt.Errorf("invalid cue time: %q", timeStr)
	}
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second()), nil
}

func cueSeconds(timeStr string) int {
	t := parseCueTime(timeStr)
	if t.IsZero() {
		return -1
	}
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

func calculateDuration(startTime, endTime string) int {
	start := parseCueTime(startTime)
	end := parseCueTime(endTime)
	if start.IsZero() || end.IsZero() {
		return -1
	}
	return int(end.Sub(start).Seconds())
}

func calculateMidpoint(startTime, endTime string) string {
	start := parseCueTime(startTime)
	end := parseCueTime(endTime)
	duration := end.Sub(start)
	midpoint := start.Add(duration / 2)
	return fmt.Sprintf("%02d:%02d:%02d", midpoint.Hour(), midpoint.Minute(), midpoint.Second())
}

// isValidSetDuration reports whether a duration is plausible for a DJ set.
func isValidSetDuration(seconds int) bool {
	d := time.Duration(seconds) * time.Second
	return d >= minSetDuration && d <= maxSetDuration
}

func addTrack(tracklist *domain.Tracklist, artist, name, startTime, endTime string, trackNumber int) {
	tracklist.Tracks = append(tracklist.Tracks, &domain.Track{
		Artist:      artist,
		Name:        name,
		StartTime:   startTime,
		EndTime:     endTime,
		TrackNumber: trackNumber,
	})
}

func addIDTrack(tracklist *domain.Tracklist, startTime, endTime string, trackNumber int) {
	addTrack(tracklist, "ID", "ID", startTime, endTime, trackNumber)
	slog.Debug("ID track added",
		"start", startTime,
		"end", endTime)
}

// handleLeadingGap inserts an ID track for unidentified audio before the
// first detection.
func handleLeadingGap(tracklist *domain.Tracklist, firstStartTime string, trackCounter *int) {
	if firstStartTime == "00:00:00" {
		return
	}
	addIDTrack(tracklist, "00:00:00", firstStartTime, *trackCounter)
	*trackCounter++
}

// handleTrackGap closes the gap between the previous track's end and the
// next track's start: short gaps extend the previous track to the midpoint,
// longer ones become an ID track.
func handleTrackGap(tracklist *domain.Tracklist, previousEndTime, startTime string, trackCounter *int) {
	if previousEndTime == "" {
		return
	}

	gapDuration := calculateDuration(previousEndTime, startTime)
	slog.Debug("Track gap",
		"previousEnd", previousEndTime,
		"start", startTime,
		"duration", gapDuration)

	if gapDuration <= 0 {
		return
	}

	if gapDuration < shortGapSeconds {
		midpointTime := calculateMidpoint(previousEndTime, startTime)
		slog.Debug("Gap < 60s, setting midpoint", "midpoint", midpointTime)
		tracklist.Tracks[len(tracklist.Tracks)-1].EndTime = midpointTime
	} else {
		slog.Debug("Gap >= 60s, inserting ID track",
			"start", previousEndTime,
			"end", startTime)
		addIDTrack(tracklist, previousEndTime, startTime, *trackCounter)
		*trackCounter++
	}
}

// handleFinalGap stretches or pads the tracklist out to the stream's total
// duration.
func handleFinalGap(tracklist *domain.Tracklist, previousEndTime, totalDuration string, trackCounter *int) error {
	if previousEndTime == "" || totalDuration == "" || previousEndTime == totalDuration {
		return nil
	}

	finalGap := calculateDuration(previousEndTime, totalDuration)
	if finalGap <= 0 || finalGap >= maxFinalGapSeconds {
		return fmt.Errorf("invalid final gap (%d seconds)", finalGap)
	}

	if finalGap < shortGapSeconds {
		slog.Debug("Final gap < 60s, extending last track", "end", totalDuration)
		tracklist.Tracks[len(tracklist.Tracks)-1].EndTime = totalDuration
	} else {
		slog.Debug("Final gap >= 60s, inserting final ID track",
			"start", previousEndTime,
			"end", totalDuration)
		addIDTrack(tracklist, previousEndTime, totalDuration, *trackCounter)
	}
	return nil
}

// applyTimingRules fills in the cues a plain-text tracklist leaves implicit:
// the set starts at zero, each track runs until the next one begins, and the
// last track runs to the total duration when one is known.
func applyTimingRules(tracks []*domain.Track, totalDuration string) {
	if len(tracks) == 0 {
		return
	}

	if tracks[0].StartTime == "" {
		tracks[0].StartTime = "00:00:00"
	}

	for i := 0; i < len(tracks)-1; i++ {
		if tracks[i].EndTime == "" && tracks[i+1].StartTime != "" {
			tracks[i].EndTime = tracks[i+1].StartTime
		}
	}

	last := tracks[len(tracks)-1]
	if last.EndTime == "" && totalDuration != "" {
		last.EndTime = totalDuration
	}
}

// Ordered from most to least specific. The generic clock patterns come last
// so labelled durations win.
var totalDurationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`Player\s+(\d+:\d+(?::\d+)?)`),
	regexp.MustCompile(`Duration[:\s]+(\d+:\d+(?::\d+)?)`),
	regexp.MustCompile(`Length[:\s]+(\d+:\d+(?::\d+)?)`),
	regexp.MustCompile(`Time[:\s]+(\d+:\d+(?::\d+)?)`),
	regexp.MustCompile(`Total[:\s]+(\d+:\d+(?::\d+)?)`),
	regexp.MustCompile(`(\d+:\d+(?::\d+)?)\s+(?:set|mix|show|episode)`),
	regexp.MustCompile(`(\d{1,2}:\d{2}:\d{2})`),
	regexp.MustCompile(`(\d{1,3}:\d{2})`),
}

// extractTotalDuration scans free text for a plausible set duration and
// returns it as HH:MM:SS, or "" when nothing credible is found.
func extractTotalDuration(text string) string {
	for _, pattern := range totalDurationPatterns {
		matches := pattern.FindStringSubmatch(text)
		if len(matches) < 2 {
			continue
		}

		if !isValidSetDuration(cueSeconds(matches[1])) {
			continue
		}

		normalized, err := normalizeCueTime(matches[1])
		if err != nil {
			continue
		}
		return normalized
	}
	return ""
}
