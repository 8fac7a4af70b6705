package domain

import (
	"fmt"
	"regexp"
)

var timestampRe = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)

// Track represents an individual track in a tracklist.
type Track struct {
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	TrackNumber int    `json:"track_number"`

	DownloadURL string `json:"download_url,omitempty"`
	SizeBytes   int64  `json:"size_bytes,omitempty"`
	Available   bool   `json:"available,omitempty"`
}

// Validate checks that the track has a name and well-formed HH:MM:SS timestamps.
// End times may be empty: the final track of a set often has no known end.
func (t *Track) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("track %d: missing name", t.TrackNumber)
	}
	if t.StartTime == "" || !timestampRe.MatchString(t.StartTime) {
		return fmt.Errorf("track %d: invalid start time %q", t.TrackNumber, t.StartTime)
	}
	if t.EndTime != "" && !timestampRe.MatchString(t.EndTime) {
		return fmt.Errorf("track %d: invalid end time %q", t.TrackNumber, t.EndTime)
	}
	return nil
}

// Tracklist represents a collection of tracks in a DJ set.
type Tracklist struct {
	Name   string   `json:"name"`
	Year   int      `json:"year,omitempty"`
	Artist string   `json:"artist"`
	Genre  string   `json:"genre,omitempty"`
	Tracks []*Track `json:"tracks"`
}

// Validate checks that the tracklist is complete enough to submit for processing.
func (tl *Tracklist) Validate() error {
	if tl.Name == "" {
		return fmt.Errorf("tracklist: missing name")
	}
	if len(tl.Tracks) == 0 {
		return fmt.Errorf("tracklist %q: no tracks", tl.Name)
	}
	for _, track := range tl.Tracks {
		if err := track.Validate(); err != nil {
			return fmt.Errorf("tracklist %q: %w", tl.Name, err)
		}
	}
	return nil
}
