package tracklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTrackText(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"track number", "01. Amelie Lens - In My Mind", "Amelie Lens - In My Mind"},
		{"track number and cue", "1) 05:30 Amelie Lens - In My Mind", "Amelie Lens - In My Mind"},
		{"bracketed cue prefix", "[05:30] Amelie Lens - In My Mind", "Amelie Lens - In My Mind"},
		{"trailing cue", "Amelie Lens - In My Mind [05:30]", "Amelie Lens - In My Mind"},
		{"label and catalogue number", "Amelie Lens - In My Mind LENSKE 012", "Amelie Lens - In My Mind"},
		{"edit marker", "Amelie Lens - In My Mind EDIT [extended mix]", "Amelie Lens - In My Mind"},
		{"user actions", "Amelie Lens - In My Mind 3 people Save", "Amelie Lens - In My Mind"},
		{"mix info kept", "Regal - Still Raving (Club Mix)", "Regal - Still Raving (Club Mix)"},
		{"plain line untouched", "Amelie Lens - In My Mind", "Amelie Lens - In My Mind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanTrackText(tt.line))
		})
	}
}

func TestExtractCue(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"after track number", "1. 05:30 Amelie Lens - In My Mind", "05:30"},
		{"bracketed after track number", "1. [05:30] Amelie Lens - In My Mind", "05:30"},
		{"bracketed prefix with hours", "[1:02:30] Amelie Lens - In My Mind", "1:02:30"},
		{"trailing", "Amelie Lens - In My Mind 05:30", "05:30"},
		{"trailing bracketed", "Amelie Lens - In My Mind [05:30]", "05:30"},
		{"track number only", "05. Amelie Lens - In My Mind", ""},
		{"no cue", "Amelie Lens - In My Mind", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractCue(tt.line))
		})
	}
}

func TestIsNoiseLine(t *testing.T) {
	assert.True(t, isNoiseLine("Tracklist:"))
	assert.True(t, isNoiseLine("© All rights reserved"))
	assert.True(t, isNoiseLine("my favourite Playlist"))
	assert.False(t, isNoiseLine("Amelie Lens - In My Mind"))
}

func TestParseTrackValue(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantArtist string
		wantTitle  string
	}{
		{"artist and title", "Amelie Lens - In My Mind", "Amelie Lens", "In My Mind"},
		{"no separator", "Strobe", "Unknown Artist", "Strobe"},
		{"extra separator stays in title", "A - B - C", "A", "B - C"},
		{"whitespace trimmed", "  Amelie Lens  -  In My Mind  ", "Amelie Lens", "In My Mind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artist, title := parseTrackValue(tt.input)
			assert.Equal(t, tt.wantArtist, artist)
			assert.Equal(t, tt.wantTitle, title)
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "file.json", SanitizeFilename("file.json"))
	assert.Equal(t, "a_b_c", SanitizeFilename("a b c"))
	assert.Equal(t, "Track_Name_2024", SanitizeFilename("Track/Name: 2024"))
	assert.Equal(t, "trimmed", SanitizeFilename("__trimmed__"))
}
