package tracklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaki95/whats-this-id/internal/domain"
)

func TestNormalizeCueTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"minutes and seconds", "2:16", "00:02:16", false},
		{"zero padded", "02:16", "00:02:16", false},
		{"with hours", "1:02:30", "01:02:30", false},
		{"fractional seconds dropped", "01:02:30.500", "01:02:30", false},
		{"minutes overflow into hours", "123:45", "02:03:45", false},
		{"empty stays empty", "", "", false},
		{"not a time", "abc", "", true},
		{"too many segments", "1:2:3:4", "", true},
		{"bare number", "99", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeCueTime(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCueSeconds(t *testing.T) {
	assert.Equal(t, 3600, cueSeconds("01:00:00"))
	assert.Equal(t, 150, cueSeconds("02:30"))
	assert.Equal(t, -1, cueSeconds("bad"))
	assert.Equal(t, -1, cueSeconds(""))
}

func TestCalculateDuration(t *testing.T) {
	assert.Equal(t, 30, calculateDuration("00:30:00", "00:30:30"))
	assert.Equal(t, -60, calculateDuration("00:30:00", "00:29:00"))
	assert.Equal(t, -1, calculateDuration("", "00:30:00"))
}

func TestCalculateMidpoint(t *testing.T) {
	assert.Equal(t, "00:30:15", calculateMidpoint("00:30:00", "00:30:30"))
	assert.Equal(t, "01:00:30", calculateMidpoint("01:00:00", "01:01:00"))
}

func TestIsValidSetDuration(t *testing.T) {
	assert.False(t, isValidSetDuration(29*60))
	assert.True(t, isValidSetDuration(30*60))
	assert.True(t, isValidSetDuration(480*60))
	assert.False(t, isValidSetDuration(480*60+1))
}

func TestHandleLeadingGap(t *testing.T) {
	tracklist := &domain.Tracklist{}
	counter := 1

	handleLeadingGap(tracklist, "00:00:00", &counter)
	assert.Empty(t, tracklist.Tracks)
	assert.Equal(t, 1, counter)

	handleLeadingGap(tracklist, "00:05:00", &counter)
	require.Len(t, tracklist.Tracks, 1)
	assert.Equal(t, "ID", tracklist.Tracks[0].Artist)
	assert.Equal(t, "ID", tracklist.Tracks[0].Name)
	assert.Equal(t, "00:00:00", tracklist.Tracks[0].StartTime)
	assert.Equal(t, "00:05:00", tracklist.Tracks[0].EndTime)
	assert.Equal(t, 2, counter)
}

func TestHandleTrackGap(t *testing.T) {
	t.Run("short gap extends previous track to the midpoint", func(t *testing.T) {
		tracklist := &domain.Tracklist{Tracks: []*domain.Track{
			{Name: "A", StartTime: "00:00:00", EndTime: "00:30:00", TrackNumber: 1},
		}}
		counter := 2

		handleTrackGap(tracklist, "00:30:00", "00:30:30", &counter)
		require.Len(t, tracklist.Tracks, 1)
		assert.Equal(t, "00:30:15", tracklist.Tracks[0].EndTime)
		assert.Equal(t, 2, counter)
	})

	t.Run("long gap becomes an ID track", func(t *testing.T) {
		tracklist := &domain.Tracklist{Tracks: []*domain.Track{
			{Name: "A", StartTime: "00:00:00", EndTime: "00:30:00", TrackNumber: 1},
		}}
		counter := 2

		handleTrackGap(tracklist, "00:30:00", "00:40:00", &counter)
		require.Len(t, tracklist.Tracks, 2)
		assert.Equal(t, "ID", tracklist.Tracks[1].Name)
		assert.Equal(t, "00:30:00", tracklist.Tracks[1].StartTime)
		assert.Equal(t, "00:40:00", tracklist.Tracks[1].EndTime)
		assert.Equal(t, 3, counter)
	})

	t.Run("contiguous tracks are left alone", func(t *testing.T) {
		tracklist := &domain.Tracklist{Tracks: []*domain.Track{
			{Name: "A", StartTime: "00:00:00", EndTime: "00:30:00", TrackNumber: 1},
		}}
		counter := 2

		handleTrackGap(tracklist, "00:30:00", "00:30:00", &counter)
		require.Len(t, tracklist.Tracks, 1)
		assert.Equal(t, "00:30:00", tracklist.Tracks[0].EndTime)
	})

	t.Run("no previous end time", func(t *testing.T) {
		tracklist := &domain.Tracklist{}
		counter := 1

		handleTrackGap(tracklist, "", "00:30:00", &counter)
		assert.Empty(t, tracklist.Tracks)
	})
}

func TestHandleFinalGap(t *testing.T) {
	t.Run("short final gap extends last track", func(t *testing.T) {
		tracklist := &domain.Tracklist{Tracks: []*domain.Track{
			{Name: "A", StartTime: "00:00:00", EndTime: "00:59:30", TrackNumber: 1},
		}}
		counter := 2

		err := handleFinalGap(tracklist, "00:59:30", "01:00:00", &counter)
		require.NoError(t, err)
		require.Len(t, tracklist.Tracks, 1)
		assert.Equal(t, "01:00:00", tracklist.Tracks[0].EndTime)
	})

	t.Run("long final gap becomes an ID track", func(t *testing.T) {
		tracklist := &domain.Tracklist{Tracks: []*domain.Track{
			{Name: "A", StartTime: "00:00:00", EndTime: "00:50:00", TrackNumber: 1},
		}}
		counter := 2

		err := handleFinalGap(tracklist, "00:50:00", "01:00:00", &counter)
		require.NoError(t, err)
		require.Len(t, tracklist.Tracks, 2)
		assert.Equal(t, "ID", tracklist.Tracks[1].Name)
		assert.Equal(t, "00:50:00", tracklist.Tracks[1].StartTime)
		assert.Equal(t, "01:00:00", tracklist.Tracks[1].EndTime)
	})

	t.Run("already at total duration", func(t *testing.T) {
		tracklist := &domain.Tracklist{Tracks: []*domain.Track{
			{Name: "A", StartTime: "00:00:00", EndTime: "01:00:00", TrackNumber: 1},
		}}
		counter := 2

		err := handleFinalGap(tracklist, "01:00:00", "01:00:00", &counter)
		require.NoError(t, err)
		require.Len(t, tracklist.Tracks, 1)
	})

	t.Run("last track past total duration", func(t *testing.T) {
		tracklist := &domain.Tracklist{Tracks: []*domain.Track{
			{Name: "A", StartTime: "00:00:00", EndTime: "01:30:00", TrackNumber: 1},
		}}
		counter := 2

		err := handleFinalGap(tracklist, "01:30:00", "01:00:00", &counter)
		assert.ErrorContains(t, err, "invalid final gap")
	})

	t.Run("unknown total duration", func(t *testing.T) {
		tracklist := &domain.Tracklist{Tracks: []*domain.Track{
			{Name: "A", StartTime: "00:00:00", EndTime: "00:50:00", TrackNumber: 1},
		}}
		counter := 2

		err := handleFinalGap(tracklist, "00:50:00", "", &counter)
		require.NoError(t, err)
		require.Len(t, tracklist.Tracks, 1)
	})
}

func TestApplyTimingRules(t *testing.T) {
	tracks := []*domain.Track{
		{Name: "A", StartTime: ""},
		{Name: "B", StartTime: "00:03:00"},
	}

	applyTimingRules(tracks, "01:00:00")

	assert.Equal(t, "00:00:00", tracks[0].StartTime)
	assert.Equal(t, "00:03:00", tracks[0].EndTime)
	assert.Equal(t, "01:00:00", tracks[1].EndTime)

	// Must not panic on an empty slice
	applyTimingRules(nil, "01:00:00")
}

func TestExtractTotalDuration(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"labelled duration", "Duration: 01:30:00", "01:30:00"},
		{"mix suffix", "listen to this 90:00 mix now", "01:30:00"},
		{"labelled pattern wins over clock pattern", "Player 02:00:00 recorded at 00:45:00", "02:00:00"},
		{"bare clock time", "set recorded live 1:23:45 in Berlin", "01:23:45"},
		{"too short to be a set", "Length: 02:00", ""},
		{"nothing time shaped", "no duration in here", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractTotalDuration(tt.text))
		})
	}
}
