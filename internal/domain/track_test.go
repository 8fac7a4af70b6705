package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackJSONSerialization(t *testing.T) {
	// The backend consumes this exact shape; the field names are load-bearing.
	track := &Track{
		Artist:      "Test Artist",
		Name:        "Test Title",
		StartTime:   "00:00:00",
		EndTime:     "00:05:00",
		TrackNumber: 1,
	}

	data, err := json.Marshal(track)
	assert.NoError(t, err)

	expected := `{"artist":"Test Artist","name":"Test Title","start_time":"00:00:00","end_time":"00:05:00","track_number":1}`
	assert.JSONEq(t, expected, string(data))
}

func TestTrackValidate(t *testing.T) {
	tests := []struct {
		name    string
		track   Track
		wantErr bool
	}{
		{
			name:  "valid track",
			track: Track{Name: "Opus", Artist: "Eric Prydz", StartTime: "00:00:00", EndTime: "00:09:00", TrackNumber: 1},
		},
		{
			name:  "empty end time is allowed",
			track: Track{Name: "Closer", StartTime: "01:55:00", TrackNumber: 24},
		},
		{
			name:    "missing name",
			track:   Track{StartTime: "00:00:00", TrackNumber: 1},
			wantErr: true,
		},
		{
			name:    "missing start time",
			track:   Track{Name: "Opus", TrackNumber: 1},
			wantErr: true,
		},
		{
			name:    "malformed start time",
			track:   Track{Name: "Opus", StartTime: "0:00", TrackNumber: 1},
			wantErr: true,
		},
		{
			name:    "malformed end time",
			track:   Track{Name: "Opus", StartTime: "00:00:00", EndTime: "9 minutes", TrackNumber: 1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.track.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTracklistValidate(t *testing.T) {
	valid := &Tracklist{
		Name:   "Test Set",
		Artist: "Test DJ",
		Tracks: []*Track{
			{Artist: "Artist 1", Name: "Track 1", StartTime: "00:00:00", EndTime: "00:05:00", TrackNumber: 1},
			{Artist: "Artist 2", Name: "Track 2", StartTime: "00:05:00", TrackNumber: 2},
		},
	}
	assert.NoError(t, valid.Validate())

	empty := &Tracklist{Name: "Empty Set", Artist: "Test DJ"}
	assert.Error(t, empty.Validate())

	unnamed := &Tracklist{Artist: "Test DJ", Tracks: valid.Tracks}
	assert.Error(t, unnamed.Validate())

	badTrack := &Tracklist{
		Name:   "Bad Set",
		Artist: "Test DJ",
		Tracks: []*Track{{Name: "Track 1", StartTime: "start", TrackNumber: 1}},
	}
	assert.Error(t, badTrack.Validate())
}
