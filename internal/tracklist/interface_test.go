package tracklist

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jaki95/whats-this-id/internal/domain"
)

// MockImporter implements the Importer interface for testing
type MockImporter struct {
	name       string
	shouldFail bool
	tracklist  *domain.Tracklist
	err        error
}

func (m *MockImporter) Import(ctx context.Context, source string) (*domain.Tracklist, error) {
	if m.shouldFail {
		return nil, m.err
	}
	return m.tracklist, nil
}

func (m *MockImporter) Name() string {
	if m.name == "" {
		return "mock"
	}
	return m.name
}

func TestNewDefaultImporter(t *testing.T) {
	importer := NewDefaultImporter(nil, nil, t.TempDir(), 0)
	assert.NotNil(t, importer)

	composite, ok := importer.(*CompositeImporter)
	assert.True(t, ok)
	assert.Equal(t, 4, len(composite.importers))
	assert.Equal(t, "*tracklist.tracklists1001Importer", getTypeName(composite.importers[0]))
	assert.Equal(t, "*tracklist.TrackIDImporter", getTypeName(composite.importers[1]))
	assert.Equal(t, "*tracklist.CSVImporter", getTypeName(composite.importers[2]))
	assert.Equal(t, "*tracklist.TextImporter", getTypeName(composite.importers[3]))
}

func TestCompositeImporterFallback(t *testing.T) {
	// Create test tracklist
	testTracklist := &domain.Tracklist{
		Name:   "Test Set",
		Artist: "Test DJ",
		Tracks: []*domain.Track{
			{
				Artist:      "Artist 1",
				Name:        "Track 1",
				StartTime:   "00:00:00",
				EndTime:     "00:05:00",
				TrackNumber: 1,
			},
		},
	}

	tests := []struct {
		name           string
		importers      []Importer
		expectedResult *domain.Tracklist
		expectError    bool
	}{
		{
			name: "first importer succeeds",
			importers: []Importer{
				&MockImporter{tracklist: testTracklist},
				&MockImporter{shouldFail: true, err: fmt.Errorf("should not be called")},
				&MockImporter{shouldFail: true, err: fmt.Errorf("should not be called")},
			},
			expectedResult: testTracklist,
			expectError:    false,
		},
		{
			name: "second importer succeeds",
			importers: []Importer{
				&MockImporter{shouldFail: true, err: fmt.Errorf("first failed")},
				&MockImporter{tracklist: testTracklist},
				&MockImporter{shouldFail: true, err: fmt.Errorf("should not be called")},
			},
			expectedResult: testTracklist,
			expectError:    false,
		},
		{
			name: "third importer succeeds",
			importers: []Importer{
				&MockImporter{shouldFail: true, err: fmt.Errorf("first failed")},
				&MockImporter{shouldFail: true, err: fmt.Errorf("second failed")},
				&MockImporter{tracklist: testTracklist},
			},
			expectedResult: testTracklist,
			expectError:    false,
		},
		{
			name: "all importers fail",
			importers: []Importer{
				&MockImporter{shouldFail: true, err: fmt.Errorf("first failed")},
				&MockImporter{shouldFail: true, err: fmt.Errorf("second failed")},
				&MockImporter{shouldFail: true, err: fmt.Errorf("third failed")},
			},
			expectedResult: nil,
			expectError:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			composite := NewCompositeImporter(tt.importers...)

			result, err := composite.Import(context.Background(), "test-source")

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedResult, result)
			}
		})
	}
}

func TestCompositeImporterAggregatesErrors(t *testing.T) {
	composite := NewCompositeImporter(
		&MockImporter{name: "1001tracklists", shouldFail: true, err: fmt.Errorf("not a 1001tracklists URL")},
		&MockImporter{name: "trackid.net", shouldFail: true, err: fmt.Errorf("no matching audiostreams")},
	)

	_, err := composite.Import(context.Background(), "nothing useful")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "all importers failed")
	assert.Contains(t, err.Error(), "1001tracklists")
	assert.Contains(t, err.Error(), "trackid.net")
}

// Helper function to get the type name as a string
func getTypeName(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%T", v)
}
