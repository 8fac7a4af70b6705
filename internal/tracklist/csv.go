package tracklist

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jaki95/whats-this-id/internal/domain"
)

// CSVImporter reads tracklists exported as CSV. The first row is a header,
// the second carries set metadata (total duration, artist, name) alongside
// the first track, and every following row is one track.
type CSVImporter struct {
}

func NewCSVImporter() *CSVImporter {
	return &CSVImporter{}
}

func (c *CSVImporter) Name() string {
	return SourceCSV
}

func (c *CSVImporter) Import(ctx context.Context, filePath string) (*domain.Tracklist, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if !strings.HasSuffix(strings.ToLower(filePath), ".csv") {
		return nil, fmt.Errorf("not a CSV file: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = ','
	reader.FieldsPerRecord = -1

	tracklist, err := c.parseTracklist(reader)
	if err != nil {
		return nil, err
	}

	if len(tracklist.Tracks) == 0 {
		return nil, fmt.Errorf("no tracks found in CSV file")
	}

	return tracklist, nil
}

func (c *CSVImporter) parseTracklist(reader *csv.Reader) (*domain.Tracklist, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	slog.Debug("Header row", "header", header)

	metadata, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV metadata row: %w", err)
	}
	slog.Debug("Metadata row", "metadata", metadata)

	if len(metadata) < 9 {
		return nil, fmt.Errorf("invalid CSV metadata row: expected at least 9 fields, got %d", len(metadata))
	}

	tracklist := &domain.Tracklist{
		Artist: metadata[1],
		Name:   metadata[2],
	}

	totalDuration, err := normalizeCueTime(metadata[0])
	if err != nil {
		return nil, fmt.Errorf("invalid total duration: %w", err)
	}
	slog.Debug("Tracklist metadata",
		"totalDuration", totalDuration,
		"artist", tracklist.Artist,
		"name", tracklist.Name)

	trackCounter := 1
	previousEndTime := ""

	if err := c.processRow(tracklist, metadata, true, &trackCounter, &previousEndTime); err != nil {
		return nil, err
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		if len(record) < 8 {
			return nil, fmt.Errorf("invalid CSV record: expected at least 8 fields, got %d", len(record))
		}

		if err := c.processRow(tracklist, record, false, &trackCounter, &previousEndTime); err != nil {
			return nil, err
		}
	}

	if err := handleFinalGap(tracklist, previousEndTime, totalDuration, &trackCounter); err != nil {
		return nil, err
	}

	return tracklist, nil
}

func (c *CSVImporter) processRow(tracklist *domain.Tracklist, record []string, first bool, trackCounter *int, previousEndTime *string) error {
	startTime, err := normalizeCueTime(record[4])
	if err != nil {
		return fmt.Errorf("row %d: %w", *trackCounter, err)
	}
	endTime, err := normalizeCueTime(record[5])
	if err != nil {
		return fmt.Errorf("row %d: %w", *trackCounter, err)
	}
	artist, name := record[6], record[7]

	if first {
		handleLeadingGap(tracklist, startTime, trackCounter)
	} else {
		handleTrackGap(tracklist, *previousEndTime, startTime, trackCounter)
	}

	addTrack(tracklist, artist, name, startTime, endTime, *trackCounter)
	*trackCounter++
	*previousEndTime = endTime
	return nil
}
