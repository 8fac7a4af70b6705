package backend

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jaki95/whats-this-id/internal/domain"
)

// Status mirrors the processing job document served by the dj-set-downloader
// backend at /api/jobs/{id}.
type Status struct {
	ID        string     `json:"id"`
	Status    string     `json:"status"`
	Progress  float64    `json:"progress"`
	Message   string     `json:"message"`
	Error     string     `json:"error,omitempty"`
	Results   []string   `json:"results,omitempty"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
}

// Request represents the body for POST /api/process. The backend expects the
// tracklist as a JSON string rather than a nested object.
type Request struct {
	URL                string `json:"url"`
	Tracklist          string `json:"tracklist"`
	FileExtension      string `json:"fileExtension,omitempty"`
	MaxConcurrentTasks int    `json:"maxConcurrentTasks,omitempty"`
}

// JobList represents the paginated response of GET /api/jobs.
type JobList struct {
	Jobs       []*Status `json:"jobs"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalJobs  int       `json:"totalJobs"`
	TotalPages int       `json:"totalPages"`
}

// Constants for job status
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
)

// Constants for pagination
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Constants for processing defaults
const (
	DefaultMaxConcurrentTasks = 4
	MaxAllowedConcurrentTasks = 100
)

// Constants for job polling
const (
	DefaultPollInterval = 2 * time.Second
	DefaultWaitTimeout  = time.Hour
)

// IsTerminal reports whether the job has reached a final state.
func (s *Status) IsTerminal() bool {
	switch s.Status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// NewRequest builds a processing request for the given set URL and tracklist,
// serializing the tracklist into the JSON string form the backend expects.
func NewRequest(setURL string, tracklist domain.Tracklist, fileExtension string, maxConcurrentTasks int) (Request, error) {
	data, err := json.Marshal(tracklist)
	if err != nil {
		return Request{}, fmt.Errorf("failed to encode tracklist: %w", err)
	}
	return Request{
		URL:                setURL,
		Tracklist:          string(data),
		FileExtension:      fileExtension,
		MaxConcurrentTasks: ValidateMaxConcurrentTasks(maxConcurrentTasks),
	}, nil
}

// ValidateMaxConcurrentTasks sanitizes the concurrency value before it is sent
// to the backend.
func ValidateMaxConcurrentTasks(maxConcurrentTasks int) int {
	if maxConcurrentTasks <= 0 {
		return DefaultMaxConcurrentTasks
	}
	if maxConcurrentTasks > MaxAllowedConcurrentTasks {
		return MaxAllowedConcurrentTasks
	}
	return maxConcurrentTasks
}
