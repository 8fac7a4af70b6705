package backend

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// Client talks to a running dj-set-downloader instance. The backend owns all
// job state; this client only submits work and observes it.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	streamClient *http.Client
	pollInterval time.Duration
	waitTimeout  time.Duration
}

// NewClient creates a backend client for the given base URL. Zero values for
// pollInterval and waitTimeout select the package defaults.
func NewClient(baseURL string, pollInterval, waitTimeout time.Duration) *Client {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if waitTimeout <= 0 {
		waitTimeout = DefaultWaitTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		streamClient: &http.Client{
			Timeout: 30 * time.Minute, // Long timeout for large archives
		},
		pollInterval: pollInterval,
		waitTimeout:  waitTimeout,
	}
}

// BaseURL returns the backend base URL the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health checks that the backend is up and answering.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// ProcessSet submits a set URL plus tracklist for processing and returns the
// job ID the backend assigned.
func (c *Client) ProcessSet(ctx context.Context, processReq Request) (string, error) {
	body, err := json.Marshal(processReq)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/process", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to submit job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return "", c.responseError(resp, "process request rejected")
	}

	var accepted struct {
		JobID string `json:"jobId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		return "", fmt.Errorf("failed to decode process response: %w", err)
	}
	if accepted.JobID == "" {
		return "", fmt.Errorf("backend accepted job but returned no job id")
	}

	slog.Debug("submitted processing job", "jobId", accepted.JobID, "url", processReq.URL)
	return accepted.JobID, nil
}

// GetJob fetches the current status of a job.
func (c *Client) GetJob(ctx context.Context, jobID string) (*Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.jobURL(jobID, ""), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get job status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.responseError(resp, "job status request failed")
	}

	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode job status: %w", err)
	}
	return &status, nil
}

// CancelJob asks the backend to cancel a pending or processing job.
func (c *Client) CancelJob(ctx context.Context, jobID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.jobURL(jobID, "/cancel"), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to cancel job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if resp.StatusCode != http.StatusOK {
		return c.responseError(resp, "cancel request failed")
	}
	return nil
}

// ListJobs fetches one page of job summaries. Page and pageSize fall back to
// the backend defaults when non-positive.
func (c *Client) ListJobs(ctx context.Context, page, pageSize int) (*JobList, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	listURL := fmt.Sprintf("%s/api/jobs?page=%d&pageSize=%d", c.baseURL, page, pageSize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.responseError(resp, "job list request failed")
	}

	var list JobList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode job list: %w", err)
	}
	return &list, nil
}

// WaitForCompletion polls the job until it reaches a terminal state, the wait
// timeout elapses, or the context is cancelled. The callback, when non-nil,
// receives every observed status including the terminal one.
func (c *Client) WaitForCompletion(ctx context.Context, jobID string, onProgress func(*Status)) (*Status, error) {
	waitCtx, cancel := context.WithTimeout(ctx, c.waitTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		status, err := c.GetJob(waitCtx, jobID)
		if err != nil {
			if waitCtx.Err() != nil {
				return nil, c.waitErr(ctx, jobID)
			}
			return nil, err
		}

		if onProgress != nil {
			onProgress(status)
		}

		switch status.Status {
		case StatusCompleted:
			return status, nil
		case StatusFailed:
			if status.Error != "" {
				return status, fmt.Errorf("job %s failed: %s", jobID, status.Error)
			}
			return status, fmt.Errorf("job %s failed", jobID)
		case StatusCancelled:
			return status, fmt.Errorf("job %s was cancelled", jobID)
		}

		select {
		case <-waitCtx.Done():
			return nil, c.waitErr(ctx, jobID)
		case <-ticker.C:
		}
	}
}

// waitErr distinguishes caller cancellation from the poll deadline.
func (c *Client) waitErr(ctx context.Context, jobID string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%w: %s did not finish within %s", ErrJobTimeout, jobID, c.waitTimeout)
}

// Archive is a validated ZIP stream produced by a completed job. The caller
// owns Body and must close it.
type Archive struct {
	Name string
	Size int64
	Body io.ReadCloser
}

var zipMagics = [][]byte{
	{'P', 'K', 0x03, 0x04}, // local file header
	{'P', 'K', 0x05, 0x06}, // empty archive
}

// DownloadArchive streams the ZIP archive of a completed job. The first bytes
// are checked against the ZIP magic numbers before the stream is handed over,
// so an HTML error page can never masquerade as an archive.
func (c *Client) DownloadArchive(ctx context.Context, jobID string) (*Archive, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.jobURL(jobID, "/download"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download archive: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, c.responseError(resp, "archive download failed")
	}

	buffered := bufio.NewReader(resp.Body)
	header, err := buffered.Peek(4)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: response shorter than zip header", ErrInvalidArchive)
	}
	if !isZipHeader(header) {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: unexpected leading bytes %x", ErrInvalidArchive, header)
	}

	name := archiveFilename(resp.Header.Get("Content-Disposition"), jobID)
	slog.Debug("archive stream validated", "jobId", jobID, "filename", name, "size", resp.ContentLength)

	return &Archive{
		Name: name,
		Size: resp.ContentLength,
		Body: &archiveBody{Reader: buffered, closer: resp.Body},
	}, nil
}

// archiveBody keeps the peeked bytes readable while delegating Close to the
// underlying response body.
type archiveBody struct {
	io.Reader
	closer io.Closer
}

func (b *archiveBody) Close() error {
	return b.closer.Close()
}

func isZipHeader(header []byte) bool {
	for _, magic := range zipMagics {
		if bytes.HasPrefix(header, magic) {
			return true
		}
	}
	return false
}

// archiveFilename extracts the filename from a Content-Disposition header,
// falling back to "<jobID>.zip".
func archiveFilename(contentDisposition, jobID string) string {
	if contentDisposition != "" {
		if _, params, err := mime.ParseMediaType(contentDisposition); err == nil {
			if name := filepath.Base(params["filename"]); name != "" && name != "." && name != string(filepath.Separator) {
				return name
			}
		}
	}
	return jobID + ".zip"
}

func (c *Client) jobURL(jobID, suffix string) string {
	return c.baseURL + "/api/jobs/" + url.PathEscape(jobID) + suffix
}

// responseError surfaces the backend's {"error": "..."} payload when present.
func (c *Client) responseError(resp *http.Response, action string) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Errorf("%s: %s (status %d)", action, payload.Error, resp.StatusCode)
	}
	return fmt.Errorf("%s: status %d", action, resp.StatusCode)
}
