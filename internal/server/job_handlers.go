package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jaki95/whats-this-id/internal/backend"
	"github.com/jaki95/whats-this-id/internal/domain"
)

// processSet godoc
// @Summary Start processing a DJ set URL
// @Description Validates the request and forwards it to the processing backend.
// @Tags Jobs
// @Accept json
// @Produce json
// @Param request body backend.Request true "Processing parameters"
// @Success 202 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/process [post]
func (s *Server) processSet(c *gin.Context) {
	var req backend.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	if req.URL == "" {
		c.JSON(400, gin.H{"error": "url is required"})
		return
	}

	var tracklist domain.Tracklist
	if err := json.Unmarshal([]byte(req.Tracklist), &tracklist); err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("invalid tracklist: %v", err)})
		return
	}
	if err := tracklist.Validate(); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if tracklist.Artist == "" {
		c.JSON(400, gin.H{"error": "tracklist artist is required"})
		return
	}

	if req.FileExtension == "" {
		req.FileExtension = s.cfg.FileExtension
	}
	if req.MaxConcurrentTasks <= 0 {
		req.MaxConcurrentTasks = s.cfg.MaxConcurrentTasks
	}
	req.MaxConcurrentTasks = backend.ValidateMaxConcurrentTasks(req.MaxConcurrentTasks)

	jobID, err := s.backend.ProcessSet(c.Request.Context(), req)
	if err != nil {
		c.JSON(502, gin.H{"error": fmt.Sprintf("backend rejected the job: %v", err)})
		return
	}

	c.JSON(202, gin.H{
		"message": "Processing started",
		"jobId":   jobID,
	})
}

// getJobStatus godoc
// @Summary Get job status
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} backend.Status
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/jobs/{id} [get]
func (s *Server) getJobStatus(c *gin.Context) {
	jobID := c.Param("id")

	status, err := s.backend.GetJob(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, backend.ErrJobNotFound) {
			c.JSON(404, gin.H{"error": fmt.Sprintf("%v: %s", backend.ErrJobNotFound, jobID)})
			return
		}
		c.JSON(502, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, status)
}

// cancelJob godoc
// @Summary Cancel a job
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/jobs/{id}/cancel [post]
func (s *Server) cancelJob(c *gin.Context) {
	jobID := c.Param("id")

	if err := s.backend.CancelJob(c.Request.Context(), jobID); err != nil {
		if errors.Is(err, backend.ErrJobNotFound) {
			c.JSON(404, gin.H{"error": fmt.Sprintf("%v: %s", backend.ErrJobNotFound, jobID)})
			return
		}
		c.JSON(502, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{"message": "Job cancelled"})
}

// listJobs godoc
// @Summary List jobs
// @Tags Jobs
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} backend.JobList
// @Failure 502 {object} ErrorResponse
// @Router /api/jobs [get]
func (s *Server) listJobs(c *gin.Context) {
	page := 1
	pageSize := backend.DefaultPageSize

	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}

	if ps := c.Query("pageSize"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 && parsed <= backend.MaxPageSize {
			pageSize = parsed
		}
	}

	jobs, err := s.backend.ListJobs(c.Request.Context(), page, pageSize)
	if err != nil {
		c.JSON(502, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, jobs)
}

// downloadArchive godoc
// @Summary Download processed tracks as ZIP
// @Description Streams the finished job's archive from the backend through to the client.
// @Tags Downloads
// @Produce application/zip
// @Param id path string true "Job ID"
// @Success 200 {file} binary "ZIP archive"
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/jobs/{id}/download [get]
func (s *Server) downloadArchive(c *gin.Context) {
	jobID := c.Param("id")

	archive, err := s.backend.DownloadArchive(c.Request.Context(), jobID)
	if err != nil {
		switch {
		case errors.Is(err, backend.ErrJobNotFound):
			c.JSON(404, gin.H{"error": fmt.Sprintf("%v: %s", backend.ErrJobNotFound, jobID)})
		case errors.Is(err, backend.ErrInvalidArchive):
			c.JSON(502, gin.H{"error": fmt.Sprintf("backend returned an invalid archive: %v", err)})
		default:
			c.JSON(502, gin.H{"error": err.Error()})
		}
		return
	}
	defer archive.Body.Close()

	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", archive.Name),
	}
	c.DataFromReader(200, archive.Size, "application/zip", archive.Body, extraHeaders)
}
