package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// health godoc
// @Summary Health check
// @Tags Utility
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /health [get]
func (s *Server) health(c *gin.Context) {
	if err := s.backend.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "degraded", "backend": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// search godoc
// @Summary Search for a DJ set
// @Description Finds candidate tracklists and audio sources for a free-text query.
// @Tags Search
// @Accept json
// @Produce json
// @Param request body SearchRequest true "Search query"
// @Success 200 {object} SearchResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/search [post]
func (s *Server) search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	ctx := c.Request.Context()
	response := SearchResponse{Query: req.Query}

	tracklists, tracklistErr := s.searcher.Search(ctx, req.Query)
	if tracklistErr == nil {
		response.Tracklists = tracklists
	}

	audio, audioErr := s.finder.Search(ctx, req.Query)
	if audioErr == nil {
		response.Audio = audio
	}

	// A query with no audio hits can still return tracklists, and vice
	// versa. Only fail when both sides came up empty-handed.
	if tracklistErr != nil && audioErr != nil {
		c.JSON(502, gin.H{"error": fmt.Sprintf("search failed: %v; %v", tracklistErr, audioErr)})
		return
	}
	if tracklistErr != nil {
		slog.Warn("Tracklist search failed", "query", req.Query, "error", tracklistErr)
	}
	if audioErr != nil {
		slog.Warn("Audio search failed", "query", req.Query, "error", audioErr)
	}

	c.JSON(200, response)
}

// importTracklist godoc
// @Summary Import a tracklist
// @Description Parses a tracklist from a supported URL or from pasted text.
// @Tags Tracklists
// @Accept json
// @Produce json
// @Param request body ImportRequest true "Tracklist source"
// @Success 200 {object} domain.Tracklist
// @Failure 400 {object} ErrorResponse
// @Router /api/tracklists/import [post]
func (s *Server) importTracklist(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	source := strings.TrimSpace(req.URL)
	if source == "" {
		source = req.Text
	}
	if strings.TrimSpace(source) == "" {
		c.JSON(400, gin.H{"error": "either url or text is required"})
		return
	}

	tracklist, err := s.importer.Import(c.Request.Context(), source)
	if err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("failed to import tracklist: %v", err)})
		return
	}

	c.JSON(200, tracklist)
}
