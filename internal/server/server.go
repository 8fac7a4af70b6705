package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jaki95/whats-this-id/config"
	"github.com/jaki95/whats-this-id/internal/backend"
	"github.com/jaki95/whats-this-id/internal/soundcloud"
	"github.com/jaki95/whats-this-id/internal/tracklist"
)

// requestIDKey is the gin context key under which the per-request ID is stored.
const requestIDKey = "requestID"

// Backend is the slice of the processing backend API that the server proxies.
// *backend.Client implements it.
type Backend interface {
	Health(ctx context.Context) error
	ProcessSet(ctx context.Context, req backend.Request) (string, error)
	GetJob(ctx context.Context, jobID string) (*backend.Status, error)
	CancelJob(ctx context.Context, jobID string) error
	ListJobs(ctx context.Context, page, pageSize int) (*backend.JobList, error)
	DownloadArchive(ctx context.Context, jobID string) (*backend.Archive, error)
}

// AudioFinder locates candidate audio sources for a query. *soundcloud.Finder
// implements it.
type AudioFinder interface {
	Search(ctx context.Context, query string) ([]soundcloud.Result, error)
}

// Server exposes search, tracklist import and job proxying over HTTP for the
// web UI. It holds no job state of its own; the processing backend does.
type Server struct {
	cfg      *config.Config
	router   *gin.Engine
	backend  Backend
	searcher tracklist.Searcher
	importer tracklist.Importer
	finder   AudioFinder
}

// New creates a new HTTP server instance
func New(cfg *config.Config, processor Backend, searcher tracklist.Searcher, importer tracklist.Importer, finder AudioFinder) (*Server, error) {
	if processor == nil {
		return nil, fmt.Errorf("backend client is required")
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), corsMiddleware())

	server := &Server{
		cfg:      cfg,
		router:   router,
		backend:  processor,
		searcher: searcher,
		importer: importer,
		finder:   finder,
	}

	server.setupRoutes()
	return server, nil
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.health)

	api := s.router.Group("/api")
	{
		api.POST("/search", s.search)
		api.POST("/tracklists/import", s.importTracklist)
		api.POST("/process", s.processSet)
		api.GET("/jobs/:id", s.getJobStatus)
		api.POST("/jobs/:id/cancel", s.cancelJob)
		api.GET("/jobs", s.listJobs)
		api.GET("/jobs/:id/download", s.downloadArchive)
	}
}

// Start runs the HTTP server until the context is cancelled, then drains
// in-flight requests before returning.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + s.cfg.Server.Port,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	slog.Info("Server listening", "port", s.cfg.Server.Port)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
	}
	return nil
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// requestLogger tags every request with an ID and logs it once the handler
// chain has finished.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Set(requestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		slog.Info("Request handled",
			"requestId", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
