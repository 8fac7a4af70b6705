package server

import (
	"github.com/jaki95/whats-this-id/internal/soundcloud"
	"github.com/jaki95/whats-this-id/internal/tracklist"
)

// SearchRequest represents the request body for searching a set
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
}

// SearchResponse pairs tracklist candidates with audio candidates for a
// query. The UI picks one of each before submitting a processing job.
type SearchResponse struct {
	Query      string                   `json:"query"`
	Tracklists []tracklist.SearchResult `json:"tracklists"`
	Audio      []soundcloud.Result      `json:"audio"`
}

// ImportRequest represents the request body for importing a tracklist.
// Exactly one of URL or Text should be set.
type ImportRequest struct {
	URL  string `json:"url,omitempty"`
	Text string `json:"text,omitempty"`
}

// MessageResponse represents a generic message payload used for success responses.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents a generic error payload used for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
