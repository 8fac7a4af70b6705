package backend

import "errors"

var (
	ErrJobNotFound    = errors.New("job not found")
	ErrJobTimeout     = errors.New("timed out waiting for job")
	ErrInvalidArchive = errors.New("invalid zip archive")
)
