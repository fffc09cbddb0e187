package shared

import (
	"fmt"
	"time"
)

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed = fmt.Errorf("authentication failed")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrRateLimited        = fmt.Errorf("rate limited")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrTrackNotFound      = fmt.Errorf("track not found")
	ErrNoTracks           = fmt.Errorf("no tracks found")

	// Storage errors
	ErrReportNotFound = fmt.Errorf("report not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidLink     = fmt.Errorf("invalid link")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// RateLimitError is returned by a search service when the server asked the client to back off.
//
// Every other failure from a search service is treated as a generic, retryable error.
type RateLimitError struct {
	StatusCode int
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%v: status %d, retry after %s", ErrRateLimited, e.StatusCode, e.RetryAfter)
}

// Is lets callers match a [RateLimitError] against [ErrRateLimited].
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}
