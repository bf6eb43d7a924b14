package github

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

// RateLimitError represents an exhausted quota and how long to back off.
type RateLimitError struct {
	Wait      time.Duration
	ResetAt   time.Time
	Remaining int
	Limit     int
}

func (e *RateLimitError) Error() string {
	if e.ResetAt.IsZero() {
		return fmt.Sprintf("github: rate limit exceeded, retry in %s", e.Wait)
	}
	return fmt.Sprintf("github: rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

func (e *RateLimitError) Unwrap() error { return domain.ErrRateLimited }

// APIError represents a GitHub API error response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

func (e *APIError) Unwrap() error { return domain.ErrRequestFailed }

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}
