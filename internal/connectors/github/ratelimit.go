package github

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

const (
	// HeaderRateLimit is the rate limit header.
	HeaderRateLimit = "X-RateLimit-Limit"

	// HeaderRateRemaining is the remaining requests header.
	HeaderRateRemaining = "X-RateLimit-Remaining"

	// HeaderRateReset is the reset timestamp header (Unix seconds).
	HeaderRateReset = "X-RateLimit-Reset"

	// HeaderRetryAfter is the retry-after header (seconds or HTTP date).
	HeaderRetryAfter = "Retry-After"
)

// RateLimiter tracks one credential's quota for one API resource.
//
// Proactive throttling is a token bucket. Reactive state comes from response
// headers and is only reported, never slept on: deciding how long to back off
// belongs to the scan orchestrator.
type RateLimiter struct {
	mu        sync.Mutex
	remaining int
	limit     int
	resetTime time.Time
	known     bool
	bucket    *rate.Limiter
	now       func() time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second with the given burst.
// A non-positive rps disables proactive throttling.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		bucket: rate.NewLimiter(limit, burst),
		now:    time.Now,
	}
}

// Wait blocks until the token bucket admits another request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.bucket.Wait(ctx)
}

// UpdateFromResponse updates quota state from response headers.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if remaining := resp.Header.Get(HeaderRateRemaining); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			r.remaining = val
			r.known = true
		}
	}

	if limit := resp.Header.Get(HeaderRateLimit); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			r.limit = val
		}
	}

	if reset := resp.Header.Get(HeaderRateReset); reset != "" {
		if val, err := strconv.ParseInt(reset, 10, 64); err == nil {
			r.resetTime = time.Unix(val, 0)
		}
	}
}

// WaitFor returns how long the caller should back off after resp.
// Retry-After wins over the reset header; the result is never negative.
func (r *RateLimiter) WaitFor(resp *http.Response) time.Duration {
	now := r.now()
	if resp != nil {
		if ra := strings.TrimSpace(resp.Header.Get(HeaderRetryAfter)); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil {
				return floor(time.Duration(secs) * time.Second)
			}
			if at, err := http.ParseTime(ra); err == nil {
				return floor(at.Sub(now))
			}
		}
		if reset := resp.Header.Get(HeaderRateReset); reset != "" {
			if val, err := strconv.ParseInt(reset, 10, 64); err == nil {
				return floor(time.Unix(val, 0).Sub(now))
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resetTime.IsZero() {
		return 0
	}
	return floor(r.resetTime.Sub(now))
}

// Snapshot reports the last observed quota.
func (r *RateLimiter) Snapshot() domain.QuotaStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := domain.QuotaStatus{
		Remaining: r.remaining,
		Limit:     r.limit,
		ResetAt:   r.resetTime,
		Known:     r.known,
	}
	if r.known && r.remaining == 0 && !r.resetTime.IsZero() {
		status.Wait = floor(r.resetTime.Sub(r.now()))
	}
	return status
}

// IsRateLimitResponse reports whether resp signals an exhausted quota.
// GitHub uses both 403 and 429; message is the decoded error body.
func IsRateLimitResponse(resp *http.Response, message string) bool {
	if resp == nil {
		return false
	}
	if resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusTooManyRequests {
		return false
	}
	if resp.Header.Get(HeaderRetryAfter) != "" || resp.Header.Get(HeaderRateRemaining) == "0" {
		return true
	}
	return strings.Contains(strings.ToLower(message), "rate limit")
}

func floor(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
