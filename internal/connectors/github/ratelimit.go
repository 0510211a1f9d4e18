package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// GitHubRateLimit is the authenticated rate limit (5000/hour).
	GitHubRateLimit = 5000

	// ProactiveRate is the proactive throttle rate (~1.2 req/sec = 4320/hr).
	ProactiveRate = 1.2

	// MinBuffer is the reserve kept at the full authenticated quota.
	// The effective buffer scales down with the limit reported by the
	// API, so unauthenticated clients (60/hour) are not starved.
	MinBuffer = 100

	// HeaderRateLimit is the rate limit header.
	HeaderRateLimit = "X-RateLimit-Limit"

	// HeaderRateRemaining is the remaining requests header.
	HeaderRateRemaining = "X-RateLimit-Remaining"

	// HeaderRateReset is the reset timestamp header (Unix seconds).
	HeaderRateReset = "X-RateLimit-Reset"
)

// RateLimiter implements dual-strategy rate limiting for GitHub API.
type RateLimiter struct {
	mu        sync.Mutex
	remaining int           // From API header
	limit     int           // From API header
	resetTime time.Time     // From API header
	bucket    *rate.Limiter // Proactive throttling
	minBuffer int           // Reserve requests
}

// NewRateLimiter creates a new rate limiter with proactive throttling.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		remaining: GitHubRateLimit, // Assume full quota initially
		limit:     GitHubRateLimit,
		bucket:    rate.NewLimiter(rate.Limit(ProactiveRate), 1),
		minBuffer: MinBuffer,
	}
}

// Wait blocks until it's safe to make a request.
// It uses both proactive throttling and reactive API limit checking.
func (r *RateLimiter) Wait(ctx context.Context) error {
	// 1. Check token bucket (proactive throttling)
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	// 2. Check API limit (reactive)
	r.mu.Lock()
	remaining := r.remaining
	resetTime := r.resetTime
	r.mu.Unlock()

	if remaining < r.minBuffer && time.Now().Before(resetTime) {
		waitDuration := time.Until(resetTime)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitDuration):
		}
	}

	return nil
}

// UpdateFromResponse updates rate limit state from response headers.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Parse X-RateLimit-Remaining
	if remaining := resp.Header.Get(HeaderRateRemaining); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			r.remaining = val
		}
	}

	// Parse X-RateLimit-Limit
	if limit := resp.Header.Get(HeaderRateLimit); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			r.limit = val
			r.minBuffer = max(1, val/50)
		}
	}

	// Parse X-RateLimit-Reset (Unix timestamp)
	if reset := resp.Header.Get(HeaderRateReset); reset != "" {
		if val, err := strconv.ParseInt(reset, 10, 64); err == nil {
			r.resetTime = time.Unix(val, 0)
		}
	}
}

// Remaining returns the current remaining requests.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// Limit returns the rate limit.
func (r *RateLimiter) Limit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limit
}

// ResetTime returns the rate limit reset time.
func (r *RateLimiter) ResetTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetTime
}
