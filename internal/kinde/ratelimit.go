package kinde

import (
	"context"

	"golang.org/x/time/rate"
)

// Default pacing for the management API. Kinde does not publish hard
// quotas for M2M calls, so these are conservative enough that a bulk
// run rarely sees a 429 at all; reactive backoff in the executor covers
// the rest.
const (
	// DefaultRequestsPerSecond is the sustained request rate.
	DefaultRequestsPerSecond = 5.0
	// DefaultBurstSize is the maximum burst size.
	DefaultBurstSize = 10
)

// RateLimiter paces outbound requests with a token bucket so a bulk run
// stays under the API's sustained request quota.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a rate limiter with the given sustained rate
// and burst. Non-positive values fall back to the defaults.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = DefaultRequestsPerSecond
	}
	if burst <= 0 {
		burst = DefaultBurstSize
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
