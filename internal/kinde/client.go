// Package kinde is a minimal client for the Kinde management API,
// covering the operations the purge flows need: M2M token acquisition,
// paginated user/identity enumeration and per-resource deletion.
package kinde

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Backoff bounds for retryable responses.
const (
	// maxBackoff caps any single computed wait.
	maxBackoff = 15 * time.Second
	// maxJitter is the exclusive upper bound of the random jitter added
	// to every wait.
	maxJitter = 250 * time.Millisecond

	defaultPageSize  = 100
	defaultBaseDelay = 500 * time.Millisecond
	requestTimeout   = 30 * time.Second
)

// Options configures a Client.
type Options struct {
	// BaseURL is the business base URL, e.g. https://acme.kinde.com.
	BaseURL string
	// ClientID, ClientSecret and Audience drive the M2M token exchange.
	ClientID     string
	ClientSecret string
	Audience     string
	// PageSize is the page size used for every list request.
	PageSize int
	// MaxRetries bounds backoff retries on 429/5xx responses.
	MaxRetries int
	// BaseDelay is the first backoff delay.
	BaseDelay time.Duration
	// RequestsPerSecond and Burst configure proactive request pacing.
	RequestsPerSecond float64
	Burst             int
	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client
	// Logger receives progress events. Defaults to a discarding logger.
	Logger *slog.Logger
}

// Client calls the Kinde management API with bearer authentication,
// client-side pacing and bounded retry with exponential backoff.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *TokenSource
	limiter    *RateLimiter
	logger     *slog.Logger

	pageSize   int
	maxRetries int
	baseDelay  time.Duration

	// Injection points for tests.
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() time.Duration
}

// New creates a management API client.
func New(opts Options) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: requestTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = defaultBaseDelay
	}

	return &Client{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		tokens: NewTokenSource(
			opts.BaseURL, opts.ClientID, opts.ClientSecret, opts.Audience,
			opts.HTTPClient, opts.Logger,
		),
		limiter:    NewRateLimiter(opts.RequestsPerSecond, opts.Burst),
		logger:     opts.Logger,
		pageSize:   opts.PageSize,
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.BaseDelay,
		now:        time.Now,
		sleep:      sleepContext,
		jitter: func() time.Duration {
			return time.Duration(rand.Int64N(int64(maxJitter)))
		},
	}
}

// do issues one logical request and returns the final response status
// and body. Policy per attempt:
//
//  1. obtain the current token and attach it as a bearer header;
//  2. on a 401, force-refresh the token once per logical call and retry
//     immediately without consuming the retry budget;
//  3. on 429 or 5xx, sleep max(Retry-After, baseDelay*2^attempt) capped
//     at maxBackoff plus jitter, then retry while attempts remain;
//  4. otherwise return the response as-is, non-success statuses
//     included, for the caller to classify.
func (c *Client) do(ctx context.Context, method, path string, query url.Values) (int, []byte, error) {
	attempt := 0
	refreshed := false

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, err
		}

		token, err := c.tokens.Token(ctx, false)
		if err != nil {
			return 0, nil, err
		}

		reqURL := c.baseURL + path
		if len(query) > 0 {
			reqURL += "?" + query.Encode()
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, http.NoBody)
		if err != nil {
			return 0, nil, fmt.Errorf("kinde: create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return 0, nil, fmt.Errorf("kinde: %s %s: %w", method, path, err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return 0, nil, fmt.Errorf("kinde: read response body: %w", err)
		}

		if resp.StatusCode == http.StatusUnauthorized && !refreshed {
			// One forced refresh per logical call; a second 401 after
			// that is terminal.
			refreshed = true
			c.logger.Debug("unauthorised response, refreshing token",
				slog.String("path", path))
			if _, err := c.tokens.Token(ctx, true); err != nil {
				return 0, nil, err
			}
			continue
		}

		if IsRetryable(resp.StatusCode) && attempt < c.maxRetries {
			wait := c.backoffWait(attempt, resp.Header)
			c.logger.Debug("retryable response, backing off",
				slog.String("path", path),
				slog.Int("status", resp.StatusCode),
				slog.Int("attempt", attempt+1),
				slog.Duration("wait", wait),
			)
			if err := c.sleep(ctx, wait); err != nil {
				return 0, nil, err
			}
			attempt++
			continue
		}

		return resp.StatusCode, body, nil
	}
}

// backoffWait computes the wait before the next attempt: the larger of
// the server's Retry-After hint and the exponential delay, capped, plus
// random jitter.
func (c *Client) backoffWait(attempt int, header http.Header) time.Duration {
	wait := c.baseDelay
	// Doubling past the cap overflows for large attempt counts, so stop
	// as soon as the cap is reached.
	for i := 0; i < attempt && wait < maxBackoff; i++ {
		wait <<= 1
	}
	if hint, ok := retryAfter(header, c.now()); ok && hint > wait {
		wait = hint
	}
	if wait > maxBackoff {
		wait = maxBackoff
	}
	return wait + c.jitter()
}

// retryAfter parses a Retry-After header, which may be a delay in
// seconds or an HTTP date converted to a remaining duration.
func retryAfter(header http.Header, now time.Time) (time.Duration, bool) {
	v := header.Get("Retry-After")
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			secs = 0
		}
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		d := t.Sub(now)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}

// sleepContext sleeps for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
