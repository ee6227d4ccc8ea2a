// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

// Package upstream implements HTTP clients for the external providers the
// aggregation layer fans out to: movie metadata, discovery, trailers,
// playlists, streaming availability, trivia generation and email
// verification.
//
// Every client shares a common base: a rate limiter, a circuit breaker,
// automatic retry on HTTP 429 with exponential backoff, and bounded error
// body capture. Providers differ only in endpoint shapes and response
// decoding.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cinematographus/internal/logging"
	"github.com/tomtom215/cinematographus/internal/metrics"
)

const (
	// maxErrorBodySize caps how much of an error response body is read for
	// diagnostics. Prevents unbounded memory use on huge error pages.
	maxErrorBodySize = 64 * 1024

	defaultTimeout    = 10 * time.Second
	defaultMaxRetries = 3
	defaultRetryDelay = 1 * time.Second
)

// StatusError reports a non-success HTTP status from a provider. The body is
// truncated to maxErrorBodySize.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// DecodeError reports a response body that could not be decoded into the
// expected shape. The aggregation layer classifies these as malformed rather
// than unavailable.
type DecodeError struct {
	Provider string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Provider, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Options configures a provider client. Zero values fall back to defaults
// suitable for interactive request paths.
type Options struct {
	// Provider is the short name used in logs and metric labels.
	Provider string

	// BaseURL is the provider API root without a trailing slash.
	BaseURL string

	// APIKey is the provider credential. How it is sent (query parameter,
	// header, bearer token) is up to the concrete client.
	APIKey string

	// Timeout bounds a single HTTP exchange.
	Timeout time.Duration

	// RateLimit is the sustained request rate towards the provider in
	// requests per second. Zero disables client-side rate limiting.
	RateLimit float64

	// RateBurst is the rate limiter burst size.
	RateBurst int

	// MaxRetries caps retry attempts on HTTP 429 responses.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff between retries.
	RetryDelay time.Duration
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.Timeout <= 0 {
		out.Timeout = defaultTimeout
	}
	if out.MaxRetries <= 0 {
		out.MaxRetries = defaultMaxRetries
	}
	if out.RetryDelay <= 0 {
		out.RetryDelay = defaultRetryDelay
	}
	if out.RateBurst <= 0 {
		out.RateBurst = 1
	}
	return out
}

// baseClient carries the shared transport machinery for all provider
// clients. Concrete clients embed it and add endpoint methods.
type baseClient struct {
	opts    Options
	client  *http.Client
	limiter *rate.Limiter
	breaker *breaker
	logger  zerolog.Logger

	// authorize, when set, adds credentials to an outgoing request.
	// Key-in-query providers leave it nil and append the key to params.
	authorize func(*http.Request)
}

func newBaseClient(opts Options) *baseClient {
	opts = opts.withDefaults()
	b := &baseClient{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		logger: logging.Component("upstream." + opts.Provider),
	}
	if opts.RateLimit > 0 {
		b.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst)
	}
	b.breaker = newBreaker(opts.Provider)
	return b
}

// requestFactory builds a fresh request for each attempt. Retried requests
// must not reuse a consumed body, so callers hand over a constructor rather
// than a request.
type requestFactory func(ctx context.Context) (*http.Request, error)

// do executes a request through the rate limiter, circuit breaker and retry
// loop. The caller owns the returned response body.
//
// Responses with status 429 are retried with exponential backoff, honouring
// the Retry-After header when present. Exhausted retries and server errors
// (5xx) are returned as *StatusError so the breaker counts them as provider
// failures. Other non-2xx statuses are returned as a response for the caller
// to interpret: a 404 from a healthy provider is not a provider fault.
func (b *baseClient) do(ctx context.Context, build requestFactory) (*http.Response, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: rate limiter: %w", b.opts.Provider, err)
		}
	}
	return b.breaker.execute(func() (*http.Response, error) {
		return b.doWithRetry(ctx, build)
	})
}

func (b *baseClient) doWithRetry(ctx context.Context, build requestFactory) (*http.Response, error) {
	var lastRetryAfter time.Duration

	for attempt := 0; attempt <= b.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := b.retryDelay(attempt, lastRetryAfter)
			b.logger.Debug().
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("Retrying after rate limit response")
			metrics.UpstreamRetries.WithLabelValues(b.opts.Provider).Inc()

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := build(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: build request: %w", b.opts.Provider, err)
		}

		start := time.Now()
		resp, err := b.client.Do(req)
		if err != nil {
			metrics.RecordUpstreamRequest(b.opts.Provider, 0, time.Since(start))
			return nil, fmt.Errorf("%s: request failed: %w", b.opts.Provider, err)
		}
		metrics.RecordUpstreamRequest(b.opts.Provider, resp.StatusCode, time.Since(start))

		if resp.StatusCode == http.StatusTooManyRequests {
			lastRetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
			body := readBodyForError(resp.Body)
			resp.Body.Close()
			if attempt == b.opts.MaxRetries {
				return nil, &StatusError{Provider: b.opts.Provider, StatusCode: resp.StatusCode, Body: body}
			}
			continue
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			body := readBodyForError(resp.Body)
			resp.Body.Close()
			return nil, &StatusError{Provider: b.opts.Provider, StatusCode: resp.StatusCode, Body: body}
		}

		return resp, nil
	}

	return nil, fmt.Errorf("%s: retries exhausted", b.opts.Provider)
}

func (b *baseClient) retryDelay(attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return retryAfter
	}
	return b.opts.RetryDelay << uint(attempt-1)
}

// getJSON performs a GET against path with query params and decodes the
// 200 response body into out.
func (b *baseClient) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	return b.requestJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		return b.newRequest(ctx, http.MethodGet, path, params, nil, "")
	}, out)
}

// postJSON performs a POST with a JSON-encoded body and decodes the 200
// response into out. The payload is re-encoded per attempt.
func (b *baseClient) postJSON(ctx context.Context, path string, payload any, out any) error {
	return b.requestJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		return b.newRequest(ctx, http.MethodPost, path, nil, strings.NewReader(string(body)), "application/json")
	}, out)
}

// postForm performs a POST with a form-encoded body and decodes the 200
// response into out.
func (b *baseClient) postForm(ctx context.Context, path string, form url.Values, out any) error {
	encoded := form.Encode()
	return b.requestJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		return b.newRequest(ctx, http.MethodPost, path, nil, strings.NewReader(encoded), "application/x-www-form-urlencoded")
	}, out)
}

func (b *baseClient) requestJSON(ctx context.Context, build requestFactory, out any) error {
	resp, err := b.do(ctx, build)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := b.checkStatus(resp); err != nil {
		return err
	}

	if out == nil {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DecodeError{Provider: b.opts.Provider, Err: err}
	}
	return nil
}

func (b *baseClient) newRequest(ctx context.Context, method, path string, params url.Values, body io.Reader, contentType string) (*http.Request, error) {
	u := b.opts.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if b.authorize != nil {
		b.authorize(req)
	}
	return req, nil
}

// checkStatus converts any remaining non-2xx response into a *StatusError.
// The retry loop has already consumed 429 and 5xx.
func (b *baseClient) checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &StatusError{
		Provider:   b.opts.Provider,
		StatusCode: resp.StatusCode,
		Body:       readBodyForError(resp.Body),
	}
}

// readBodyForError reads at most maxErrorBodySize bytes for inclusion in an
// error message.
func readBodyForError(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return fmt.Sprintf("(failed to read response body: %v)", err)
	}
	return strings.TrimSpace(string(data))
}

// parseRetryAfter interprets a Retry-After header value as a delay. Both
// delta-seconds and HTTP-date forms are accepted; unparseable values yield
// zero so the caller falls back to its own backoff.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// IsNotFound reports whether err is a provider 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
