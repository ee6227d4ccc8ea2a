// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package aggregate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/tomtom215/cinematographus/internal/upstream"
)

// fakeNetError satisfies net.Error for transport-level classification tests.
type fakeNetError struct {
	timeout bool
}

func (e *fakeNetError) Error() string   { return "dial tcp: i/o timeout" }
func (e *fakeNetError) Timeout() bool   { return e.timeout }
func (e *fakeNetError) Temporary() bool { return false }

func TestErrorString(t *testing.T) {
	if got := NewError(KindTimeout, "omdb: no response within 2s").Error(); got != "timeout: omdb: no response within 2s" {
		t.Errorf("Expected the kind-prefixed detail, got %q", got)
	}
	if got := NewError(KindNotFound, "").Error(); got != "not_found" {
		t.Errorf("Expected the bare kind, got %q", got)
	}
}

func TestClassifyPassesThroughClassifiedErrors(t *testing.T) {
	orig := NewError(KindNotFound, "movie not found")

	if got := classify(orig, context.Background()); got != orig {
		t.Errorf("Expected the original *Error back, got %v", got)
	}

	wrapped := fmt.Errorf("metadata lookup: %w", orig)
	if got := classify(wrapped, context.Background()); got != orig {
		t.Errorf("Expected the wrapped *Error to unwrap, got %v", got)
	}
}

func TestClassifyContextErrors(t *testing.T) {
	live := context.Background()
	expired, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name   string
		err    error
		parent context.Context
		want   Kind
	}{
		{"deadline with live parent", context.DeadlineExceeded, live, KindTimeout},
		{"deadline with expired parent", context.DeadlineExceeded, expired, KindDeadlineExceeded},
		{"cancel with expired parent", context.Canceled, expired, KindDeadlineExceeded},
		{"wrapped deadline", fmt.Errorf("omdb: %w", context.DeadlineExceeded), live, KindTimeout},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := classify(tc.err, tc.parent); got.Kind != tc.want {
				t.Errorf("Expected kind=%s, got %s", tc.want, got.Kind)
			}
		})
	}
}

func TestClassifyStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   Kind
	}{
		{"not found", http.StatusNotFound, KindNotFound},
		{"rate limited", http.StatusTooManyRequests, KindRateLimited},
		{"server error", http.StatusInternalServerError, KindUnavailable},
		{"bad gateway", http.StatusBadGateway, KindUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := &upstream.StatusError{Provider: "omdb", StatusCode: tc.status}
			got := classify(err, context.Background())
			if got.Kind != tc.want {
				t.Errorf("Expected kind=%s, got %s", tc.want, got.Kind)
			}
			if got.Detail == "" {
				t.Error("Expected the provider detail to survive classification")
			}
		})
	}
}

func TestClassifyDecodeError(t *testing.T) {
	err := &upstream.DecodeError{Provider: "tmdb", Err: errors.New("unexpected end of JSON input")}

	got := classify(err, context.Background())
	if got.Kind != KindMalformed {
		t.Errorf("Expected kind=malformed, got %s", got.Kind)
	}
}

func TestClassifyNetError(t *testing.T) {
	got := classify(&fakeNetError{timeout: true}, context.Background())
	if got.Kind != KindTimeout {
		t.Errorf("Expected kind=timeout for a transport timeout, got %s", got.Kind)
	}

	got = classify(&fakeNetError{timeout: false}, context.Background())
	if got.Kind != KindUnavailable {
		t.Errorf("Expected kind=unavailable for a plain transport error, got %s", got.Kind)
	}
}

func TestClassifyUnknownError(t *testing.T) {
	got := classify(errors.New("connection refused"), context.Background())

	if got.Kind != KindUnavailable {
		t.Errorf("Expected kind=unavailable, got %s", got.Kind)
	}
	if got.Detail != "connection refused" {
		t.Errorf("Expected the message as detail, got %q", got.Detail)
	}
}
