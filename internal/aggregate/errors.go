// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package aggregate

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/tomtom215/cinematographus/internal/upstream"
)

// Kind classifies an upstream failure into one of the fixed,
// provider-agnostic categories. Branch tasks normalize every error to a
// Kind before it reaches the orchestrator; nothing downstream ever
// inspects a provider-specific error shape.
type Kind string

const (
	// KindNotFound is a 404-equivalent: the subject does not exist upstream.
	KindNotFound Kind = "not_found"

	// KindRateLimited is a 429-equivalent: the provider refused for quota reasons.
	KindRateLimited Kind = "rate_limited"

	// KindUnavailable covers transport failures and upstream 5xx responses.
	KindUnavailable Kind = "unavailable"

	// KindTimeout means the branch's own timeout elapsed first.
	KindTimeout Kind = "timeout"

	// KindDeadlineExceeded means the global deadline elapsed while the
	// branch was still pending.
	KindDeadlineExceeded Kind = "deadline_exceeded"

	// KindMalformed means the upstream responded but the payload could not
	// be decoded.
	KindMalformed Kind = "malformed"
)

// Error is a classified branch failure. Branch capabilities that already
// know their failure category (for example a store lookup that found no
// user) may return *Error directly; the branch task passes it through
// unchanged.
type Error struct {
	Kind   Kind
	Detail string
}

// NewError builds a pre-classified branch error.
func NewError(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Detail
}

// classify maps an arbitrary branch error onto one Kind. The mapping is
// fixed and provider-agnostic: pre-classified errors pass through,
// context expiry splits into Timeout versus DeadlineExceeded depending on
// whether the global deadline already fired, HTTP status errors map by
// status code, decode failures are Malformed, and everything else is
// Unavailable.
func classify(err error, parent context.Context) *Error {
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		if parent.Err() != nil {
			return NewError(KindDeadlineExceeded, err.Error())
		}
		return NewError(KindTimeout, err.Error())
	}

	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusNotFound:
			return NewError(KindNotFound, statusErr.Error())
		case http.StatusTooManyRequests:
			return NewError(KindRateLimited, statusErr.Error())
		default:
			return NewError(KindUnavailable, statusErr.Error())
		}
	}

	var decodeErr *upstream.DecodeError
	if errors.As(err, &decodeErr) {
		return NewError(KindMalformed, decodeErr.Error())
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewError(KindTimeout, err.Error())
	}

	return NewError(KindUnavailable, err.Error())
}
