// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

// Package api exposes the HTTP surface of the recommendation service.
//
// Every endpoint answers with the same three-field envelope:
//
//	{"status": "success" | "fail" | "error", "message": "...", "data": ...}
//
// "fail" means the request was well-formed but the subject does not exist
// (or the caller got something wrong), "error" means the service itself or
// its upstream providers could not produce an answer. Aggregated movie
// endpoints map those statuses onto 200, 404 and 502; auth and preference
// endpoints use the usual 4xx codes with the same envelope shape.
//
// Routing is chi with per-group rate limits: auth endpoints are throttled
// hard, movie endpoints carry the configured default limit, and /metrics
// is served outside the versioned tree.
package api
