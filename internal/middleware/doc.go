// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

/*
Package middleware provides the infrastructure HTTP middleware shared by
every route group: request ID propagation, structured request logging,
Prometheus instrumentation and gzip compression.

All middleware uses the Chi-native func(http.Handler) http.Handler shape
so it composes with r.Use alongside the Chi ecosystem middleware
(Recoverer, RealIP, cors, httprate). Authentication middleware lives in
internal/api next to the response envelope it writes.

The conventional stack, outermost first:

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(corsHandler)
	// per-group: rate limit, middleware.Metrics, middleware.Compression

RequestID runs first so every later layer, including panic recovery
logging, can tag its output with the id.
*/
package middleware
