// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/cinematographus/internal/metrics"
)

// Metrics instruments each request with the API Prometheus metrics:
// active request gauge, request counter and latency histogram.
//
// The endpoint label uses the Chi route pattern ("/api/v1/movies/{id}/details")
// rather than the raw path, keeping label cardinality bounded no matter how
// many distinct ids are requested.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		endpoint := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			endpoint = rctx.RoutePattern()
		}
		metrics.RecordAPIRequest(r.Method, endpoint, strconv.Itoa(rec.status), time.Since(start))
	})
}
