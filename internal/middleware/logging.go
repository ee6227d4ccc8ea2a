// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// responseRecorder captures the status code and body size written by the
// wrapped handler. Handlers that never call WriteHeader are recorded as
// 200, matching net/http's implicit behavior.
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// RequestLogger emits one structured log line per request after the
// handler finishes. Client errors log at debug to keep probe noise out
// of production logs; server errors log at warn.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func RequestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			evt := logger.Info()
			switch {
			case rec.status >= http.StatusInternalServerError:
				evt = logger.Warn()
			case rec.status >= http.StatusBadRequest:
				evt = logger.Debug()
			}
			evt.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Int("bytes", rec.bytes).
				Dur("duration", time.Since(start)).
				Str("remote", r.RemoteAddr).
				Str("request_id", GetRequestID(r.Context())).
				Msg("request")
		})
	}
}
