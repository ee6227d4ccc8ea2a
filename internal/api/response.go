// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package api

import (
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/cinematographus/internal/aggregate"
	"github.com/tomtom215/cinematographus/internal/logging"
)

// writeEnvelope serialises env with the given HTTP status code. Encoding
// failures are logged rather than surfaced; by that point the status line
// is already on the wire.
func writeEnvelope(w http.ResponseWriter, statusCode int, env aggregate.Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(env); err != nil {
		logging.Error().Err(err).Msg("failed to encode response envelope")
	}
}

// writeAggregate maps an aggregation envelope onto its transport code:
// "fail" is a missing subject (404), "error" means the upstream providers
// let us down (502), anything else rides on 200.
func writeAggregate(w http.ResponseWriter, env aggregate.Envelope) {
	writeEnvelope(w, httpStatusFor(env.Status), env)
}

func httpStatusFor(status string) int {
	switch status {
	case aggregate.StatusFail:
		return http.StatusNotFound
	case aggregate.StatusError:
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}

// writeSuccess answers with a success envelope. data may be nil, which
// serialises as an explicit null.
func writeSuccess(w http.ResponseWriter, statusCode int, message string, data any) {
	writeEnvelope(w, statusCode, aggregate.Envelope{
		Status:  aggregate.StatusSuccess,
		Message: message,
		Data:    data,
	})
}

// writeFail answers a client-side problem (bad input, missing subject,
// rejected credentials) with a fail envelope and null data.
func writeFail(w http.ResponseWriter, statusCode int, message string) {
	writeEnvelope(w, statusCode, aggregate.Envelope{
		Status:  aggregate.StatusFail,
		Message: message,
		Data:    nil,
	})
}

// writeError answers a server-side problem with an error envelope and
// null data.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeEnvelope(w, statusCode, aggregate.Envelope{
		Status:  aggregate.StatusError,
		Message: message,
		Data:    nil,
	})
}
