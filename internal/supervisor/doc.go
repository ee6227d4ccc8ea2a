// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

// Package supervisor builds the suture supervision tree that keeps the
// long-running pieces of the service alive.
//
// The root supervisor owns two child supervisors: the api layer runs the
// HTTP server, the maintenance layer runs the cache janitor and the badger
// value-log GC loop. Each child restarts independently with suture's
// backoff policy, so a wedged maintenance job cannot starve the API of
// restarts. Supervisor events are logged through sutureslog into the
// application's zerolog output via the slog adapter.
package supervisor
