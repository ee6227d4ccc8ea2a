// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

// Package services wraps application components as suture services.
//
// Each wrapper translates a component's own lifecycle into suture's
// context-aware Serve contract: the blocking server is started in a
// goroutine and shut down when the context ends. Wrappers depend on
// small interfaces rather than concrete types so they can be exercised
// with test doubles. Periodic maintenance services (the cache janitor,
// the store garbage collector) implement suture.Service directly in
// their own packages.
package services
