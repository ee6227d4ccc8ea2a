// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// defaultSweepInterval bounds how long an expired entry can linger before
// the sweep reclaims its memory. Lazy expiry on Get keeps correctness in
// between sweeps.
const defaultSweepInterval = 5 * time.Minute

// Janitor periodically sweeps expired entries out of a cache. It implements
// suture.Service so the supervision tree owns its lifecycle.
type Janitor struct {
	cache    *Cache
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewJanitor creates a janitor for c. A non-positive interval falls back to
// the default sweep interval.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewJanitor(c *Cache, interval time.Duration, logger zerolog.Logger) *Janitor {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Janitor{
		cache:    c,
		interval: interval,
		logger:   logger.With().Str("service", "cache-janitor").Logger(),
		name:     "cache-janitor",
	}
}

// Serve implements the suture.Service interface. It sweeps on a fixed
// schedule until the context is canceled.
func (j *Janitor) Serve(ctx context.Context) error {
	j.logger.Info().
		Dur("interval", j.interval).
		Msg("cache janitor starting")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info().Msg("cache janitor shutting down")
			return ctx.Err()

		case <-ticker.C:
			evicted := j.cache.RemoveExpired()
			if evicted > 0 {
				j.logger.Debug().
					Int("evicted", evicted).
					Msg("swept expired cache entries")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor log messages.
func (j *Janitor) String() string {
	return j.name
}
