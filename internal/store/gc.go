// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package store

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematographus/internal/metrics"
)

const (
	defaultGCInterval = 10 * time.Minute
	defaultGCRatio    = 0.5
)

// GCService triggers periodic BadgerDB value log garbage collection. It
// implements suture.Service so the supervision tree owns its lifecycle.
type GCService struct {
	store    *Store
	interval time.Duration
	ratio    float64
	logger   zerolog.Logger
	name     string
}

// NewGCService creates a GC service for s. Non-positive interval or ratio
// fall back to defaults.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewGCService(s *Store, interval time.Duration, ratio float64, logger zerolog.Logger) *GCService {
	if interval <= 0 {
		interval = defaultGCInterval
	}
	if ratio <= 0 || ratio >= 1 {
		ratio = defaultGCRatio
	}
	return &GCService{
		store:    s,
		interval: interval,
		ratio:    ratio,
		logger:   logger.With().Str("service", "store-gc").Logger(),
		name:     "store-gc",
	}
}

// Serve implements the suture.Service interface.
func (g *GCService) Serve(ctx context.Context) error {
	g.logger.Info().
		Dur("interval", g.interval).
		Float64("ratio", g.ratio).
		Msg("store GC service starting")

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			g.logger.Info().Msg("store GC service shutting down")
			return ctx.Err()

		case <-ticker.C:
			if err := g.store.RunGC(g.ratio); err != nil {
				metrics.StoreGCRuns.WithLabelValues("error").Inc()
				g.logger.Warn().Err(err).Msg("value log GC failed")
				continue
			}
			metrics.StoreGCRuns.WithLabelValues("success").Inc()
		}
	}
}

// String implements fmt.Stringer for supervisor log messages.
func (g *GCService) String() string {
	return g.name
}
