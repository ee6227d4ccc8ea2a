// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

func TestJanitorImplementsSutureService(t *testing.T) {
	var _ suture.Service = (*Janitor)(nil)
}

func TestNewJanitorDefaultsInterval(t *testing.T) {
	j := NewJanitor(New("test", time.Minute), 0, zerolog.Nop())
	if j.interval != defaultSweepInterval {
		t.Fatalf("interval = %v, want %v", j.interval, defaultSweepInterval)
	}
	if j.String() != "cache-janitor" {
		t.Fatalf("String() = %q", j.String())
	}
}

func entryCount(c *Cache) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func TestJanitorSweepsExpiredEntries(t *testing.T) {
	c := New("test", 5*time.Millisecond)
	c.Set("stale", "value")

	j := NewJanitor(c, 10*time.Millisecond, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Serve(ctx) }()

	deadline := time.After(2 * time.Second)
	for entryCount(c) > 0 {
		select {
		case <-deadline:
			t.Fatal("janitor never removed the expired entry")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}
