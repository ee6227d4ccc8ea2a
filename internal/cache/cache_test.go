// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package cache

import (
	"testing"
	"time"
)

func TestCacheSetAndGet(t *testing.T) {
	c := New("test", time.Minute)

	c.Set("movie_details:abc", "envelope")
	got, ok := c.Get("movie_details:abc")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != "envelope" {
		t.Errorf("expected stored value, got %v", got)
	}
}

func TestCacheMissOnUnknownKey(t *testing.T) {
	c := New("test", time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}
	stats := c.GetStats()
	if stats.Misses != 1 {
		t.Errorf("expected 1 miss, got %d", stats.Misses)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := New("test", time.Minute)

	c.SetWithTTL("short", "v", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("expected expired entry to miss")
	}
	stats := c.GetStats()
	if stats.Evictions != 1 {
		t.Errorf("expected expired entry to count as eviction, got %d", stats.Evictions)
	}
}

func TestCacheOverwrite(t *testing.T) {
	c := New("test", time.Minute)

	c.Set("key", "first")
	c.Set("key", "second")
	got, _ := c.Get("key")
	if got != "second" {
		t.Errorf("expected overwritten value, got %v", got)
	}
	if stats := c.GetStats(); stats.TotalKeys != 1 {
		t.Errorf("expected 1 key after overwrite, got %d", stats.TotalKeys)
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := New("test", time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected deleted key to miss")
	}

	c.Clear()
	if _, ok := c.Get("b"); ok {
		t.Error("expected cleared cache to miss")
	}
	if stats := c.GetStats(); stats.TotalKeys != 0 {
		t.Errorf("expected empty cache, got %d keys", stats.TotalKeys)
	}
}

func TestCacheRemoveExpired(t *testing.T) {
	c := New("test", time.Minute)

	c.SetWithTTL("stale1", "v", time.Millisecond)
	c.SetWithTTL("stale2", "v", time.Millisecond)
	c.Set("fresh", "v")
	time.Sleep(10 * time.Millisecond)

	if evicted := c.RemoveExpired(); evicted != 2 {
		t.Errorf("expected 2 evictions, got %d", evicted)
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Error("sweep should keep unexpired entries")
	}
}

func TestCacheHitRate(t *testing.T) {
	c := New("test", time.Minute)

	c.Set("key", "v")
	c.Get("key")
	c.Get("key")
	c.Get("missing")

	want := float64(2) / 3 * 100
	if got := c.HitRate(); got < want-0.01 || got > want+0.01 {
		t.Errorf("expected hit rate %.2f, got %.2f", want, got)
	}
}

func TestKeyStability(t *testing.T) {
	type subject struct {
		MovieID string
		Country string
	}

	k1 := Key("movie_details", subject{MovieID: "tt0133093", Country: "it"})
	k2 := Key("movie_details", subject{MovieID: "tt0133093", Country: "it"})
	if k1 != k2 {
		t.Errorf("equal subjects should produce equal keys: %q vs %q", k1, k2)
	}

	k3 := Key("movie_details", subject{MovieID: "tt0234215", Country: "it"})
	if k1 == k3 {
		t.Error("different subjects should produce different keys")
	}

	k4 := Key("title_search", subject{MovieID: "tt0133093", Country: "it"})
	if k1 == k4 {
		t.Error("different request types should produce different keys")
	}
}
