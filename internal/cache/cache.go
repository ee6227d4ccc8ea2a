// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

// Package cache provides the in-memory TTL cache that fronts the
// aggregation services. Entries hold fully assembled response envelopes so
// a hit skips every upstream call for that request.
package cache

import (
	"sync"
	"time"

	"github.com/tomtom215/cinematographus/internal/metrics"
)

// Entry represents a cached item with expiration.
type Entry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// Cache provides a thread-safe in-memory cache with TTL support. The name
// identifies the cache in metrics so multiple caches can coexist.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	name    string
	stats   Stats
}

// Stats tracks cache performance counters.
type Stats struct {
	mu          sync.RWMutex
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// New creates a cache whose entries expire after ttl. Expired entries are
// dropped lazily on access; run a Janitor for periodic sweeps.
//
// Example:
//
//	c := cache.New("aggregation", 30*time.Minute)
//	c.Set(key, envelope)
//	if data, ok := c.Get(key); ok {
//	    return data.(aggregate.Envelope), nil
//	}
func New(name string, ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		name:    name,
		stats: Stats{
			LastCleanup: time.Now(),
		},
	}
}

// Get retrieves a value by key. An expired entry is removed and counted as
// a miss.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return nil, false
	}

	if time.Now().After(entry.ExpiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		size := len(c.entries)
		c.mu.Unlock()
		c.recordMiss()
		c.recordEvictions(1, size)
		return nil, false
	}

	c.recordHit()
	return entry.Data, true
}

// Set stores a value with the default TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL, overwriting any existing
// entry under the same key.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = Entry{
		Data:      value,
		ExpiresAt: time.Now().Add(ttl),
	}
	size := len(c.entries)
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.TotalKeys = int64(size)
	c.stats.mu.Unlock()
	metrics.CacheSize.WithLabelValues(c.name).Set(float64(size))
}

// Delete removes one entry. Safe to call for keys that do not exist.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	size := len(c.entries)
	c.mu.Unlock()

	c.recordEvictions(1, size)
}

// Clear removes all entries in one operation.
func (c *Cache) Clear() {
	c.mu.Lock()
	evicted := len(c.entries)
	c.entries = make(map[string]Entry)
	c.mu.Unlock()

	c.recordEvictions(evicted, 0)
}

// RemoveExpired sweeps the cache and drops every expired entry, returning
// the number removed. The Janitor calls this on a schedule.
func (c *Cache) RemoveExpired() int {
	now := time.Now()
	c.mu.Lock()
	evicted := 0
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}
	size := len(c.entries)
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.LastCleanup = now
	c.stats.mu.Unlock()
	c.recordEvictions(evicted, size)
	return evicted
}

// GetStats returns a snapshot of the cache counters.
func (c *Cache) GetStats() Stats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()

	return Stats{
		Hits:        c.stats.Hits,
		Misses:      c.stats.Misses,
		Evictions:   c.stats.Evictions,
		TotalKeys:   c.stats.TotalKeys,
		LastCleanup: c.stats.LastCleanup,
	}
}

// HitRate returns the cache hit rate as a percentage.
func (c *Cache) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

func (c *Cache) recordHit() {
	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
	metrics.CacheHits.WithLabelValues(c.name).Inc()
}

func (c *Cache) recordMiss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
	metrics.CacheMisses.WithLabelValues(c.name).Inc()
}

func (c *Cache) recordEvictions(n, size int) {
	c.stats.mu.Lock()
	c.stats.Evictions += int64(n)
	c.stats.TotalKeys = int64(size)
	c.stats.mu.Unlock()
	if n > 0 {
		metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(n))
	}
	metrics.CacheSize.WithLabelValues(c.name).Set(float64(size))
}
