package services

import (
	"sync"
	"time"

	"scorecardbackend/types"
)

type cacheEntry struct {
	report   types.ScoreReport
	storedAt time.Time
}

// ScoreCache is an in-memory score cache keyed by symbol and profile. It is
// an explicit value owned by whoever constructs the service stack, so tests
// can build isolated instances instead of sharing package state.
type ScoreCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

// DefaultScoreCache is the instance the package-level services share. Tests
// build their own.
var DefaultScoreCache = NewScoreCache(15 * time.Minute)

func NewScoreCache(ttl time.Duration) *ScoreCache {
	return &ScoreCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func cacheKey(symbol, profile string) string {
	return symbol + "|" + profile
}

// Get returns the cached report for the symbol/profile pair if it is still
// within its TTL.
func (c *ScoreCache) Get(symbol, profile string) (types.ScoreReport, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[cacheKey(symbol, profile)]
	if !ok || time.Since(entry.storedAt) > c.ttl {
		return types.ScoreReport{}, false
	}
	return entry.report, true
}

func (c *ScoreCache) Put(report types.ScoreReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(report.Symbol, report.Profile)] = cacheEntry{
		report:   report,
		storedAt: time.Now(),
	}
}

// Invalidate drops every cached report for a symbol across all profiles.
func (c *ScoreCache) Invalidate(symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if entry.report.Symbol == symbol {
			delete(c.entries, key)
		}
	}
}

// Sweep removes expired entries and reports how many were dropped. The main
// loop calls this on a ticker so the map does not grow without bound.
func (c *ScoreCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key, entry := range c.entries {
		if time.Since(entry.storedAt) > c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of live entries, expired or not.
func (c *ScoreCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
