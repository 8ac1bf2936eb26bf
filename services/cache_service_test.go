package services

import (
	"testing"
	"time"

	"scorecardbackend/types"
)

func TestScoreCacheRoundTrip(t *testing.T) {
	cache := NewScoreCache(time.Minute)
	report := types.ScoreReport{Symbol: "AAA", Profile: ProfileGARP, CompositeScore: types.CompositeScore{Value: 80}}

	if _, ok := cache.Get("AAA", ProfileGARP); ok {
		t.Fatal("empty cache reported a hit")
	}

	cache.Put(report)
	got, ok := cache.Get("AAA", ProfileGARP)
	if !ok || got.CompositeScore.Value != 80 {
		t.Errorf("cache get = (%v, %v), want the stored report", got.CompositeScore.Display(), ok)
	}

	// Same symbol, different profile is a distinct entry.
	if _, ok := cache.Get("AAA", ProfileQARP); ok {
		t.Error("profile must be part of the cache key")
	}
}

func TestScoreCacheExpiry(t *testing.T) {
	cache := NewScoreCache(time.Millisecond)
	cache.Put(types.ScoreReport{Symbol: "AAA", Profile: ProfileGARP})

	time.Sleep(5 * time.Millisecond)
	if _, ok := cache.Get("AAA", ProfileGARP); ok {
		t.Error("expired entry reported as a hit")
	}

	if removed := cache.Sweep(); removed != 1 {
		t.Errorf("sweep removed %d entries, want 1", removed)
	}
	if cache.Len() != 0 {
		t.Errorf("cache holds %d entries after sweep, want 0", cache.Len())
	}
}

func TestScoreCacheInvalidate(t *testing.T) {
	cache := NewScoreCache(time.Minute)
	cache.Put(types.ScoreReport{Symbol: "AAA", Profile: ProfileGARP})
	cache.Put(types.ScoreReport{Symbol: "AAA", Profile: ProfileQARP})
	cache.Put(types.ScoreReport{Symbol: "BBB", Profile: ProfileGARP})

	cache.Invalidate("AAA")
	if _, ok := cache.Get("AAA", ProfileGARP); ok {
		t.Error("invalidated symbol still cached")
	}
	if _, ok := cache.Get("AAA", ProfileQARP); ok {
		t.Error("invalidation must cover every profile of the symbol")
	}
	if _, ok := cache.Get("BBB", ProfileGARP); !ok {
		t.Error("invalidation leaked into other symbols")
	}
}
