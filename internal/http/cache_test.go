package http

import (
	"testing"
	"time"

	"rentledger/internal/core"
)

func TestLRUCacheEviction(t *testing.T) {
	cache := newLRUCache[string](3, time.Hour)

	cache.Set("key1", "value1")
	cache.Set("key2", "value2")
	cache.Set("key3", "value3")
	cache.Set("key4", "value4")

	// key1 is the least recently used and falls out.
	if _, found := cache.Get("key1"); found {
		t.Error("key1 should have been evicted")
	}
	for _, key := range []string{"key2", "key3", "key4"} {
		if _, found := cache.Get(key); !found {
			t.Errorf("%s should still exist", key)
		}
	}
}

func TestLRUCacheTTLExpiration(t *testing.T) {
	cache := newLRUCache[string](100, 50*time.Millisecond)

	cache.Set("key1", "value1")
	if _, found := cache.Get("key1"); !found {
		t.Error("key1 should exist immediately")
	}

	time.Sleep(60 * time.Millisecond)
	if _, found := cache.Get("key1"); found {
		t.Error("key1 should have expired")
	}
}

func TestLRUCacheDelete(t *testing.T) {
	cache := newLRUCache[int](10, time.Hour)

	cache.Set("owner", 42)
	cache.Delete("owner")
	if _, found := cache.Get("owner"); found {
		t.Error("deleted entry should be gone")
	}

	// Deleting a missing key is a no-op.
	cache.Delete("missing")
}

func TestDashboardCacheKeyRollsDaily(t *testing.T) {
	yesterday := dashboardCacheKey("owner-1", core.NewDate(2024, 2, 14))
	today := dashboardCacheKey("owner-1", core.NewDate(2024, 2, 15))
	if yesterday == today {
		t.Error("cache key should change across a calendar-day boundary")
	}
	if today != dashboardCacheKey("owner-1", core.NewDate(2024, 2, 15)) {
		t.Error("cache key should be stable within a day")
	}
	if today == dashboardCacheKey("owner-2", core.NewDate(2024, 2, 15)) {
		t.Error("cache key should differ between owners")
	}
}

func TestLRUCacheCleanExpired(t *testing.T) {
	cache := newLRUCache[string](10, 20*time.Millisecond)

	cache.Set("a", "1")
	cache.Set("b", "2")
	time.Sleep(30 * time.Millisecond)
	cache.Set("c", "3")

	if removed := cache.CleanExpired(); removed != 2 {
		t.Errorf("CleanExpired removed %d entries, want 2", removed)
	}
	if _, found := cache.Get("c"); !found {
		t.Error("fresh entry should survive cleanup")
	}
}
