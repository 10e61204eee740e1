package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheService_ExpiryAndPrefix(t *testing.T) {
	cache := NewCacheService(0)
	now := time.Now()
	cache.now = func() time.Time { return now }

	cache.Set(DashboardCacheKey(), 1, time.Minute)
	cache.Set(AnalyticsCacheKey("day", 30), 2, time.Minute)
	cache.Set("other", 3, time.Minute)

	v, ok := cache.Get(DashboardCacheKey())
	require.True(t, ok)
	assert.Equal(t, 1, v)

	cache.InvalidateAdminStats()
	_, ok = cache.Get(AnalyticsCacheKey("day", 30))
	assert.False(t, ok)
	_, ok = cache.Get("other")
	assert.True(t, ok)

	cache.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, ok = cache.Get("other")
	assert.False(t, ok)
}

func TestCacheService_CloseIsIdempotent(t *testing.T) {
	cache := NewCacheService(time.Millisecond)
	cache.Close()
	assert.NotPanics(t, cache.Close)
}
