package attendance

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cacheClock struct {
	now time.Time
}

func (c *cacheClock) Now() time.Time { return c.now }

func (c *cacheClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func renderCounter(markup string) (func() (string, error), *int) {
	calls := 0
	return func() (string, error) {
		calls++
		return markup, nil
	}, &calls
}

func TestChartCacheStoresEntry(t *testing.T) {
	cache := NewChartCache(time.Minute)
	render, calls := renderCounter("html")

	val1, err := cache.GetOrRender("key", render)
	require.NoError(t, err)
	val2, err := cache.GetOrRender("key", render)
	require.NoError(t, err)

	assert.Equal(t, "html", val1)
	assert.Equal(t, val1, val2)
	assert.Equal(t, 1, *calls)
	assert.Equal(t, 1, cache.Len())
}

func TestChartCacheExpires(t *testing.T) {
	clock := &cacheClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	cache := NewChartCache(time.Minute, WithChartCacheClock(clock.Now))
	render, calls := renderCounter("fresh")

	_, err := cache.GetOrRender("key", render)
	require.NoError(t, err)
	clock.Advance(59 * time.Second)
	_, err = cache.GetOrRender("key", render)
	require.NoError(t, err)
	assert.Equal(t, 1, *calls)

	clock.Advance(time.Second)
	_, err = cache.GetOrRender("key", render)
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
}

func TestChartCacheEvictsOldestAtLimit(t *testing.T) {
	clock := &cacheClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	cache := NewChartCache(time.Hour, WithChartCacheClock(clock.Now), WithChartCacheLimit(2))

	for _, key := range []string{"daily", "status", "students"} {
		render, _ := renderCounter(key)
		_, err := cache.GetOrRender(key, render)
		require.NoError(t, err)
		clock.Advance(time.Second)
	}
	assert.Equal(t, 2, cache.Len())

	render, calls := renderCounter("daily")
	_, err := cache.GetOrRender("daily", render)
	require.NoError(t, err)
	assert.Equal(t, 1, *calls, "oldest entry should have been evicted")

	render, calls = renderCounter("students")
	_, err = cache.GetOrRender("students", render)
	require.NoError(t, err)
	assert.Equal(t, 0, *calls)
}

func TestChartCacheSkipsErrors(t *testing.T) {
	cache := NewChartCache(time.Minute)
	_, err := cache.GetOrRender("key", func() (string, error) { return "", errors.New("boom") })
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len())
}

func TestChartCacheDisabled(t *testing.T) {
	cache := NewChartCache(0)
	render, calls := renderCounter("html")
	for i := 0; i < 3; i++ {
		_, err := cache.GetOrRender("key", render)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, *calls)
	assert.Equal(t, 0, cache.Len())
}
