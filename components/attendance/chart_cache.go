package attendance

import (
	"sync"
	"time"
)

// RenderCache memoizes rendered chart markup by key.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// DefaultChartCacheLimit bounds how many rendered charts a ChartCache keeps.
const DefaultChartCacheLimit = 64

// ChartCache keeps rendered charts for a fixed time. Stale entries are
// dropped on lookup; once the limit is reached the entry closest to expiry
// makes room for the new one.
type ChartCache struct {
	mu     sync.Mutex
	ttl    time.Duration
	limit  int
	now    func() time.Time
	charts map[string]renderedChart
}

type renderedChart struct {
	markup   string
	storedAt time.Time
}

// ChartCacheOption customizes a ChartCache.
type ChartCacheOption func(*ChartCache)

// WithChartCacheLimit caps the number of stored charts.
func WithChartCacheLimit(limit int) ChartCacheOption {
	return func(c *ChartCache) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// WithChartCacheClock swaps the time source.
func WithChartCacheClock(now func() time.Time) ChartCacheOption {
	return func(c *ChartCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewChartCache builds a cache that keeps charts for ttl. A non-positive ttl
// disables caching.
func NewChartCache(ttl time.Duration, options ...ChartCacheOption) *ChartCache {
	c := &ChartCache{
		ttl:    ttl,
		limit:  DefaultChartCacheLimit,
		now:    time.Now,
		charts: map[string]renderedChart{},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// GetOrRender returns the stored chart for key or renders and stores it.
// Failed renders are not stored.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if c == nil || c.ttl <= 0 {
		return render()
	}
	if markup, ok := c.lookup(key); ok {
		return markup, nil
	}
	markup, err := render()
	if err != nil {
		return "", err
	}
	c.store(key, markup)
	return markup, nil
}

// Len reports how many charts are stored, stale ones included.
func (c *ChartCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.charts)
}

func (c *ChartCache) lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	chart, ok := c.charts[key]
	if !ok {
		return "", false
	}
	if c.now().Sub(chart.storedAt) >= c.ttl {
		delete(c.charts, key)
		return "", false
	}
	return chart.markup, true
}

func (c *ChartCache) store(key, markup string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if _, exists := c.charts[key]; !exists && len(c.charts) >= c.limit {
		c.evict(now)
	}
	c.charts[key] = renderedChart{markup: markup, storedAt: now}
}

// evict drops every stale chart, or the oldest one when none are stale.
// Callers hold mu.
func (c *ChartCache) evict(now time.Time) {
	oldest := ""
	var oldestAt time.Time
	for key, chart := range c.charts {
		if now.Sub(chart.storedAt) >= c.ttl {
			delete(c.charts, key)
			continue
		}
		if oldest == "" || chart.storedAt.Before(oldestAt) {
			oldest, oldestAt = key, chart.storedAt
		}
	}
	if len(c.charts) >= c.limit && oldest != "" {
		delete(c.charts, oldest)
	}
}
