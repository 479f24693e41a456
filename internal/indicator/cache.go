package indicator

import (
	"sync"

	"github.com/rxtech-lab/argo-evolution/internal/types"
)

// SeriesCache memoizes indicator outputs for one price series, keyed by
// (type, period). It is safe for concurrent use by evaluation workers.
// Returned slices are shared and must be treated as read-only.
type SeriesCache struct {
	registry IndicatorRegistry
	prices   []float64
	values   map[types.IndicatorRef][]float64
	mu       sync.RWMutex
}

// NewSeriesCache creates a cache over prices. prices is not copied and must not change.
func NewSeriesCache(registry IndicatorRegistry, prices []float64) *SeriesCache {
	return &SeriesCache{
		registry: registry,
		prices:   prices,
		values:   make(map[types.IndicatorRef][]float64),
		mu:       sync.RWMutex{},
	}
}

// Prices returns the underlying price column.
func (c *SeriesCache) Prices() []float64 {
	return c.prices
}

// Len returns the number of bars in the series.
func (c *SeriesCache) Len() int {
	return len(c.prices)
}

// Get returns the indicator series for ref, computing it at most once per key.
func (c *SeriesCache) Get(ref types.IndicatorRef) ([]float64, error) {
	c.mu.RLock()
	values, ok := c.values[ref]
	c.mu.RUnlock()

	if ok {
		return values, nil
	}

	ind, err := c.registry.GetIndicator(ref.Type)
	if err != nil {
		return nil, err
	}

	computed, err := ind.Compute(c.prices, ref.Period)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// another worker may have filled the key while we computed
	if existing, ok := c.values[ref]; ok {
		return existing, nil
	}

	c.values[ref] = computed

	return computed, nil
}

// Size returns the number of cached series.
func (c *SeriesCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.values)
}
