package fitness

import (
	"github.com/rxtech-lab/argo-evolution/internal/indicator"
	"github.com/rxtech-lab/argo-evolution/internal/types"
)

// Series is a price series prepared for evaluation. Indicator outputs are
// computed on first use and shared by every genome evaluated on it.
type Series struct {
	name  string
	cache *indicator.SeriesCache
}

// NewSeries prepares ps for evaluation with the indicators in registry.
func NewSeries(ps types.PriceSeries, registry indicator.IndicatorRegistry) *Series {
	return &Series{
		name:  ps.Name,
		cache: indicator.NewSeriesCache(registry, ps.Prices()),
	}
}

// Name returns the series name.
func (s *Series) Name() string {
	return s.name
}

// Len returns the number of bars.
func (s *Series) Len() int {
	return s.cache.Len()
}
