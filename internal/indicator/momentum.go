package indicator

import (
	"github.com/rxtech-lab/argo-evolution/internal/types"
)

// Momentum is the rate of change over the period: price[t]/price[t-period] - 1.
type Momentum struct{}

// NewMomentum creates a new Momentum indicator.
func NewMomentum() Indicator {
	return &Momentum{}
}

// Name returns the name of the indicator.
func (m *Momentum) Name() types.IndicatorType {
	return types.IndicatorTypeMomentum
}

// Lookback implements Indicator.
func (m *Momentum) Lookback(period int) int {
	return period
}

// Compute implements Indicator.
func (m *Momentum) Compute(prices []float64, period int) ([]float64, error) {
	if err := validatePeriod(m.Name(), period); err != nil {
		return nil, err
	}

	out := undefined(len(prices))
	for i := period; i < len(prices); i++ {
		out[i] = prices[i]/prices[i-period] - 1
	}

	return out, nil
}
