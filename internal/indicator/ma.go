package indicator

import (
	"github.com/rxtech-lab/argo-evolution/internal/types"
)

// MA indicator implements Simple Moving Average calculation.
type MA struct{}

// NewMA creates a new MA indicator.
func NewMA() Indicator {
	return &MA{}
}

// Name returns the name of the indicator.
func (m *MA) Name() types.IndicatorType {
	return types.IndicatorTypeMA
}

// Lookback implements Indicator.
func (m *MA) Lookback(period int) int {
	return period - 1
}

// Compute implements Indicator.
func (m *MA) Compute(prices []float64, period int) ([]float64, error) {
	if err := validatePeriod(m.Name(), period); err != nil {
		return nil, err
	}

	return sma(prices, period), nil
}
