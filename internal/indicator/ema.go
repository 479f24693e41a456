package indicator

import (
	"github.com/rxtech-lab/argo-evolution/internal/types"
)

// EMA implements the Exponential Moving Average. The first value is the SMA
// of the first period prices; after that alpha = 2/(period+1).
type EMA struct{}

// NewEMA creates a new EMA indicator.
func NewEMA() Indicator {
	return &EMA{}
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Lookback implements Indicator.
func (e *EMA) Lookback(period int) int {
	return period - 1
}

// Compute implements Indicator.
func (e *EMA) Compute(prices []float64, period int) ([]float64, error) {
	if err := validatePeriod(e.Name(), period); err != nil {
		return nil, err
	}

	return ema(prices, period), nil
}
