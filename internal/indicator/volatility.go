package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-evolution/internal/types"
)

// Volatility is the population standard deviation of simple returns over
// the last period bars.
type Volatility struct{}

// NewVolatility creates a new Volatility indicator.
func NewVolatility() Indicator {
	return &Volatility{}
}

// Name returns the name of the indicator.
func (v *Volatility) Name() types.IndicatorType {
	return types.IndicatorTypeVolatility
}

// Lookback implements Indicator.
func (v *Volatility) Lookback(period int) int {
	return period
}

// Compute implements Indicator.
func (v *Volatility) Compute(prices []float64, period int) ([]float64, error) {
	if err := validatePeriod(v.Name(), period); err != nil {
		return nil, err
	}

	out := undefined(len(prices))
	if len(prices) <= period {
		return out, nil
	}

	returns := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		returns[i] = prices[i]/prices[i-1] - 1
	}

	for i := period; i < len(prices); i++ {
		mean := 0.0
		for j := i - period + 1; j <= i; j++ {
			mean += returns[j]
		}

		mean /= float64(period)

		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := returns[j] - mean
			variance += d * d
		}

		out[i] = math.Sqrt(variance / float64(period))
	}

	return out, nil
}
