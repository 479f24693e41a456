package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-evolution/internal/types"
)

// MACD implements the MACD line for a single period parameter: the slow EMA
// uses the period and the fast EMA uses half of it (at least 2). The MACD
// line is fast EMA - slow EMA.
type MACD struct{}

// NewMACD creates a new MACD indicator.
func NewMACD() Indicator {
	return &MACD{}
}

// Name returns the name of the indicator.
func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// Lookback implements Indicator.
func (m *MACD) Lookback(period int) int {
	return period - 1
}

func fastPeriod(period int) int {
	fast := period / 2
	if fast < 2 {
		fast = 2
	}

	return fast
}

// Compute implements Indicator.
func (m *MACD) Compute(prices []float64, period int) ([]float64, error) {
	if err := validatePeriod(m.Name(), period); err != nil {
		return nil, err
	}

	fast := ema(prices, fastPeriod(period))
	slow := ema(prices, period)
	out := undefined(len(prices))

	for i := range prices {
		if math.IsNaN(fast[i]) || math.IsNaN(slow[i]) {
			continue
		}

		out[i] = fast[i] - slow[i]
	}

	return out, nil
}
