package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-evolution/internal/types"
)

// BollingerBands exposes the %B position of the price inside the bands:
// 0 at the lower band, 1 at the upper band. The bands are the SMA plus and
// minus stdDev population standard deviations.
type BollingerBands struct {
	stdDev float64 // Number of standard deviations
}

// NewBollingerBands creates a new Bollinger Bands indicator with default configuration.
func NewBollingerBands() Indicator {
	return &BollingerBands{
		stdDev: 2.0, // Default standard deviation
	}
}

// Name returns the name of the indicator.
func (bb *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

// Lookback implements Indicator.
func (bb *BollingerBands) Lookback(period int) int {
	return period - 1
}

// Compute implements Indicator. A flat window (zero width) yields 0.5.
func (bb *BollingerBands) Compute(prices []float64, period int) ([]float64, error) {
	if err := validatePeriod(bb.Name(), period); err != nil {
		return nil, err
	}

	middle := sma(prices, period)
	out := undefined(len(prices))

	for i := period - 1; i < len(prices); i++ {
		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := prices[j] - middle[i]
			variance += d * d
		}

		sd := math.Sqrt(variance / float64(period))
		width := 2 * bb.stdDev * sd

		if width == 0 {
			out[i] = 0.5

			continue
		}

		lower := middle[i] - bb.stdDev*sd
		out[i] = (prices[i] - lower) / width
	}

	return out, nil
}
