package indicator

import (
	"github.com/rxtech-lab/argo-evolution/internal/types"
)

// RSI represents the Relative Strength Index indicator.
type RSI struct{}

// NewRSI creates a new RSI indicator.
func NewRSI() Indicator {
	return &RSI{}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Lookback implements Indicator. RSI needs period price changes.
func (r *RSI) Lookback(period int) int {
	return period
}

// Compute implements Indicator using Wilder's smoothing.
func (r *RSI) Compute(prices []float64, period int) ([]float64, error) {
	if err := validatePeriod(r.Name(), period); err != nil {
		return nil, err
	}

	out := undefined(len(prices))
	if len(prices) <= period {
		return out, nil
	}

	avgGain := 0.0
	avgLoss := 0.0

	// First average
	for i := 1; i <= period; i++ {
		gain, loss := change(prices[i-1], prices[i])
		avgGain += gain
		avgLoss += loss
	}

	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	// Subsequent averages using Wilder's smoothing method
	for i := period + 1; i < len(prices); i++ {
		gain, loss := change(prices[i-1], prices[i])
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}

	return out, nil
}

func change(prev, curr float64) (gain, loss float64) {
	diff := curr - prev
	if diff > 0 {
		return diff, 0
	}

	return 0, -diff
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}

		return 100 // Perfect uptrend
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs))
}
