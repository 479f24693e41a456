// Package indicator computes technical indicators over an in-memory price
// column. Every indicator produces one value per input price; entries that
// are not yet defined (inside the warm-up window) are NaN.
package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-evolution/internal/types"
	"github.com/rxtech-lab/argo-evolution/pkg/errors"
)

// Indicator interface defines methods that any technical indicator must implement
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Lookback returns the number of leading values that are undefined for the period.
	// It never exceeds the period.
	Lookback(period int) int
	// Compute returns the indicator series for prices. len(result) == len(prices).
	Compute(prices []float64, period int) ([]float64, error)
}

// validatePeriod is shared by every indicator.
func validatePeriod(name types.IndicatorType, period int) error {
	if period < 2 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "%s: period must be at least 2, got %d", name, period)
	}

	return nil
}

// undefined returns a slice of n NaN values.
func undefined(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	return out
}

// sma computes a simple moving average with a running sum, chronologically.
func sma(prices []float64, period int) []float64 {
	out := undefined(len(prices))
	if len(prices) < period {
		return out
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += prices[i]
	}

	out[period-1] = sum / float64(period)

	for i := period; i < len(prices); i++ {
		sum += prices[i] - prices[i-period]
		out[i] = sum / float64(period)
	}

	return out
}

// ema computes an exponential moving average seeded with the SMA of the first period values.
func ema(prices []float64, period int) []float64 {
	out := undefined(len(prices))
	if len(prices) < period {
		return out
	}

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += prices[i]
	}

	prev := seed / float64(period)
	out[period-1] = prev
	alpha := 2.0 / float64(period+1)

	for i := period; i < len(prices); i++ {
		prev = alpha*prices[i] + (1-alpha)*prev
		out[i] = prev
	}

	return out
}
