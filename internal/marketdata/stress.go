package marketdata

import (
	"math"

	"github.com/rxtech-lab/argo-evolution/internal/types"
)

// Scenario names of the built-in stress series.
const (
	ScenarioCrash           = "crash"
	ScenarioVolatilitySpike = "volatility_spike"
	ScenarioReversal        = "reversal"
)

// StressScenarios derives the built-in stress series from base. Each one
// rewrites the bar-to-bar log returns of base and keeps its timestamps.
func StressScenarios(base types.PriceSeries) []types.PriceSeries {
	return []types.PriceSeries{
		Crash(base, 0.3),
		VolatilitySpike(base, 3),
		Reversal(base),
	}
}

// logReturns returns r[i] = ln(p[i]/p[i-1]) with r[0] = 0.
func logReturns(prices []float64) []float64 {
	returns := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		returns[i] = math.Log(prices[i] / prices[i-1])
	}

	return returns
}

// rebuild compounds returns from the first price of base.
func rebuild(base types.PriceSeries, name string, returns []float64) types.PriceSeries {
	points := make([]types.PricePoint, base.Len())
	if base.Len() == 0 {
		return types.PriceSeries{Name: name, Points: points}
	}

	logPrice := math.Log(base.Points[0].Price)

	for i, p := range base.Points {
		logPrice += returns[i]
		points[i] = types.PricePoint{Time: p.Time, Price: math.Exp(logPrice)}
	}

	return types.PriceSeries{Name: name, Points: points}
}

// Crash drops the price by depth (0.3 = 30%) spread over the bars between
// 50% and 55% of the series.
func Crash(base types.PriceSeries, depth float64) types.PriceSeries {
	returns := logReturns(base.Prices())

	start := base.Len() / 2
	end := start + max(1, base.Len()/20)

	if end > base.Len() {
		end = base.Len()
	}

	if start >= 1 && start < end {
		shock := math.Log(1-depth) / float64(end-start)
		for i := start; i < end; i++ {
			returns[i] += shock
		}
	}

	return rebuild(base, base.Name+"_"+ScenarioCrash, returns)
}

// VolatilitySpike multiplies the returns of the middle third by factor.
func VolatilitySpike(base types.PriceSeries, factor float64) types.PriceSeries {
	returns := logReturns(base.Prices())

	for i := base.Len() / 3; i < 2*base.Len()/3; i++ {
		returns[i] *= factor
	}

	return rebuild(base, base.Name+"_"+ScenarioVolatilitySpike, returns)
}

// Reversal mirrors every return, so rallies become sell-offs.
func Reversal(base types.PriceSeries) types.PriceSeries {
	returns := logReturns(base.Prices())

	for i := range returns {
		returns[i] = -returns[i]
	}

	return rebuild(base, base.Name+"_"+ScenarioReversal, returns)
}
