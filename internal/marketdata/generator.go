// Package marketdata produces the price series the evolutionary core runs
// on: seeded synthetic series, chronological splits and stress scenarios.
package marketdata

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-evolution/internal/types"
)

// Model selects the price process of the generator.
type Model string

const (
	// ModelRandomWalk adds a standard normal step to the price every bar.
	ModelRandomWalk Model = "random_walk"
	// ModelGBM applies a normal percentage return every bar.
	ModelGBM Model = "gbm"
)

// priceFloor keeps random-walk prices strictly positive.
const priceFloor = 1.0

// Generator generates synthetic price series.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a new Generator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how a series is generated.
type GeneratorConfig struct {
	// Name is the series name
	Name string
	// Model is the price process
	Model Model
	// StartTime is the beginning of the series
	StartTime time.Time
	// Interval is the duration between each bar
	Interval time.Duration
	// Count is the number of points to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility is the step size: absolute for the random walk, relative for GBM
	Volatility float64
	// Trend is the total drift over the series (GBM only)
	Trend float64
}

// DefaultConfig returns the random walk cumsum(randn) + 100 over 1000 bars.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Name:         "synthetic",
		Model:        ModelRandomWalk,
		StartTime:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:     time.Hour,
		Count:        1000,
		InitialPrice: 100.0,
		Volatility:   1.0,
		Trend:        0.0,
	}
}

// GBMConfig returns a geometric Brownian motion series with 1% moves per bar.
func GBMConfig() GeneratorConfig {
	cfg := DefaultConfig()
	cfg.Name = "synthetic_gbm"
	cfg.Model = ModelGBM
	cfg.Volatility = 0.01

	return cfg
}

// normal draws a standard normal value with the Box-Muller transform.
func (g *Generator) normal() float64 {
	u1 := g.rng.Float64()
	for u1 == 0 {
		u1 = g.rng.Float64()
	}

	u2 := g.rng.Float64()

	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// Generate creates a price series based on the configuration.
func (g *Generator) Generate(config GeneratorConfig) types.PriceSeries {
	points := make([]types.PricePoint, config.Count)
	price := config.InitialPrice
	current := config.StartTime

	for i := 0; i < config.Count; i++ {
		if i > 0 {
			price = g.step(config, price)
		}

		points[i] = types.PricePoint{
			Time:  current,
			Price: roundToDecimals(price, 4),
		}

		current = current.Add(config.Interval)
	}

	return types.PriceSeries{Name: config.Name, Points: points}
}

func (g *Generator) step(config GeneratorConfig, price float64) float64 {
	z := g.normal()

	switch config.Model {
	case ModelGBM:
		drift := config.Trend / float64(config.Count) // Distribute trend across bars

		next := price * (1 + config.Volatility*z + drift)
		if next <= 0 {
			next = price * 0.99 // Prevent negative prices
		}

		return next
	case ModelRandomWalk:
		fallthrough
	default:
		next := price + config.Volatility*z
		if next < priceFloor {
			next = 2*priceFloor - next
		}

		return next
	}
}

// Synthetic returns the default random-walk series for a seed.
func Synthetic(seed int64, rows int) types.PriceSeries {
	cfg := DefaultConfig()
	cfg.Count = rows

	return NewGenerator(seed).Generate(cfg)
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
