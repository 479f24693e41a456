package types

import (
	"fmt"
	"math"
	"time"
)

// PricePoint is a single observation of a time-ordered price series.
type PricePoint struct {
	Time  time.Time `yaml:"time" json:"time" csv:"time"`
	Price float64   `yaml:"price" json:"price" csv:"price"`
}

// PriceSeries is the input of the fitness evaluator. Points must be in
// strictly increasing time order.
type PriceSeries struct {
	Name   string       `yaml:"name" json:"name"`
	Points []PricePoint `yaml:"points" json:"points"`
}

// Len returns the number of points.
func (s PriceSeries) Len() int {
	return len(s.Points)
}

// Prices returns the price column as a fresh slice.
func (s PriceSeries) Prices() []float64 {
	prices := make([]float64, len(s.Points))
	for i, p := range s.Points {
		prices[i] = p.Price
	}

	return prices
}

// Slice returns the points in [start, end) under a new name. The points are
// copied so the result can be modified independently.
func (s PriceSeries) Slice(name string, start, end int) PriceSeries {
	if start < 0 {
		start = 0
	}

	if end > len(s.Points) {
		end = len(s.Points)
	}

	if start > end {
		start = end
	}

	points := make([]PricePoint, end-start)
	copy(points, s.Points[start:end])

	return PriceSeries{
		Name:   name,
		Points: points,
	}
}

// Validate checks the series is chronological and every price is positive and finite.
func (s PriceSeries) Validate() error {
	for i, p := range s.Points {
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price <= 0 {
			return fmt.Errorf("series %s: invalid price %v at index %d", s.Name, p.Price, i)
		}

		if i > 0 && !p.Time.After(s.Points[i-1].Time) {
			return fmt.Errorf("series %s: point %d is not after point %d", s.Name, i, i-1)
		}
	}

	return nil
}
