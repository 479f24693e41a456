package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type MarketTestSuite struct {
	suite.Suite
}

func TestMarketSuite(t *testing.T) {
	suite.Run(t, new(MarketTestSuite))
}

func (suite *MarketTestSuite) series(prices ...float64) PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]PricePoint, len(prices))

	for i, p := range prices {
		points[i] = PricePoint{Time: start.Add(time.Duration(i) * time.Minute), Price: p}
	}

	return PriceSeries{Name: "test", Points: points}
}

func (suite *MarketTestSuite) TestPrices() {
	s := suite.series(100, 101, 102.5)
	suite.Equal(3, s.Len())
	suite.Equal([]float64{100, 101, 102.5}, s.Prices())

	// Prices returns a copy
	prices := s.Prices()
	prices[0] = 0
	suite.Equal(100.0, s.Points[0].Price)
}

func (suite *MarketTestSuite) TestSlice() {
	s := suite.series(1, 2, 3, 4, 5)

	head := s.Slice("head", 0, 3)
	suite.Equal("head", head.Name)
	suite.Equal([]float64{1, 2, 3}, head.Prices())

	tail := s.Slice("tail", 3, 99)
	suite.Equal([]float64{4, 5}, tail.Prices())

	empty := s.Slice("empty", 4, 2)
	suite.Equal(0, empty.Len())

	head.Points[0].Price = 42
	suite.Equal(1.0, s.Points[0].Price)
}

func (suite *MarketTestSuite) TestValidate() {
	suite.NoError(suite.series(100, 99, 101).Validate())
	suite.NoError(PriceSeries{}.Validate())

	suite.Error(suite.series(100, 0, 101).Validate())
	suite.Error(suite.series(100, -1).Validate())

	unordered := suite.series(100, 101)
	unordered.Points[1].Time = unordered.Points[0].Time
	suite.Error(unordered.Validate())
}
