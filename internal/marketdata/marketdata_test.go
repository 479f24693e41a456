package marketdata

import (
	"math"
	"testing"

	"github.com/rxtech-lab/argo-evolution/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type MarketDataTestSuite struct {
	suite.Suite
}

func TestMarketDataSuite(t *testing.T) {
	suite.Run(t, new(MarketDataTestSuite))
}

func (suite *MarketDataTestSuite) TestGenerateRandomWalk() {
	series := Synthetic(42, 1000)

	suite.Equal("synthetic", series.Name)
	suite.Equal(1000, series.Len())
	suite.Equal(100.0, series.Points[0].Price)
	suite.NoError(series.Validate())

	for i := 1; i < series.Len(); i++ {
		suite.Equal(DefaultConfig().Interval, series.Points[i].Time.Sub(series.Points[i-1].Time))
	}
}

func (suite *MarketDataTestSuite) TestGenerateGBM() {
	cfg := GBMConfig()
	cfg.Count = 500

	series := NewGenerator(7).Generate(cfg)
	suite.Equal(500, series.Len())
	suite.NoError(series.Validate())

	// relative moves stay in a plausible band for 1% volatility
	for i := 1; i < series.Len(); i++ {
		change := math.Abs(series.Points[i].Price/series.Points[i-1].Price - 1)
		suite.Less(change, 0.1)
	}
}

func (suite *MarketDataTestSuite) TestReproducibility() {
	// Same seed should produce same results
	suite.Equal(Synthetic(42, 300), Synthetic(42, 300))
	suite.NotEqual(Synthetic(42, 300).Prices(), Synthetic(43, 300).Prices())
}

func (suite *MarketDataTestSuite) TestRandomWalkStaysPositive() {
	cfg := DefaultConfig()
	cfg.InitialPrice = 2
	cfg.Count = 5000

	series := NewGenerator(1).Generate(cfg)
	suite.NoError(series.Validate())
}

func (suite *MarketDataTestSuite) TestSplit() {
	series := Synthetic(42, 500)

	inSample, outOfSample, err := Split(series, 0.7, 50)
	suite.Require().NoError(err)
	suite.Equal(350, inSample.Len())
	suite.Equal(150, outOfSample.Len())
	suite.Equal("synthetic_in_sample", inSample.Name)
	suite.Equal(series.Points[350], outOfSample.Points[0])
	suite.True(inSample.Points[349].Time.Before(outOfSample.Points[0].Time))

	_, _, err = Split(series, 0.99, 50)
	suite.True(errors.IsDataInsufficientError(err))

	_, _, err = Split(series, 1.5, 50)
	suite.True(errors.IsConfigurationError(err))
}

func (suite *MarketDataTestSuite) TestStressScenarios() {
	base := Synthetic(42, 400)
	scenarios := StressScenarios(base)

	suite.Len(scenarios, 3)

	names := []string{"synthetic_crash", "synthetic_volatility_spike", "synthetic_reversal"}
	for i, s := range scenarios {
		suite.Equal(names[i], s.Name)
		suite.Equal(base.Len(), s.Len())
		suite.NoError(s.Validate())
		suite.InDelta(base.Points[0].Price, s.Points[0].Price, 1e-9)
		suite.Equal(base.Points[10].Time, s.Points[10].Time)
	}
}

func (suite *MarketDataTestSuite) TestCrashDepth() {
	base := Synthetic(3, 400)
	crashed := Crash(base, 0.3)

	// after the crash window the path is the base path scaled by 0.7
	last := base.Len() - 1
	suite.InDelta(0.7, crashed.Points[last].Price/base.Points[last].Price, 1e-9)
	suite.InDelta(1.0, crashed.Points[100].Price/base.Points[100].Price, 1e-9)
}

func (suite *MarketDataTestSuite) TestReversalMirrorsReturns() {
	base := Synthetic(5, 50)
	reversed := Reversal(base)

	for i := 1; i < base.Len(); i++ {
		up := base.Points[i].Price / base.Points[i-1].Price
		down := reversed.Points[i].Price / reversed.Points[i-1].Price
		suite.InDelta(1.0, up*down, 1e-9)
	}
}
