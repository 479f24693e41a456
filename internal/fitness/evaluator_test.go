package fitness

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-evolution/internal/config"
	"github.com/rxtech-lab/argo-evolution/internal/genome"
	"github.com/rxtech-lab/argo-evolution/internal/indicator"
	"github.com/rxtech-lab/argo-evolution/internal/logger"
	"github.com/rxtech-lab/argo-evolution/internal/types"
	"github.com/rxtech-lab/argo-evolution/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type EvaluatorTestSuite struct {
	suite.Suite
	registry  indicator.IndicatorRegistry
	evaluator Evaluator
	series    *Series
}

func TestEvaluatorSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorTestSuite))
}

func makeSeries(name string, prices ...float64) types.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]types.PricePoint, len(prices))

	for i, p := range prices {
		points[i] = types.PricePoint{Time: start.Add(time.Duration(i) * time.Hour), Price: p}
	}

	return types.PriceSeries{Name: name, Points: points}
}

func wave(n int) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = 100 + 10*math.Sin(float64(i)/6) + float64(i%7)*0.3
	}

	return prices
}

func (suite *EvaluatorTestSuite) SetupTest() {
	suite.registry = indicator.NewDefaultRegistry()
	suite.evaluator = NewEvaluator(config.DefaultConfig().Fitness, suite.registry, logger.NewNopLogger())
	suite.series = NewSeries(makeSeries("wave", wave(400)...), suite.registry)
}

func (suite *EvaluatorTestSuite) parse(expr string) *genome.Genome {
	g, err := genome.Parse(expr)
	suite.Require().NoError(err)

	return g
}

func (suite *EvaluatorTestSuite) noCostEvaluator() Evaluator {
	return NewEvaluator(config.FitnessConfig{}, suite.registry, logger.NewNopLogger())
}

func (suite *EvaluatorTestSuite) TestDeterministic() {
	g := suite.parse("(if (and (cross_above (ema 5) (ma 20)) (lt (rsi 14) 70)) (size 1) (if (gt (momentum 10) 0.02) (size -0.5) (size 0)))")

	first, err := suite.evaluator.Evaluate(context.Background(), g, suite.series)
	suite.Require().NoError(err)

	second, err := suite.evaluator.Evaluate(context.Background(), g, suite.series)
	suite.Require().NoError(err)

	suite.Equal(first, second)
	suite.Equal(math.Float64bits(first.Score), math.Float64bits(second.Score))

	// a freshly prepared series gives the same numbers
	fresh := NewSeries(makeSeries("wave", wave(400)...), suite.registry)
	third, err := suite.evaluator.Evaluate(context.Background(), g, fresh)
	suite.Require().NoError(err)
	suite.Equal(first, third)
}

func (suite *EvaluatorTestSuite) TestNeverTradingIsZero() {
	for _, expr := range []string{
		"(if false (size 1) (size 0))",
		"(size 0)",
		"(if (gt (ma 10) 1000000) (size 1) (size 0))",
	} {
		result, err := suite.evaluator.Evaluate(context.Background(), suite.parse(expr), suite.series)
		suite.Require().NoError(err, expr)

		suite.Equal(0.0, result.Score, expr)
		suite.Equal(0.0, result.Return, expr)
		suite.Equal(0.0, result.MaxDrawdown, expr)
		suite.Equal(0.0, result.Turnover, expr)
		suite.Equal(0.0, result.LatencyCost, expr)
		suite.False(result.Traded(), expr)
	}
}

func (suite *EvaluatorTestSuite) TestConstantConditionTakesElseBranch() {
	result, err := suite.evaluator.Evaluate(context.Background(), suite.parse("(if false (size 1) (size -1))"), suite.series)
	suite.Require().NoError(err)

	short, err := suite.evaluator.Evaluate(context.Background(), suite.parse("(size -1)"), suite.series)
	suite.Require().NoError(err)

	suite.True(result.Traded())
	suite.Equal(1.0, result.Turnover)
	suite.Equal(short.Return, result.Return)
	suite.Equal(short.MaxDrawdown, result.MaxDrawdown)
}

func (suite *EvaluatorTestSuite) TestBuyAndHold() {
	series := NewSeries(makeSeries("up", 100, 110, 121, 133.1), suite.registry)

	result, err := suite.noCostEvaluator().Evaluate(context.Background(), suite.parse("(size 1)"), series)
	suite.Require().NoError(err)

	// positions at bars 1 and 2, each earning 10%
	suite.Equal(2, result.Bars)
	suite.Equal(1, result.Trades)
	suite.InDelta(0.21, result.Return, 1e-12)
	suite.InDelta(1.0, result.Turnover, 1e-12)
	suite.InDelta(0.0, result.MaxDrawdown, 1e-12)
	suite.InDelta(0.21, result.Score, 1e-12)
}

func (suite *EvaluatorTestSuite) TestShortLosesInRisingMarket() {
	series := NewSeries(makeSeries("up", 100, 110, 121, 133.1), suite.registry)

	result, err := suite.noCostEvaluator().Evaluate(context.Background(), suite.parse("(size -1)"), series)
	suite.Require().NoError(err)

	suite.InDelta(0.81-1, result.Return, 1e-12)
	suite.InDelta(0.19, result.MaxDrawdown, 1e-12)
}

func (suite *EvaluatorTestSuite) TestCostsAndPenalties() {
	cfg := config.FitnessConfig{
		TransactionCost:    0.01,
		DrawdownWeight:     0.5,
		TurnoverWeight:     0.1,
		LatencyCostPerNode: 0.001,
	}
	evaluator := NewEvaluator(cfg, suite.registry, logger.NewNopLogger())
	series := NewSeries(makeSeries("up", 100, 110, 121, 133.1), suite.registry)

	result, err := evaluator.Evaluate(context.Background(), suite.parse("(size 1)"), series)
	suite.Require().NoError(err)

	suite.InDelta(0.99*1.21-1, result.Return, 1e-12)
	suite.InDelta(0.001, result.LatencyCost, 1e-12)
	suite.InDelta(result.Return-0.5*result.MaxDrawdown-0.1*1.0/2-0.001, result.Score, 1e-12)
}

func (suite *EvaluatorTestSuite) TestCrossingUsesPreviousBar() {
	series := NewSeries(makeSeries("step", 10, 10, 10, 12, 12, 12, 12), suite.registry)

	result, err := suite.noCostEvaluator().Evaluate(context.Background(),
		suite.parse("(if (cross_above price 11) (size 1) (size 0))"), series)
	suite.Require().NoError(err)

	// enters on the crossing bar and leaves on the next one
	suite.Equal(5, result.Bars)
	suite.Equal(2, result.Trades)
	suite.InDelta(2.0, result.Turnover, 1e-12)
	suite.InDelta(0.0, result.Return, 1e-12)
}

func (suite *EvaluatorTestSuite) TestProtectedDivision() {
	series := NewSeries(makeSeries("flat", 100, 100, 100, 100), suite.registry)

	result, err := suite.noCostEvaluator().Evaluate(context.Background(),
		suite.parse("(if (gt (div price 0) 50) (size 1) (size 0))"), series)
	suite.Require().NoError(err)
	suite.Equal(1, result.Trades)
}

func (suite *EvaluatorTestSuite) TestDataInsufficient() {
	series := NewSeries(makeSeries("short", 100, 101, 102), suite.registry)

	_, err := suite.evaluator.Evaluate(context.Background(),
		suite.parse("(if (gt price (ma 10)) (size 1) (size 0))"), series)
	suite.Require().Error(err)
	suite.True(errors.IsDataInsufficientError(err))

	var insufficient *errors.DataInsufficientError
	suite.Require().True(errors.As(err, &insufficient))
	suite.Equal(12, insufficient.Required)
	suite.Equal(3, insufficient.Actual)
	suite.Equal("short", insufficient.Series)

	required, err := RequiredLength(suite.parse("(size 1)"), suite.registry)
	suite.NoError(err)
	suite.Equal(3, required)
}

func (suite *EvaluatorTestSuite) TestTimeout() {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	result, err := suite.evaluator.Evaluate(ctx, suite.parse("(size 1)"), suite.series)
	suite.Require().Error(err)
	suite.True(errors.IsEvaluationTimeoutError(err))
	suite.True(errors.HasCode(err, errors.ErrCodeEvaluationTimeout))
	suite.True(result.TimedOut)
	suite.Equal(0.0, result.Score)
}

func (suite *EvaluatorTestSuite) TestCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := suite.evaluator.Evaluate(ctx, suite.parse("(size 1)"), suite.series)
	suite.Require().Error(err)
	suite.False(errors.IsEvaluationTimeoutError(err))
	suite.True(errors.HasCode(err, errors.ErrCodeEvaluationFailed))
}

func (suite *EvaluatorTestSuite) TestConcurrentEvaluationSharesCache() {
	exprs := []string{
		"(if (gt (rsi 14) 60) (size -1) (size 1))",
		"(if (cross_below (macd 26) 0) (size -1) (size 0.5))",
		"(if (lt (bollinger_bands 20) 0.1) (size 1) (size 0))",
		"(if (gt (volatility 10) 0.01) (size 0) (size 1))",
	}

	expected := make([]types.FitnessResult, len(exprs))
	for i, expr := range exprs {
		result, err := suite.evaluator.Evaluate(context.Background(), suite.parse(expr), suite.series)
		suite.Require().NoError(err)

		expected[i] = result
	}

	series := NewSeries(makeSeries("wave", wave(400)...), suite.registry)

	var wg sync.WaitGroup

	results := make([]types.FitnessResult, 4*len(exprs))
	for i := range results {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			g, err := genome.Parse(exprs[i%len(exprs)])
			if err != nil {
				return
			}

			results[i], _ = suite.evaluator.Evaluate(context.Background(), g, series)
		}(i)
	}

	wg.Wait()

	for i, result := range results {
		suite.Equal(expected[i%len(exprs)], result)
	}
}
