package evolution

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rxtech-lab/argo-evolution/internal/config"
	"github.com/rxtech-lab/argo-evolution/internal/evolution"
	"github.com/rxtech-lab/argo-evolution/internal/fitness"
	"github.com/rxtech-lab/argo-evolution/internal/genome"
	"github.com/rxtech-lab/argo-evolution/internal/indicator"
	"github.com/rxtech-lab/argo-evolution/internal/logger"
	"github.com/rxtech-lab/argo-evolution/internal/marketdata"
	"github.com/rxtech-lab/argo-evolution/internal/promotion"
	"github.com/rxtech-lab/argo-evolution/internal/store"
	"github.com/rxtech-lab/argo-evolution/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type E2ETestSuite struct {
	suite.Suite
	cfg config.EvolutionConfig
}

func TestE2ETestSuite(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}

func (s *E2ETestSuite) SetupTest() {
	s.cfg = config.TestConfig(42)
	s.cfg.PopulationSize = 20
	s.cfg.MaxGenerations = 10
	s.cfg.MaxTreeDepth = 4
}

func (s *E2ETestSuite) run(cfg config.EvolutionConfig, data evolution.Dataset) *evolution.Report {
	report, err := evolution.NewController(cfg, logger.NewNopLogger()).Run(context.Background(), data, evolution.LifecycleCallbacks{})
	s.Require().NoError(err)

	return report
}

func (s *E2ETestSuite) TestSeededRunIsReproducible() {
	data := evolution.Dataset{InSample: marketdata.Synthetic(42, 500)}

	first := s.run(s.cfg, data)
	second := s.run(s.cfg, data)

	s.Equal(evolution.StateStopped, first.State)
	s.Len(first.Generations, 10)
	s.Equal(first.Trajectory(), second.Trajectory())

	for i := range first.Generations {
		s.Equal(first.Generations[i].BestGenome, second.Generations[i].BestGenome, "generation %d", i)
		s.Equal(first.Generations[i].Mean, second.Generations[i].Mean, "generation %d", i)
		s.Equal(first.Generations[i].Diversity, second.Generations[i].Diversity, "generation %d", i)
	}

	s.Require().Len(second.Final, len(first.Final))

	for i := range first.Final {
		s.Equal(first.Final[i].ID, second.Final[i].ID)
		s.True(first.Final[i].Genome.Equal(second.Final[i].Genome))
	}
}

func (s *E2ETestSuite) TestParallelismDoesNotChangeTheRun() {
	data := evolution.Dataset{InSample: marketdata.Synthetic(42, 500)}

	serial := s.cfg
	serial.Parallelism = 1

	parallel := s.cfg
	parallel.Parallelism = 8

	s.Equal(s.run(serial, data).Trajectory(), s.run(parallel, data).Trajectory())
}

func (s *E2ETestSuite) TestConstantFalseGenomeScoresZero() {
	registry := indicator.NewDefaultRegistry()
	evaluator := fitness.NewEvaluator(s.cfg.Fitness, registry, logger.NewNopLogger())
	series := fitness.NewSeries(marketdata.Synthetic(42, 500), registry)

	for _, expr := range []string{
		"(if false (size 1) (size 0))",
		"(if (and (gt (ma 10) 0) false) (size 1) (size 0))",
	} {
		result, err := evaluator.Evaluate(context.Background(), genome.Must(genome.Parse(expr)), series)
		s.Require().NoError(err, expr)
		s.Zero(result.Score, expr)
		s.Zero(result.Return, expr)
		s.Zero(result.MaxDrawdown, expr)
		s.Zero(result.Turnover, expr)
		s.Zero(result.LatencyCost, expr)
		s.Zero(result.Trades, expr)
		s.False(result.Traded(), expr)
	}
}

func (s *E2ETestSuite) TestShortSeriesFailsBeforeAnyGeneration() {
	short := marketdata.Synthetic(42, 3)

	registry := indicator.NewDefaultRegistry()
	evaluator := fitness.NewEvaluator(s.cfg.Fitness, registry, logger.NewNopLogger())

	_, err := evaluator.Evaluate(context.Background(),
		genome.Must(genome.Parse("(if (gt price (ma 10)) (size 1) (size 0))")),
		fitness.NewSeries(short, registry))
	s.Require().Error(err)
	s.True(errors.IsDataInsufficientError(err))

	cfg := s.cfg
	cfg.MinIndicatorPeriod = 10
	cfg.MaxIndicatorPeriod = 10

	generations := 0
	onStart := evolution.OnGenerationStartCallback(func(int, int) error {
		generations++
		return nil
	})

	controller := evolution.NewController(cfg, logger.NewNopLogger())
	report, err := controller.Run(context.Background(), evolution.Dataset{InSample: short},
		evolution.LifecycleCallbacks{OnGenerationStart: &onStart})
	s.Require().Error(err)
	s.True(errors.IsDataInsufficientError(err))
	s.Equal(evolution.StateFailed, report.State)
	s.Empty(report.Generations)
	s.Zero(generations)
}

func (s *E2ETestSuite) TestPromotedCandidatesPassEveryGate() {
	tempDir, err := os.MkdirTemp("", "evolution-e2e")
	s.Require().NoError(err)
	defer os.RemoveAll(tempDir)

	cfg := s.cfg
	cfg.Promotion = config.PromotionConfig{OOSTolerance: 0.5, StressFloor: -0.25, PromotionInterval: 2, PromotionTopK: 3}

	inSample, outOfSample, err := marketdata.Split(marketdata.Synthetic(7, 1000), 0.7, cfg.MinSeriesLength())
	s.Require().NoError(err)

	data := evolution.Dataset{
		InSample:    inSample,
		OutOfSample: outOfSample,
		Stress:      marketdata.StressScenarios(outOfSample),
	}

	dbPath := filepath.Join(tempDir, "candidates.duckdb")
	db, err := store.NewDuckDBStore(dbPath, logger.NewNopLogger())
	s.Require().NoError(err)

	registry := indicator.NewDefaultRegistry()
	evaluator := fitness.NewEvaluator(cfg.Fitness, registry, logger.NewNopLogger())
	pipeline := promotion.NewPipeline(cfg.Promotion, cfg.RandomSeed, evaluator, db, logger.NewNopLogger())

	report, err := evolution.NewController(cfg, logger.NewNopLogger(),
		evolution.WithRegistry(registry),
		evolution.WithEvaluator(evaluator),
		evolution.WithPromotion(pipeline),
	).Run(context.Background(), data, evolution.LifecycleCallbacks{})
	s.Require().NoError(err)
	s.Equal(15, len(report.Promoted)+report.Rejected)
	s.Require().NoError(db.Close())

	reopened, err := store.NewDuckDBStore(dbPath, logger.NewNopLogger())
	s.Require().NoError(err)
	defer reopened.Close()

	count, err := reopened.Count(context.Background())
	s.Require().NoError(err)
	s.Equal(len(report.Promoted), count)

	records, err := reopened.List(context.Background())
	s.Require().NoError(err)

	for _, record := range records {
		is := record.InSample.Result.Score
		oos := record.OutOfSample.Result.Score
		s.LessOrEqual(is-oos, cfg.Promotion.OOSTolerance*math.Abs(is)+1e-12, record.ID)
		s.Len(record.Stress, 3)
		s.Greater(record.MinStressScore(), cfg.Promotion.StressFloor, record.ID)
		s.True(record.InSample.Result.Traded())

		g, err := genome.Parse(record.Genome)
		s.Require().NoError(err)
		s.Equal(record.Fingerprint, g.Fingerprint())
	}
}
