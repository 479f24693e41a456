package population

import (
	"math"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-evolution/internal/config"
	"github.com/rxtech-lab/argo-evolution/internal/genome"
	"github.com/rxtech-lab/argo-evolution/internal/logger"
	"github.com/rxtech-lab/argo-evolution/internal/types"
	"github.com/rxtech-lab/argo-evolution/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ManagerTestSuite struct {
	suite.Suite
	cfg config.EvolutionConfig
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}

func (suite *ManagerTestSuite) SetupTest() {
	suite.cfg = config.TestConfig(42)
}

// scoresFor gives every individual a score derived from its genome so the
// result is a pure function of the population.
func scoresFor(pop Population) []types.FitnessResult {
	scores := make([]types.FitnessResult, pop.Size())
	for i, ind := range pop.Individuals {
		scores[i] = types.FitnessResult{Score: math.Sin(float64(len(ind.Genome.String()))) + float64(ind.Genome.Height())/10}
	}

	return scores
}

func bestScore(scores []types.FitnessResult) float64 {
	best := math.Inf(-1)
	for _, s := range scores {
		best = math.Max(best, s.Score)
	}

	return best
}

func (suite *ManagerTestSuite) TestInitialPopulation() {
	manager := NewManager(suite.cfg, logger.NewNopLogger())

	pop, err := manager.Initial()
	suite.Require().NoError(err)
	suite.Equal(0, pop.Generation)
	suite.Equal(suite.cfg.PopulationSize, pop.Size())

	ids := make(map[string]bool)
	for slot, ind := range pop.Individuals {
		suite.NoError(ind.Genome.Validate(suite.cfg.MaxTreeDepth))
		suite.True(ind.Fitness.IsNone())
		suite.Equal(IndividualID(suite.cfg.RandomSeed, 0, slot), ind.ID)
		ids[ind.ID] = true
	}

	suite.Len(ids, pop.Size())
}

func (suite *ManagerTestSuite) TestSizeIsInvariant() {
	manager := NewManager(suite.cfg, logger.NewNopLogger())

	pop, err := manager.Initial()
	suite.Require().NoError(err)

	for gen := 0; gen < 15; gen++ {
		pop, err = manager.NextGeneration(pop, scoresFor(pop))
		suite.Require().NoError(err)
		suite.Equal(suite.cfg.PopulationSize, pop.Size())
		suite.Equal(gen+1, pop.Generation)

		for _, ind := range pop.Individuals {
			suite.NoError(ind.Genome.Validate(suite.cfg.MaxTreeDepth))
		}
	}
}

func (suite *ManagerTestSuite) TestElitismNeverRegresses() {
	manager := NewManager(suite.cfg, logger.NewNopLogger())

	pop, err := manager.Initial()
	suite.Require().NoError(err)

	scores := scoresFor(pop)

	for gen := 0; gen < 10; gen++ {
		previousBest := bestScore(scores)

		next, err := manager.NextGeneration(pop, scores)
		suite.Require().NoError(err)

		// elites carry their fitness; everything else is scored afresh
		nextScores := scoresFor(next)
		for i, ind := range next.Individuals {
			if ind.Fitness.IsSome() {
				nextScores[i] = ind.Fitness.Unwrap()
			}
		}

		suite.GreaterOrEqual(bestScore(nextScores), previousBest)

		pop, scores = next, nextScores
	}
}

func (suite *ManagerTestSuite) TestElitesKeepIdentity() {
	manager := NewManager(suite.cfg, logger.NewNopLogger())

	pop, err := manager.Initial()
	suite.Require().NoError(err)

	scores := scoresFor(pop)
	ranked := Ranked(pop.WithScores(scores).Individuals)

	next, err := manager.NextGeneration(pop, scores)
	suite.Require().NoError(err)

	for k := 0; k < suite.cfg.ElitismCount; k++ {
		suite.Equal(ranked[k].ID, next.Individuals[k].ID)
		suite.True(ranked[k].Genome.Equal(next.Individuals[k].Genome))
		suite.Equal(ranked[k].Fitness.Unwrap(), next.Individuals[k].Fitness.Unwrap())
		suite.Equal(0, next.Individuals[k].Born)
	}

	for _, ind := range next.Individuals[suite.cfg.ElitismCount:] {
		suite.True(ind.Fitness.IsNone())
		suite.Equal(1, ind.Born)
		suite.NotEmpty(ind.Parents)
	}
}

func (suite *ManagerTestSuite) TestDeterministicAcrossManagers() {
	run := func() []string {
		manager := NewManager(suite.cfg, logger.NewNopLogger())

		pop, err := manager.Initial()
		suite.Require().NoError(err)

		for gen := 0; gen < 5; gen++ {
			pop, err = manager.NextGeneration(pop, scoresFor(pop))
			suite.Require().NoError(err)
		}

		out := make([]string, 0, pop.Size())
		for _, ind := range pop.Individuals {
			out = append(out, ind.ID+" "+ind.Genome.String())
		}

		return out
	}

	suite.Equal(run(), run())
}

func (suite *ManagerTestSuite) TestNoVariationClonesWinners() {
	suite.cfg.PCrossover = 0
	suite.cfg.PMutation = 0
	manager := NewManager(suite.cfg, logger.NewNopLogger())

	pop, err := manager.Initial()
	suite.Require().NoError(err)

	existing := make(map[string]bool)
	for _, ind := range pop.Individuals {
		existing[ind.Genome.String()] = true
	}

	next, err := manager.NextGeneration(pop, scoresFor(pop))
	suite.Require().NoError(err)

	for _, ind := range next.Individuals {
		suite.True(existing[ind.Genome.String()])
		suite.LessOrEqual(len(ind.Parents), 1)
	}
}

func (suite *ManagerTestSuite) TestNextGenerationErrors() {
	manager := NewManager(suite.cfg, logger.NewNopLogger())

	_, err := manager.NextGeneration(Population{}, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeEmptyPopulation))

	pop, err := manager.Initial()
	suite.Require().NoError(err)

	_, err = manager.NextGeneration(pop, scoresFor(pop)[:3])
	suite.True(errors.HasCode(err, errors.ErrCodeScoreCountMismatch))

	cfg := suite.cfg
	cfg.PopulationSize = 0
	_, err = NewManager(cfg, logger.NewNopLogger()).Initial()
	suite.True(errors.HasCode(err, errors.ErrCodeEmptyPopulation))
}

func (suite *ManagerTestSuite) TestRankTieBreak() {
	parse := func(expr string) *genome.Genome {
		g, err := genome.Parse(expr)
		suite.Require().NoError(err)

		return g
	}

	score := func(v float64) optional.Option[types.FitnessResult] {
		return optional.Some(types.FitnessResult{Score: v})
	}

	inds := []Individual{
		{ID: "big", Genome: parse("(if true (size 1) (size 0))"), Fitness: score(1)},
		{ID: "small", Genome: parse("(size 1)"), Fitness: score(1)},
		{ID: "unscored", Genome: parse("(size 0)"), Fitness: optional.None[types.FitnessResult]()},
		{ID: "best", Genome: parse("(if false (size 1) (size 0))"), Fitness: score(2)},
		{ID: "small-later", Genome: parse("(size -1)"), Fitness: score(1)},
	}

	ids := make([]string, 0, len(inds))
	for _, ind := range Ranked(inds) {
		ids = append(ids, ind.ID)
	}

	suite.Equal([]string{"best", "small", "small-later", "big", "unscored"}, ids)
}

func (suite *ManagerTestSuite) TestIndividualID() {
	suite.Equal(IndividualID(42, 3, 7), IndividualID(42, 3, 7))
	suite.NotEqual(IndividualID(42, 3, 7), IndividualID(42, 7, 3))
	suite.NotEqual(IndividualID(42, 3, 7), IndividualID(43, 3, 7))
}

func (suite *ManagerTestSuite) TestCloneIsIndependent() {
	ind := Individual{
		ID:      "a",
		Genome:  genome.Must(genome.Parse("(size 1)")),
		Parents: []string{"p"},
		Fitness: optional.None[types.FitnessResult](),
	}

	clone := ind.Clone()
	clone.Parents[0] = "q"

	suite.Equal("p", ind.Parents[0])
	suite.True(ind.Genome.Equal(clone.Genome))
}
