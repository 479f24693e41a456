// Package population owns the individuals of a generation and breeds the
// next one with elitism, tournament selection, crossover and mutation.
package population

import (
	"math/rand"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-evolution/internal/config"
	"github.com/rxtech-lab/argo-evolution/internal/genome"
	"github.com/rxtech-lab/argo-evolution/internal/logger"
	"github.com/rxtech-lab/argo-evolution/internal/rng"
	"github.com/rxtech-lab/argo-evolution/internal/types"
	"github.com/rxtech-lab/argo-evolution/pkg/errors"
	"go.uber.org/zap"
)

// Random sub-stream tags, so the initial population and breeding never
// share a stream for the same (generation, slot).
const (
	streamInitial int64 = iota + 1
	streamBreed
)

// Manager creates and breeds populations.
type Manager interface {
	// Initial creates generation 0.
	Initial() (Population, error)
	// NextGeneration breeds a new population of the same size from pop and
	// its scores (scores[i] belongs to pop.Individuals[i]).
	NextGeneration(pop Population, scores []types.FitnessResult) (Population, error)
}

// ManagerV1 implements Manager. It keeps no state between calls: every slot
// draws from the random stream addressed by (seed, generation, slot).
type ManagerV1 struct {
	config config.EvolutionConfig
	opts   genome.Options
	logger *logger.Logger
}

// NewManager creates a population manager for cfg.
func NewManager(cfg config.EvolutionConfig, log *logger.Logger) Manager {
	return &ManagerV1{
		config: cfg,
		opts:   GenomeOptions(cfg),
		logger: log.Named("population"),
	}
}

// GenomeOptions returns the genome generator options implied by cfg.
func GenomeOptions(cfg config.EvolutionConfig) genome.Options {
	opts := genome.DefaultOptions()
	opts.MinPeriod = cfg.MinIndicatorPeriod
	opts.MaxPeriod = cfg.MaxIndicatorPeriod

	return opts
}

// Initial implements Manager.
func (m *ManagerV1) Initial() (Population, error) {
	if m.config.PopulationSize < 1 {
		return Population{}, errors.New(errors.ErrCodeEmptyPopulation, "population size must be positive")
	}

	individuals := make([]Individual, m.config.PopulationSize)

	for slot := range individuals {
		r := rng.New(m.config.RandomSeed, 0, int64(slot), streamInitial)

		g, err := genome.NewRandom(m.config.MaxTreeDepth, r, m.opts)
		if err != nil {
			return Population{}, err
		}

		individuals[slot] = Individual{
			ID:      IndividualID(m.config.RandomSeed, 0, slot),
			Genome:  g,
			Born:    0,
			Parents: nil,
			Fitness: optional.None[types.FitnessResult](),
		}
	}

	return Population{Generation: 0, Individuals: individuals}, nil
}

// NextGeneration implements Manager.
func (m *ManagerV1) NextGeneration(pop Population, scores []types.FitnessResult) (Population, error) {
	if pop.Size() == 0 {
		return Population{}, errors.New(errors.ErrCodeEmptyPopulation, "cannot breed from an empty population")
	}

	if len(scores) != pop.Size() {
		return Population{}, errors.Newf(errors.ErrCodeScoreCountMismatch,
			"got %d scores for %d individuals", len(scores), pop.Size())
	}

	scored := pop.WithScores(scores).Individuals
	order := Rank(scored)
	generation := pop.Generation + 1
	size := m.config.PopulationSize

	next := make([]Individual, 0, size)

	// Elitism: the top K survive unchanged with their fitness.
	for k := 0; k < m.config.ElitismCount && k < len(order) && k < size; k++ {
		next = append(next, scored[order[k]].Clone())
	}

	for slot := len(next); slot < size; slot++ {
		r := rng.New(m.config.RandomSeed, int64(generation), int64(slot), streamBreed)
		next = append(next, m.breed(scored, generation, slot, r))
	}

	return Population{Generation: generation, Individuals: next}, nil
}

// breed fills one slot from two tournament winners.
func (m *ManagerV1) breed(scored []Individual, generation, slot int, r *rand.Rand) Individual {
	first := scored[m.tournament(scored, r)]
	second := scored[m.tournament(scored, r)]

	child := first.Genome
	parents := []string{first.ID}

	if r.Float64() < m.config.PCrossover {
		offspring, _, err := genome.Crossover(first.Genome, second.Genome, m.config.MaxTreeDepth, r)
		if err != nil {
			m.logger.Debug("Crossover failed, keeping parent",
				zap.Int("generation", generation),
				zap.Int("slot", slot),
				zap.Error(err),
			)
		} else {
			child = offspring
			parents = append(parents, second.ID)
		}
	}

	if r.Float64() < m.config.PMutation {
		mutated, err := genome.Mutate(child, m.config.MaxTreeDepth, r, m.opts)
		if err != nil {
			m.logger.Debug("Mutation failed, keeping parent",
				zap.Int("generation", generation),
				zap.Int("slot", slot),
				zap.Error(err),
			)
		} else {
			child = mutated
		}
	}

	return Individual{
		ID:      IndividualID(m.config.RandomSeed, generation, slot),
		Genome:  child.Clone(),
		Born:    generation,
		Parents: parents,
		Fitness: optional.None[types.FitnessResult](),
	}
}

// tournament samples TournamentSize individuals uniformly and returns the
// index of the best one.
func (m *ManagerV1) tournament(scored []Individual, r *rand.Rand) int {
	best := r.Intn(len(scored))

	for k := 1; k < m.config.TournamentSize; k++ {
		candidate := r.Intn(len(scored))
		if better(scored, candidate, best) {
			best = candidate
		}
	}

	return best
}
