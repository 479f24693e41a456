package evolution

import (
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-evolution/internal/population"
	"github.com/rxtech-lab/argo-evolution/internal/types"
)

// Report is the outcome of a run.
type Report struct {
	// RunID identifies the run.
	RunID string
	// Seed is the run's random seed.
	Seed int64
	// State is the terminal state.
	State State
	// Best is the best individual seen in any generation.
	Best optional.Option[population.Individual]
	// BestGeneration is the generation Best was scored in.
	BestGeneration int
	// Generations holds the statistics of every completed generation.
	Generations []types.GenerationStats
	// Final is the last ranked population, best first.
	Final []population.Individual
	// Promoted lists the IDs of the candidate records admitted to the pool.
	Promoted []string
	// Rejected counts promotion attempts that failed a gate.
	Rejected int
	// Err is set when State is StateFailed.
	Err error
	// Started and Finished bound the run.
	Started  time.Time
	Finished time.Time
}

func newReport(seed int64) *Report {
	return &Report{
		RunID:          uuid.NewString(),
		Seed:           seed,
		State:          StateIdle,
		Best:           optional.None[population.Individual](),
		BestGeneration: -1,
		Generations:    nil,
		Final:          nil,
		Promoted:       nil,
		Rejected:       0,
		Err:            nil,
		Started:        time.Now(),
		Finished:       time.Time{},
	}
}

// Trajectory returns the best score of each completed generation.
func (r *Report) Trajectory() []float64 {
	trajectory := make([]float64, len(r.Generations))
	for i, g := range r.Generations {
		trajectory[i] = g.Best
	}

	return trajectory
}

// ToSummary converts the report into its persisted form.
func (r *Report) ToSummary() types.RunSummary {
	summary := types.RunSummary{
		ID:          r.RunID,
		Timestamp:   r.Finished,
		Seed:        r.Seed,
		State:       r.State.String(),
		Best:        nil,
		Generations: append([]types.GenerationStats{}, r.Generations...),
		Promoted:    append([]string{}, r.Promoted...),
		Error:       "",
	}

	if r.Best.IsSome() {
		best := r.Best.Unwrap()
		summary.Best = &types.BestIndividual{
			ID:         best.ID,
			Generation: r.BestGeneration,
			Genome:     best.Genome.String(),
			Fitness:    best.Fitness.TakeOr(types.ZeroFitness()),
		}
	}

	if r.Err != nil {
		summary.Error = r.Err.Error()
	}

	return summary
}
