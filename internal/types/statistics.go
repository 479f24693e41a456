package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// GenerationStats summarises one scored generation.
type GenerationStats struct {
	// Generation index, starting at 0.
	Generation int `yaml:"generation" json:"generation"`
	// Best score in the generation.
	Best float64 `yaml:"best" json:"best"`
	// Mean score over the whole population.
	Mean float64 `yaml:"mean" json:"mean"`
	// StdDev is the population standard deviation of the scores.
	StdDev float64 `yaml:"std_dev" json:"std_dev"`
	// Worst score in the generation.
	Worst float64 `yaml:"worst" json:"worst"`
	// Diversity is the fraction of distinct genomes (1 = all unique).
	Diversity float64 `yaml:"diversity" json:"diversity"`
	// BestID is the individual holding Best.
	BestID string `yaml:"best_id" json:"best_id"`
	// BestGenome is the canonical expression of the best genome.
	BestGenome string `yaml:"best_genome" json:"best_genome"`
	// TimedOut counts evaluations scored zero because they exceeded the budget.
	TimedOut int `yaml:"timed_out" json:"timed_out"`
	// Failed counts evaluations scored zero because of an isolated error.
	Failed int `yaml:"failed" json:"failed"`
	// Duration is the wall time spent evaluating the generation.
	Duration time.Duration `yaml:"duration" json:"duration"`
}

// BestIndividual is the best-of-run entry of a RunSummary.
type BestIndividual struct {
	ID         string        `yaml:"id" json:"id"`
	Generation int           `yaml:"generation" json:"generation"`
	Genome     string        `yaml:"genome" json:"genome"`
	Fitness    FitnessResult `yaml:"fitness" json:"fitness"`
}

// RunSummary is the persisted form of an evolution run report.
type RunSummary struct {
	// ID is the unique identifier for this run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when the run finished.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// Seed is the run's random seed.
	Seed int64 `yaml:"seed" json:"seed"`
	// State is the terminal controller state.
	State string `yaml:"state" json:"state"`
	// Best is the best individual seen during the run.
	Best *BestIndividual `yaml:"best,omitempty" json:"best,omitempty"`
	// Generations holds one entry per scored generation.
	Generations []GenerationStats `yaml:"generations" json:"generations"`
	// Promoted lists the candidate record IDs admitted to the pool.
	Promoted []string `yaml:"promoted" json:"promoted"`
	// Error is set for failed runs.
	Error string `yaml:"error,omitempty" json:"error,omitempty"`
}

// BestTrajectory returns the per-generation best scores.
func (r RunSummary) BestTrajectory() []float64 {
	trajectory := make([]float64, len(r.Generations))
	for i, g := range r.Generations {
		trajectory[i] = g.Best
	}

	return trajectory
}

func WriteRunSummary(path string, summary RunSummary) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run summary to file: %w", err)
	}

	return nil
}
