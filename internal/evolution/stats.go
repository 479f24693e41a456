package evolution

import (
	"github.com/montanaflynn/stats"
	"github.com/rxtech-lab/argo-evolution/internal/population"
	"github.com/rxtech-lab/argo-evolution/internal/types"
)

// Diversity returns the fraction of distinct genomes in individuals.
func Diversity(individuals []population.Individual) float64 {
	if len(individuals) == 0 {
		return 0
	}

	seen := make(map[string]struct{}, len(individuals))
	for _, ind := range individuals {
		seen[ind.Genome.Fingerprint()] = struct{}{}
	}

	return float64(len(seen)) / float64(len(individuals))
}

// generationStats summarises a ranked, fully scored generation.
func generationStats(generation int, ranked []population.Individual) (types.GenerationStats, error) {
	scores := make(stats.Float64Data, len(ranked))
	for i, ind := range ranked {
		scores[i] = ind.Score()
	}

	mean, err := stats.Mean(scores)
	if err != nil {
		return types.GenerationStats{}, err
	}

	stdDev, err := stats.StandardDeviationPopulation(scores)
	if err != nil {
		return types.GenerationStats{}, err
	}

	worst, err := stats.Min(scores)
	if err != nil {
		return types.GenerationStats{}, err
	}

	return types.GenerationStats{
		Generation: generation,
		Best:       ranked[0].Score(),
		Mean:       mean,
		StdDev:     stdDev,
		Worst:      worst,
		Diversity:  Diversity(ranked),
		BestID:     ranked[0].ID,
		BestGenome: ranked[0].Genome.String(),
	}, nil
}
