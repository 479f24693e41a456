package population

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-evolution/internal/genome"
	"github.com/rxtech-lab/argo-evolution/internal/types"
)

// Individual is a genome with its lineage and last computed fitness.
type Individual struct {
	// ID is derived from the run seed, generation and slot, so reruns reuse it.
	ID string
	// Genome is never modified after the individual is created.
	Genome *genome.Genome
	// Born is the generation the individual was created in.
	Born int
	// Parents lists the IDs the genome was bred from (empty for generation 0).
	Parents []string
	// Fitness is None until the individual has been evaluated.
	Fitness optional.Option[types.FitnessResult]
}

// Score returns the fitness score, or -Inf when the individual is unevaluated.
func (i Individual) Score() float64 {
	if i.Fitness.IsSome() {
		return i.Fitness.Unwrap().Score
	}

	return math.Inf(-1)
}

// Clone returns an independent copy.
func (i Individual) Clone() Individual {
	parents := make([]string, len(i.Parents))
	copy(parents, i.Parents)

	return Individual{
		ID:      i.ID,
		Genome:  i.Genome.Clone(),
		Born:    i.Born,
		Parents: parents,
		Fitness: i.Fitness,
	}
}

// Population is the ordered set of individuals of one generation.
type Population struct {
	Generation  int
	Individuals []Individual
}

// Size returns the number of individuals.
func (p Population) Size() int {
	return len(p.Individuals)
}

// WithScores returns a copy of p whose individuals carry scores[i].
func (p Population) WithScores(scores []types.FitnessResult) Population {
	individuals := make([]Individual, len(p.Individuals))
	for i, ind := range p.Individuals {
		individuals[i] = ind
		individuals[i].Fitness = optional.Some(scores[i])
	}

	return Population{Generation: p.Generation, Individuals: individuals}
}

// individualNamespace scopes the name-based IDs of individuals.
var individualNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/rxtech-lab/argo-evolution/individual"))

// IndividualID returns the deterministic ID of the individual in slot of generation.
func IndividualID(seed int64, generation, slot int) string {
	return uuid.NewSHA1(individualNamespace, []byte(fmt.Sprintf("%d/%d/%d", seed, generation, slot))).String()
}
