package genome

import (
	"math/rand"

	"github.com/rxtech-lab/argo-evolution/pkg/errors"
)

// Crossover swaps a random subtree of a with a type-compatible subtree of b
// and returns both offspring. A swap is accepted only when both offspring
// stay within maxDepth. Inputs are never modified.
func Crossover(a, b *Genome, maxDepth int, rng *rand.Rand) (*Genome, *Genome, error) {
	for attempt := 1; attempt <= MaxRetries; attempt++ {
		i := rng.Intn(a.Len())
		want := a.nodes[i].Kind.Result()

		candidates := make([]int, 0, b.Len())
		for j, n := range b.nodes {
			if n.Kind.Result() == want {
				candidates = append(candidates, j)
			}
		}

		if len(candidates) == 0 {
			continue
		}

		j := candidates[rng.Intn(len(candidates))]

		childA := a.replace(i, b.subtree(j))
		childB := b.replace(j, a.subtree(i))

		if maxDepth > 0 && (childA.Height() > maxDepth || childB.Height() > maxDepth) {
			continue
		}

		return childA, childB, nil
	}

	e := errors.NewInvalidGenomeError("crossover", MaxRetries, "no compatible subtree pair fits the depth bound")
	e.Cause = errors.New(errors.ErrCodeNoCompatibleSubtree, "no compatible subtree")

	return nil, nil, e
}
