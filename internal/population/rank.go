package population

import (
	"sort"
)

// better reports whether individual a ranks above b: higher score first,
// then the smaller genome, then the lower index.
func better(inds []Individual, a, b int) bool {
	sa, sb := inds[a].Score(), inds[b].Score()
	if sa != sb {
		return sa > sb
	}

	za, zb := inds[a].Genome.Size(), inds[b].Genome.Size()
	if za != zb {
		return za < zb
	}

	return a < b
}

// Rank returns the indices of the individuals from best to worst. The order
// is total and does not depend on randomness.
func Rank(inds []Individual) []int {
	order := make([]int, len(inds))
	for i := range order {
		order[i] = i
	}

	sort.Slice(order, func(x, y int) bool {
		return better(inds, order[x], order[y])
	})

	return order
}

// Ranked returns the individuals sorted from best to worst.
func Ranked(inds []Individual) []Individual {
	order := Rank(inds)
	out := make([]Individual, len(order))

	for k, i := range order {
		out[k] = inds[i]
	}

	return out
}
