package genome

import (
	"math"
	"math/rand"

	"github.com/rxtech-lab/argo-evolution/pkg/errors"
)

// Mutate returns a mutated copy of parent. Half of the attempts perturb a
// single node in place (constant jitter, period step, operator flip); the
// rest replace a random subtree with a fresh one of the same type that fits
// the depth budget. After MaxRetries invalid attempts it returns an
// InvalidGenomeError and the caller keeps the parent.
func Mutate(parent *Genome, maxDepth int, rng *rand.Rand, opts Options) (*Genome, error) {
	if err := opts.validate(); err != nil {
		e := errors.NewInvalidGenomeError("mutate", 0, "unusable generator options")
		e.Cause = err

		return nil, e
	}

	g := &grower{rng: rng, opts: opts}

	var lastErr error

	for attempt := 1; attempt <= MaxRetries; attempt++ {
		i := rng.Intn(parent.Len())

		var child *Genome
		if rng.Float64() < 0.5 {
			child = pointMutate(parent, i, g)
		}

		if child == nil {
			child = subtreeMutate(parent, i, maxDepth, g)
		}

		if err := child.Validate(maxDepth); err != nil {
			lastErr = err

			continue
		}

		return child, nil
	}

	e := errors.NewInvalidGenomeError("mutate", MaxRetries, "no valid mutation found")
	e.Cause = lastErr

	return nil, e
}

// subtreeMutate replaces the subtree at i with a random subtree of the same
// type. The budget keeps the new height within maxDepth.
func subtreeMutate(parent *Genome, i, maxDepth int, g *grower) *Genome {
	depth := parent.Depths()[i]
	budget := maxDepth - depth + 1

	if budget < 1 {
		budget = 1
	}

	sub := g.grow(parent.nodes[i].Kind.Result(), budget, false)

	return parent.replace(i, sub)
}

// pointMutate changes node i without touching the tree shape. It returns
// nil when the node has no point mutation.
func pointMutate(parent *Genome, i int, g *grower) *Genome {
	child := parent.Clone()
	n := &child.nodes[i]

	switch n.Kind {
	case KindConst:
		n.Value = roundTo(n.Value+g.rng.NormFloat64()*math.Max(1, math.Abs(n.Value)*0.1), 2)
	case KindSize:
		n.Value = roundTo(clamp(n.Value+g.rng.NormFloat64()*0.25, -1, 1), 2)
	case KindIndicator:
		if g.rng.Intn(2) == 0 {
			n.Indicator = g.opts.Indicators[g.rng.Intn(len(g.opts.Indicators))]
		} else {
			step := 1 + g.rng.Intn(3)
			if g.rng.Intn(2) == 0 {
				step = -step
			}

			n.Period = clampInt(n.Period+step, g.opts.MinPeriod, g.opts.MaxPeriod)
		}
	case KindPrice:
		leaf := g.indicatorLeaf()
		n.Kind, n.Indicator, n.Period = leaf.Kind, leaf.Indicator, leaf.Period
	case KindAdd, KindSub, KindMul, KindDiv:
		n.Kind = flip(n.Kind, internalKinds[TypeNumeric], g.rng)
	case KindGt:
		n.Kind = KindLt
	case KindLt:
		n.Kind = KindGt
	case KindCrossAbove:
		n.Kind = KindCrossBelow
	case KindCrossBelow:
		n.Kind = KindCrossAbove
	case KindAnd:
		n.Kind = KindOr
	case KindOr:
		n.Kind = KindAnd
	case KindTrue:
		n.Kind = KindFalse
	case KindFalse:
		n.Kind = KindTrue
	case KindIf:
		// swap the two branches
		children := parent.Children(i)
		cond := parent.subtree(children[0])
		then := parent.subtree(children[1])
		els := parent.subtree(children[2])

		nodes := make([]Node, 0, parent.Len())
		nodes = append(nodes, parent.nodes[:i+1]...)
		nodes = append(nodes, cond...)
		nodes = append(nodes, els...)
		nodes = append(nodes, then...)
		nodes = append(nodes, parent.nodes[i+parent.nodes[i].size:]...)
		recompute(nodes)

		return &Genome{nodes: nodes}
	case KindNot:
		return nil
	}

	recompute(child.nodes)

	return child
}

// flip picks a different kind from the same signature group.
func flip(k Kind, group []Kind, rng *rand.Rand) Kind {
	others := make([]Kind, 0, len(group)-1)
	for _, o := range group {
		if o != k {
			others = append(others, o)
		}
	}

	return others[rng.Intn(len(others))]
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))

	return math.Round(v*p) / p
}
