package genome

import (
	"math/rand"

	"github.com/rxtech-lab/argo-evolution/internal/types"
	"github.com/rxtech-lab/argo-evolution/pkg/errors"
)

// MaxRetries bounds the attempts Mutate and Crossover make before giving up.
const MaxRetries = 8

// leafProbability is the chance the grow method stops early at an inner node.
const leafProbability = 0.3

// Options controls which leaves random generation may draw.
type Options struct {
	// MinPeriod and MaxPeriod bound indicator periods.
	MinPeriod int
	MaxPeriod int
	// Indicators lists the indicator types leaves may reference.
	Indicators []types.IndicatorType
	// ConstMin and ConstMax bound freshly drawn constants.
	ConstMin float64
	ConstMax float64
}

// DefaultOptions returns options covering every indicator with periods 2..50.
func DefaultOptions() Options {
	return Options{
		MinPeriod:  2,
		MaxPeriod:  50,
		Indicators: types.AllIndicatorTypes,
		ConstMin:   0,
		ConstMax:   100,
	}
}

func (o Options) validate() error {
	if o.MinPeriod < 2 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "min period %d below 2", o.MinPeriod)
	}

	if o.MaxPeriod < o.MinPeriod {
		return errors.Newf(errors.ErrCodeInvalidParameter, "max period %d below min period %d", o.MaxPeriod, o.MinPeriod)
	}

	if len(o.Indicators) == 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "no indicator types to draw from")
	}

	for _, t := range o.Indicators {
		if !t.IsValid() {
			return errors.Newf(errors.ErrCodeInvalidParameter, "unknown indicator %q", t)
		}
	}

	if o.ConstMax < o.ConstMin {
		return errors.New(errors.ErrCodeInvalidParameter, "const max below const min")
	}

	return nil
}

// NewRandom grows a well-typed random genome whose height is at most maxDepth.
func NewRandom(maxDepth int, rng *rand.Rand, opts Options) (*Genome, error) {
	if maxDepth < 1 {
		return nil, errors.NewInvalidGenomeError("create", 0, "max depth must be at least 1")
	}

	if err := opts.validate(); err != nil {
		e := errors.NewInvalidGenomeError("create", 0, "unusable generator options")
		e.Cause = err

		return nil, e
	}

	g := &grower{rng: rng, opts: opts}
	nodes := g.grow(TypeSignal, maxDepth, true)
	recompute(nodes)

	return &Genome{nodes: nodes}, nil
}

type grower struct {
	rng  *rand.Rand
	opts Options
}

// grow appends a random subtree of type t with height at most budget.
// The root of a genome is forced to branch when the budget allows it.
func (g *grower) grow(t Type, budget int, root bool) []Node {
	if budget <= 1 || (!root && g.rng.Float64() < leafProbability) {
		return g.leaf(t, budget)
	}

	candidates := internalKinds[t]
	kind := candidates[g.rng.Intn(len(candidates))]

	nodes := []Node{{Kind: kind}}
	for k := 0; k < kind.Arity(); k++ {
		nodes = append(nodes, g.grow(kind.ArgType(k), budget-1, false)...)
	}

	return nodes
}

// leaf returns the smallest subtree of type t. Booleans prefer a comparison
// of two numeric leaves over a constant when the budget allows one.
func (g *grower) leaf(t Type, budget int) []Node {
	switch t {
	case TypeSignal:
		return []Node{g.sizeLeaf()}
	case TypeBool:
		if budget >= 2 {
			comparisons := []Kind{KindGt, KindLt, KindCrossAbove, KindCrossBelow}

			return []Node{
				{Kind: comparisons[g.rng.Intn(len(comparisons))]},
				g.numericLeaf(),
				g.numericLeaf(),
			}
		}

		if g.rng.Intn(2) == 0 {
			return []Node{{Kind: KindTrue}}
		}

		return []Node{{Kind: KindFalse}}
	default:
		return []Node{g.numericLeaf()}
	}
}

func (g *grower) sizeLeaf() Node {
	// positions on a coarse grid keep the expressions readable
	steps := []float64{-1, -0.5, 0, 0.5, 1}

	return Node{Kind: KindSize, Value: steps[g.rng.Intn(len(steps))]}
}

func (g *grower) numericLeaf() Node {
	switch r := g.rng.Float64(); {
	case r < 0.5:
		return g.indicatorLeaf()
	case r < 0.75:
		return Node{Kind: KindPrice}
	default:
		return Node{Kind: KindConst, Value: g.constant()}
	}
}

func (g *grower) indicatorLeaf() Node {
	return Node{
		Kind:      KindIndicator,
		Indicator: g.opts.Indicators[g.rng.Intn(len(g.opts.Indicators))],
		Period:    g.opts.MinPeriod + g.rng.Intn(g.opts.MaxPeriod-g.opts.MinPeriod+1),
	}
}

// constant draws a value rounded to two decimals so it prints compactly.
func (g *grower) constant() float64 {
	v := g.opts.ConstMin + g.rng.Float64()*(g.opts.ConstMax-g.opts.ConstMin)

	return roundTo(v, 2)
}
