package fitness

import (
	"math"

	"github.com/rxtech-lab/argo-evolution/internal/genome"
	"github.com/rxtech-lab/argo-evolution/internal/types"
)

// divisionEpsilon is the smallest denominator magnitude div accepts; below
// it the denominator is treated as 1.
const divisionEpsilon = 1e-12

// program is a genome bound to the columns of one series. It evaluates the
// arena with a single reverse scan per bar: children sit after their parent,
// so by the time a node is visited its operands are already computed.
type program struct {
	nodes    []genome.Node
	children [][]int
	columns  [][]float64 // indicator output per node, nil for other kinds
	prices   []float64

	cur  []float64
	prev []float64
}

func compile(g *genome.Genome, s *Series) (*program, error) {
	p := &program{
		nodes:    g.Nodes(),
		children: make([][]int, g.Len()),
		columns:  make([][]float64, g.Len()),
		prices:   s.cache.Prices(),
		cur:      make([]float64, g.Len()),
		prev:     make([]float64, g.Len()),
	}

	for i, n := range p.nodes {
		p.children[i] = g.Children(i)

		if n.Kind != genome.KindIndicator {
			continue
		}

		column, err := s.cache.Get(types.IndicatorRef{Type: n.Indicator, Period: n.Period})
		if err != nil {
			return nil, err
		}

		p.columns[i] = column
	}

	return p, nil
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}

	return 0
}

// step evaluates every node at bar t and returns the root signal. The
// values of bar t-1 remain available for the crossing operators.
func (p *program) step(t int) float64 {
	p.prev, p.cur = p.cur, p.prev

	for i := len(p.nodes) - 1; i >= 0; i-- {
		n := p.nodes[i]
		c := p.children[i]

		var v float64

		switch n.Kind {
		case genome.KindConst:
			v = n.Value
		case genome.KindPrice:
			v = p.prices[t]
		case genome.KindIndicator:
			v = p.columns[i][t]
		case genome.KindAdd:
			v = p.cur[c[0]] + p.cur[c[1]]
		case genome.KindSub:
			v = p.cur[c[0]] - p.cur[c[1]]
		case genome.KindMul:
			v = p.cur[c[0]] * p.cur[c[1]]
		case genome.KindDiv:
			den := p.cur[c[1]]
			if math.Abs(den) < divisionEpsilon {
				den = 1
			}

			v = p.cur[c[0]] / den
		case genome.KindTrue:
			v = 1
		case genome.KindFalse:
			v = 0
		case genome.KindGt:
			v = boolValue(p.cur[c[0]] > p.cur[c[1]])
		case genome.KindLt:
			v = boolValue(p.cur[c[0]] < p.cur[c[1]])
		case genome.KindCrossAbove:
			v = boolValue(p.prev[c[0]] <= p.prev[c[1]] && p.cur[c[0]] > p.cur[c[1]])
		case genome.KindCrossBelow:
			v = boolValue(p.prev[c[0]] >= p.prev[c[1]] && p.cur[c[0]] < p.cur[c[1]])
		case genome.KindAnd:
			v = boolValue(p.cur[c[0]] != 0 && p.cur[c[1]] != 0)
		case genome.KindOr:
			v = boolValue(p.cur[c[0]] != 0 || p.cur[c[1]] != 0)
		case genome.KindNot:
			v = boolValue(p.cur[c[0]] == 0)
		case genome.KindSize:
			v = n.Value
		case genome.KindIf:
			if p.cur[c[0]] != 0 {
				v = p.cur[c[1]]
			} else {
				v = p.cur[c[2]]
			}
		}

		p.cur[i] = v
	}

	return p.cur[0]
}
