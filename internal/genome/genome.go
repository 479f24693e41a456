// Package genome encodes trading strategies as typed expression trees.
//
// A Genome is an arena of nodes stored in preorder: the root is at index 0,
// the first child of node i is at i+1 and each following sibling starts right
// after the previous sibling's subtree. Every node caches the size and height
// of its subtree, so a parent owns the contiguous span [i, i+Size) and
// subtree copies and replacements are slice operations.
//
// Genomes are immutable once built. Mutate and Crossover return new genomes
// and never touch their inputs.
package genome

import (
	"math"

	"github.com/rxtech-lab/argo-evolution/internal/types"
	"github.com/rxtech-lab/argo-evolution/pkg/errors"
)

// Node is one entry of the genome arena.
type Node struct {
	Kind Kind `json:"kind"`
	// Value is the constant for KindConst and the position for KindSize.
	Value float64 `json:"value,omitempty"`
	// Indicator and Period are set for KindIndicator.
	Indicator types.IndicatorType `json:"indicator,omitempty"`
	Period    int                 `json:"period,omitempty"`

	size   int
	height int
}

// Size returns the number of nodes in the subtree rooted at this node.
func (n Node) Size() int {
	return n.size
}

// Height returns the height of the subtree rooted at this node (a leaf is 1).
func (n Node) Height() int {
	return n.height
}

// Genome is a well-formed expression tree whose root produces a signal.
type Genome struct {
	nodes []Node
}

// newGenome takes ownership of nodes, checks the preorder structure and
// fills in the cached sizes and heights.
func newGenome(nodes []Node) (*Genome, error) {
	if err := checkStructure(nodes); err != nil {
		return nil, err
	}

	recompute(nodes)

	return &Genome{nodes: nodes}, nil
}

// FromNodes builds a genome from a preorder node list. The nodes are copied
// and validated without a depth limit.
func FromNodes(nodes []Node) (*Genome, error) {
	owned := make([]Node, len(nodes))
	copy(owned, nodes)

	g, err := newGenome(owned)
	if err != nil {
		return nil, err
	}

	if err := g.Validate(0); err != nil {
		return nil, err
	}

	return g, nil
}

// checkStructure verifies that the arities of nodes describe exactly one tree.
func checkStructure(nodes []Node) error {
	if len(nodes) == 0 {
		return errors.New(errors.ErrCodeInvalidGenome, "genome has no nodes")
	}

	open := 1
	for i, n := range nodes {
		if !n.Kind.Valid() {
			return errors.Newf(errors.ErrCodeInvalidGenome, "node %d has unknown kind %d", i, n.Kind)
		}

		if open == 0 {
			return errors.Newf(errors.ErrCodeInvalidGenome, "trailing nodes after index %d", i-1)
		}

		open += n.Kind.Arity() - 1
	}

	if open != 0 {
		return errors.Newf(errors.ErrCodeInvalidGenome, "tree is missing %d children", open)
	}

	return nil
}

// recompute fills the size and height caches with a reverse pass; children
// always sit at higher indices than their parent.
func recompute(nodes []Node) {
	for i := len(nodes) - 1; i >= 0; i-- {
		size, height := 1, 1
		child := i + 1

		for k := 0; k < nodes[i].Kind.Arity(); k++ {
			size += nodes[child].size
			if nodes[child].height+1 > height {
				height = nodes[child].height + 1
			}

			child += nodes[child].size
		}

		nodes[i].size = size
		nodes[i].height = height
	}
}

// Len returns the number of nodes.
func (g *Genome) Len() int {
	return len(g.nodes)
}

// Size is an alias of Len used for parsimony and latency cost.
func (g *Genome) Size() int {
	return len(g.nodes)
}

// Height returns the height of the tree (a single node has height 1).
func (g *Genome) Height() int {
	return g.nodes[0].height
}

// Node returns the i-th node in preorder.
func (g *Genome) Node(i int) Node {
	return g.nodes[i]
}

// Nodes returns a copy of the arena.
func (g *Genome) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)

	return out
}

// Children returns the indices of the children of node i, in order.
func (g *Genome) Children(i int) []int {
	arity := g.nodes[i].Kind.Arity()
	if arity == 0 {
		return nil
	}

	out := make([]int, 0, arity)
	child := i + 1

	for k := 0; k < arity; k++ {
		out = append(out, child)
		child += g.nodes[child].size
	}

	return out
}

// Depths returns the depth of every node; the root has depth 1.
func (g *Genome) Depths() []int {
	depths := make([]int, len(g.nodes))
	depths[0] = 1

	for i := range g.nodes {
		for _, c := range g.Children(i) {
			depths[c] = depths[i] + 1
		}
	}

	return depths
}

// Clone returns an independent copy.
func (g *Genome) Clone() *Genome {
	return &Genome{nodes: g.Nodes()}
}

// Equal reports whether two genomes have the same structure and payloads.
func (g *Genome) Equal(other *Genome) bool {
	if g == nil || other == nil {
		return g == other
	}

	if len(g.nodes) != len(other.nodes) {
		return false
	}

	for i := range g.nodes {
		a, b := g.nodes[i], other.nodes[i]
		if a.Kind != b.Kind || a.Value != b.Value || a.Indicator != b.Indicator || a.Period != b.Period {
			return false
		}
	}

	return true
}

// Fingerprint identifies the genome structure. Equal genomes share it.
func (g *Genome) Fingerprint() string {
	return g.String()
}

// Indicators returns the distinct (type, period) pairs in first-use order.
func (g *Genome) Indicators() []types.IndicatorRef {
	seen := make(map[types.IndicatorRef]bool)
	refs := make([]types.IndicatorRef, 0)

	for _, n := range g.nodes {
		if n.Kind != KindIndicator {
			continue
		}

		ref := types.IndicatorRef{Type: n.Indicator, Period: n.Period}
		if !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}

	return refs
}

// MaxPeriod returns the longest indicator period used, or 0.
func (g *Genome) MaxPeriod() int {
	maxPeriod := 0

	for _, n := range g.nodes {
		if n.Kind == KindIndicator && n.Period > maxPeriod {
			maxPeriod = n.Period
		}
	}

	return maxPeriod
}

// subtree returns a copy of the span owned by node i.
func (g *Genome) subtree(i int) []Node {
	out := make([]Node, g.nodes[i].size)
	copy(out, g.nodes[i:i+g.nodes[i].size])

	return out
}

// replace returns a new genome with the subtree at i replaced by sub.
func (g *Genome) replace(i int, sub []Node) *Genome {
	end := i + g.nodes[i].size
	nodes := make([]Node, 0, len(g.nodes)-(end-i)+len(sub))
	nodes = append(nodes, g.nodes[:i]...)
	nodes = append(nodes, sub...)
	nodes = append(nodes, g.nodes[end:]...)

	recompute(nodes)

	return &Genome{nodes: nodes}
}

// Validate checks typing, payloads and, when maxDepth > 0, the height bound.
func (g *Genome) Validate(maxDepth int) error {
	if g == nil || len(g.nodes) == 0 {
		return errors.New(errors.ErrCodeInvalidGenome, "genome is empty")
	}

	if err := checkStructure(g.nodes); err != nil {
		return err
	}

	if err := checkCaches(g.nodes); err != nil {
		return err
	}

	if root := g.nodes[0].Kind.Result(); root != TypeSignal {
		return errors.Newf(errors.ErrCodeInvalidGenome, "root must produce a signal, got %s", root)
	}

	if maxDepth > 0 && g.Height() > maxDepth {
		return errors.Newf(errors.ErrCodeInvalidGenome, "height %d exceeds max depth %d", g.Height(), maxDepth)
	}

	for i, n := range g.nodes {
		if err := validatePayload(i, n); err != nil {
			return err
		}

		for k, c := range g.Children(i) {
			want := n.Kind.ArgType(k)
			if got := g.nodes[c].Kind.Result(); got != want {
				return errors.Newf(errors.ErrCodeInvalidGenome, "node %d (%s) argument %d: want %s, got %s", i, n.Kind, k, want, got)
			}
		}
	}

	return nil
}

// checkCaches compares the cached sizes and heights with a fresh pass over
// the arities. A stale cache makes Children walk a different tree.
func checkCaches(nodes []Node) error {
	fresh := make([]Node, len(nodes))
	copy(fresh, nodes)
	recompute(fresh)

	for i := range nodes {
		if nodes[i].size != fresh[i].size || nodes[i].height != fresh[i].height {
			return errors.Newf(errors.ErrCodeInvalidGenome, "node %d caches size %d height %d, tree has size %d height %d",
				i, nodes[i].size, nodes[i].height, fresh[i].size, fresh[i].height)
		}
	}

	return nil
}

func validatePayload(i int, n Node) error {
	switch n.Kind {
	case KindConst:
		if math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
			return errors.Newf(errors.ErrCodeInvalidGenome, "node %d: constant is not finite", i)
		}
	case KindSize:
		if math.IsNaN(n.Value) || n.Value < -1 || n.Value > 1 {
			return errors.Newf(errors.ErrCodeInvalidGenome, "node %d: size %v outside [-1, 1]", i, n.Value)
		}
	case KindIndicator:
		if !n.Indicator.IsValid() {
			return errors.Newf(errors.ErrCodeInvalidGenome, "node %d: unknown indicator %q", i, n.Indicator)
		}

		if n.Period < 2 {
			return errors.Newf(errors.ErrCodeInvalidGenome, "node %d: period %d below 2", i, n.Period)
		}
	case KindPrice, KindAdd, KindSub, KindMul, KindDiv,
		KindTrue, KindFalse, KindGt, KindLt, KindCrossAbove, KindCrossBelow,
		KindAnd, KindOr, KindNot, KindIf:
	}

	return nil
}
