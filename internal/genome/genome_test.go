package genome

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rxtech-lab/argo-evolution/internal/rng"
	"github.com/rxtech-lab/argo-evolution/internal/types"
	"github.com/rxtech-lab/argo-evolution/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type GenomeTestSuite struct {
	suite.Suite
	opts Options
}

func TestGenomeSuite(t *testing.T) {
	suite.Run(t, new(GenomeTestSuite))
}

func (suite *GenomeTestSuite) SetupTest() {
	suite.opts = DefaultOptions()
	suite.opts.MaxPeriod = 20
}

func (suite *GenomeTestSuite) mustParse(expr string) *Genome {
	g, err := Parse(expr)
	suite.Require().NoError(err, expr)

	return g
}

func (suite *GenomeTestSuite) TestRandomGenomesAreValid() {
	for _, maxDepth := range []int{1, 2, 3, 4, 6} {
		for seed := int64(0); seed < 200; seed++ {
			g, err := NewRandom(maxDepth, rng.New(seed, int64(maxDepth)), suite.opts)
			suite.Require().NoError(err)
			suite.LessOrEqual(g.Height(), maxDepth)
			suite.NoError(g.Validate(maxDepth), g.String())
			suite.Equal(TypeSignal, g.Node(0).Kind.Result())

			for _, ref := range g.Indicators() {
				suite.GreaterOrEqual(ref.Period, suite.opts.MinPeriod)
				suite.LessOrEqual(ref.Period, suite.opts.MaxPeriod)
			}
		}
	}
}

func (suite *GenomeTestSuite) TestRandomIsReproducible() {
	a, err := NewRandom(5, rng.New(42, 7), suite.opts)
	suite.Require().NoError(err)

	b, err := NewRandom(5, rng.New(42, 7), suite.opts)
	suite.Require().NoError(err)

	suite.True(a.Equal(b))
	suite.Equal(a.String(), b.String())
}

func (suite *GenomeTestSuite) TestNewRandomRejectsBadInput() {
	_, err := NewRandom(0, rng.New(1), suite.opts)
	suite.True(errors.IsInvalidGenomeError(err))

	opts := suite.opts
	opts.Indicators = nil
	_, err = NewRandom(3, rng.New(1), opts)
	suite.True(errors.IsInvalidGenomeError(err))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidGenome))

	opts = suite.opts
	opts.MinPeriod = 30
	_, err = NewRandom(3, rng.New(1), opts)
	suite.True(errors.IsInvalidGenomeError(err))
}

func (suite *GenomeTestSuite) TestMutateNeverModifiesInput() {
	for seed := int64(0); seed < 200; seed++ {
		parent, err := NewRandom(4, rng.New(seed), suite.opts)
		suite.Require().NoError(err)

		before := parent.Nodes()

		child, err := Mutate(parent, 4, rng.New(seed, 1), suite.opts)
		if err != nil {
			suite.True(errors.IsInvalidGenomeError(err))
		} else {
			suite.NoError(child.Validate(4))
		}

		suite.Empty(cmp.Diff(before, parent.Nodes(), cmp.AllowUnexported(Node{})))
	}
}

func (suite *GenomeTestSuite) TestCrossoverNeverModifiesInputs() {
	for seed := int64(0); seed < 200; seed++ {
		a, err := NewRandom(4, rng.New(seed, 1), suite.opts)
		suite.Require().NoError(err)

		b, err := NewRandom(4, rng.New(seed, 2), suite.opts)
		suite.Require().NoError(err)

		beforeA, beforeB := a.Nodes(), b.Nodes()

		childA, childB, err := Crossover(a, b, 4, rng.New(seed, 3))
		if err != nil {
			suite.True(errors.IsInvalidGenomeError(err))
		} else {
			suite.NoError(childA.Validate(4))
			suite.NoError(childB.Validate(4))
			suite.Equal(a.Len()+b.Len(), childA.Len()+childB.Len())
		}

		suite.Empty(cmp.Diff(beforeA, a.Nodes(), cmp.AllowUnexported(Node{})))
		suite.Empty(cmp.Diff(beforeB, b.Nodes(), cmp.AllowUnexported(Node{})))
	}
}

func (suite *GenomeTestSuite) TestCrossoverFailsWhenNothingFits() {
	// any swap that is not root-for-root makes one side deeper than 2
	a := suite.mustParse("(if true (size 1) (size 0))")
	b := suite.mustParse("(if false (size -1) (size 0.5))")

	childA, childB, err := Crossover(a, b, 2, rng.New(3))
	if err == nil {
		suite.LessOrEqual(childA.Height(), 2)
		suite.LessOrEqual(childB.Height(), 2)
	} else {
		suite.True(errors.IsInvalidGenomeError(err))
	}
}

func (suite *GenomeTestSuite) TestMutateRejectsBadOptions() {
	g := suite.mustParse("(size 1)")

	opts := suite.opts
	opts.Indicators = []types.IndicatorType{"unknown"}

	_, err := Mutate(g, 3, rng.New(1), opts)
	suite.True(errors.IsInvalidGenomeError(err))
}

func (suite *GenomeTestSuite) TestStringParseRoundTrip() {
	for seed := int64(0); seed < 100; seed++ {
		g, err := NewRandom(5, rng.New(seed), suite.opts)
		suite.Require().NoError(err)

		parsed, err := Parse(g.String())
		suite.Require().NoError(err, g.String())
		suite.True(g.Equal(parsed), g.String())
		suite.Equal(g.Height(), parsed.Height())
	}
}

func (suite *GenomeTestSuite) TestCanonicalForm() {
	expr := "(if (gt price (ma 10)) (size 1) (size 0))"
	g := suite.mustParse(expr)

	suite.Equal(expr, g.String())
	suite.Equal(expr, g.Fingerprint())
	suite.Equal(6, g.Size())
	suite.Equal(3, g.Height())
	suite.Equal([]int{1, 4, 5}, g.Children(0))
	suite.Equal([]int{2, 3}, g.Children(1))
	suite.Nil(g.Children(2))
	suite.Equal([]int{1, 2, 3, 3, 2, 2}, g.Depths())
	suite.Equal(6, g.Node(0).Size())
	suite.Equal(2, g.Node(1).Height())
	suite.Equal(10, g.MaxPeriod())
	suite.Equal([]types.IndicatorRef{{Type: types.IndicatorTypeMA, Period: 10}}, g.Indicators())

	// whitespace is not significant
	suite.True(g.Equal(suite.mustParse("( if (gt  price (ma 10))\n(size 1) (size 0) )")))
}

func (suite *GenomeTestSuite) TestIndicatorsAreDistinct() {
	g := suite.mustParse("(if (and (gt (rsi 14) 70) (cross_above (ema 5) (rsi 14))) (size -1) (size 0))")

	suite.Equal([]types.IndicatorRef{
		{Type: types.IndicatorTypeRSI, Period: 14},
		{Type: types.IndicatorTypeEMA, Period: 5},
	}, g.Indicators())
}

func (suite *GenomeTestSuite) TestParseErrors() {
	tests := []string{
		"",
		"(size 1",
		"(size 1))",
		"(if true (size 1))",
		"(gt price 3)",
		"(if price (size 1) (size 0))",
		"(size 2)",
		"(if true (size 1) (size 0) (size 0))",
		"(ma 2.5)",
		"(foo 1 2)",
		"banana",
		"(if true (size 1) (size x))",
		"(if (gt (ma 1) 1) (size 1) (size 0))",
	}

	for _, expr := range tests {
		_, err := Parse(expr)
		suite.Error(err, expr)
		suite.True(errors.HasCode(err, errors.ErrCodeGenomeDecodeFailed), expr)
	}
}

func (suite *GenomeTestSuite) TestValidateDepth() {
	g := suite.mustParse("(if (not (gt price 1)) (size 1) (size 0))")

	suite.Equal(4, g.Height())
	suite.NoError(g.Validate(4))
	suite.NoError(g.Validate(0))
	suite.Error(g.Validate(3))
}

func (suite *GenomeTestSuite) TestFromNodesRejectsMalformed() {
	_, err := FromNodes(nil)
	suite.Error(err)

	_, err = FromNodes([]Node{{Kind: KindIf}, {Kind: KindTrue}})
	suite.Error(err)

	_, err = FromNodes([]Node{{Kind: KindSize, Value: 1}, {Kind: KindSize, Value: 0}})
	suite.Error(err)

	_, err = FromNodes([]Node{{Kind: Kind(99)}})
	suite.Error(err)

	g, err := FromNodes([]Node{{Kind: KindSize, Value: 0.5}})
	suite.NoError(err)
	suite.Equal("(size 0.5)", g.String())
}

func (suite *GenomeTestSuite) TestJSONRoundTrip() {
	g := suite.mustParse("(if (cross_below (macd 12) 0) (size -0.5) (size 0.25))")

	data, err := json.Marshal(g)
	suite.Require().NoError(err)
	suite.Contains(string(data), `"kind":"cross_below"`)
	suite.Contains(string(data), `"expression":"(if (cross_below (macd 12) 0) (size -0.5) (size 0.25))"`)

	var decoded Genome
	suite.Require().NoError(json.Unmarshal(data, &decoded))
	suite.True(g.Equal(&decoded))
	suite.Equal(g.Height(), decoded.Height())

	suite.Error(json.Unmarshal([]byte(`{"nodes":[{"kind":"if"}]}`), &decoded))
	suite.Error(json.Unmarshal([]byte(`{"nodes":[{"kind":"nope"}]}`), &decoded))
}

func (suite *GenomeTestSuite) TestCloneIsIndependent() {
	g := suite.mustParse("(if true (size 1) (size 0))")
	clone := g.Clone()

	clone.nodes[2].Value = -1

	suite.Equal("(if true (size 1) (size 0))", g.String())
	suite.False(g.Equal(clone))
}

func (suite *GenomeTestSuite) TestPointMutations() {
	g := suite.mustParse("(if (and (gt price 5) true) (size 1) (size 0))")
	grow := &grower{rng: rng.New(1), opts: suite.opts}

	flipped := pointMutate(g, 2, grow)
	suite.Equal("(if (and (lt price 5) true) (size 1) (size 0))", flipped.String())

	swapped := pointMutate(g, 0, grow)
	suite.Equal("(if (and (gt price 5) true) (size 0) (size 1))", swapped.String())
	suite.Equal(g.Height(), swapped.Height())

	suite.Nil(pointMutate(suite.mustParse("(if (not true) (size 1) (size 0))"), 1, grow))
}

func (suite *GenomeTestSuite) TestPriceMutationKeepsCaches() {
	g := suite.mustParse("(if (gt price 5) (size 1) (size 0))")
	grow := &grower{rng: rng.New(7), opts: suite.opts}

	child := pointMutate(g, 2, grow)
	suite.Require().NotNil(child)
	suite.NoError(child.Validate(3))
	suite.Equal(KindIndicator, child.Node(2).Kind)
	suite.Equal(1, child.Node(2).Size())
	suite.Equal(1, child.Node(2).Height())
	suite.Equal(6, child.Node(0).Size())
	suite.Equal([]int{2, 3}, child.Children(1))
	suite.Contains(child.String(), " 5) (size 1) (size 0))")

	parsed, err := Parse(child.String())
	suite.Require().NoError(err, child.String())
	suite.True(child.Equal(parsed))
}

func (suite *GenomeTestSuite) TestValidateRejectsStaleCaches() {
	g := suite.mustParse("(if (gt price 5) (size 1) (size 0))")
	stale := g.Clone()
	stale.nodes[2].size = 0
	stale.nodes[2].height = 0

	err := stale.Validate(0)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidGenome))
}

// consistent checks the caches against a fresh pass and the canonical form
// against the parser.
func (suite *GenomeTestSuite) consistent(g *Genome, maxDepth int) {
	suite.Require().NoError(g.Validate(maxDepth), g.String())
	suite.Require().NoError(checkCaches(g.nodes), g.String())

	parsed, err := Parse(g.String())
	suite.Require().NoError(err, g.String())
	suite.True(g.Equal(parsed), g.String())
	suite.Equal(g.Height(), parsed.Height())
	suite.Empty(cmp.Diff(parsed.Nodes(), g.Nodes(), cmp.AllowUnexported(Node{})))
}

func (suite *GenomeTestSuite) TestOperatorChainsStayConsistent() {
	const maxDepth = 4

	for seed := int64(0); seed < 60; seed++ {
		a, err := NewRandom(maxDepth, rng.New(seed, 1), suite.opts)
		suite.Require().NoError(err)

		b, err := NewRandom(maxDepth, rng.New(seed, 2), suite.opts)
		suite.Require().NoError(err)

		for round := int64(0); round < 15; round++ {
			if m, err := Mutate(a, maxDepth, rng.New(seed, round, 3), suite.opts); err == nil {
				a = m
			}

			suite.consistent(a, maxDepth)

			if ca, cb, err := Crossover(a, b, maxDepth, rng.New(seed, round, 4)); err == nil {
				a, b = ca, cb
			}

			suite.consistent(a, maxDepth)
			suite.consistent(b, maxDepth)

			if m, err := Mutate(b, maxDepth, rng.New(seed, round, 5), suite.opts); err == nil {
				b = m
			}

			suite.consistent(b, maxDepth)
		}
	}
}
