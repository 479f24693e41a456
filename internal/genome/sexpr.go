package genome

import (
	"strconv"
	"strings"

	"github.com/rxtech-lab/argo-evolution/internal/types"
	"github.com/rxtech-lab/argo-evolution/pkg/errors"
)

// String renders the canonical S-expression, for example
//
//	(if (gt price (ma 10)) (size 1) (size 0))
//
// Constants print as bare numbers and indicators as (type period).
func (g *Genome) String() string {
	var sb strings.Builder

	g.write(&sb, 0)

	return sb.String()
}

func (g *Genome) write(sb *strings.Builder, i int) {
	n := g.nodes[i]

	switch n.Kind {
	case KindConst:
		sb.WriteString(formatFloat(n.Value))
	case KindPrice, KindTrue, KindFalse:
		sb.WriteString(n.Kind.String())
	case KindIndicator:
		sb.WriteString("(")
		sb.WriteString(string(n.Indicator))
		sb.WriteString(" ")
		sb.WriteString(strconv.Itoa(n.Period))
		sb.WriteString(")")
	case KindSize:
		sb.WriteString("(size ")
		sb.WriteString(formatFloat(n.Value))
		sb.WriteString(")")
	case KindAdd, KindSub, KindMul, KindDiv,
		KindGt, KindLt, KindCrossAbove, KindCrossBelow,
		KindAnd, KindOr, KindNot, KindIf:
		sb.WriteString("(")
		sb.WriteString(n.Kind.String())

		for _, c := range g.Children(i) {
			sb.WriteString(" ")
			g.write(sb, c)
		}

		sb.WriteString(")")
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Parse reads the S-expression form produced by String. The result is
// type-checked but not depth-limited.
func Parse(expr string) (*Genome, error) {
	p := &parser{tokens: tokenize(expr)}

	nodes, err := p.expr()
	if err != nil {
		return nil, err
	}

	if p.pos != len(p.tokens) {
		return nil, errors.Newf(errors.ErrCodeGenomeDecodeFailed, "unexpected token %q after expression", p.tokens[p.pos])
	}

	g, err := newGenome(nodes)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeGenomeDecodeFailed, "malformed expression", err)
	}

	if err := g.Validate(0); err != nil {
		return nil, errors.Wrap(errors.ErrCodeGenomeDecodeFailed, "ill-typed expression", err)
	}

	return g, nil
}

func tokenize(expr string) []string {
	expr = strings.ReplaceAll(expr, "(", " ( ")
	expr = strings.ReplaceAll(expr, ")", " ) ")

	return strings.Fields(expr)
}

type parser struct {
	tokens []string
	pos    int
}

func (p *parser) next() (string, error) {
	if p.pos >= len(p.tokens) {
		return "", errors.New(errors.ErrCodeGenomeDecodeFailed, "unexpected end of expression")
	}

	tok := p.tokens[p.pos]
	p.pos++

	return tok, nil
}

func (p *parser) expect(want string) error {
	tok, err := p.next()
	if err != nil {
		return err
	}

	if tok != want {
		return errors.Newf(errors.ErrCodeGenomeDecodeFailed, "expected %q, got %q", want, tok)
	}

	return nil
}

func (p *parser) number() (float64, error) {
	tok, err := p.next()
	if err != nil {
		return 0, err
	}

	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeGenomeDecodeFailed, err, "bad number %q", tok)
	}

	return v, nil
}

func (p *parser) expr() ([]Node, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}

	switch tok {
	case "(":
		return p.list()
	case ")":
		return nil, errors.New(errors.ErrCodeGenomeDecodeFailed, "unexpected \")\"")
	case "price":
		return []Node{{Kind: KindPrice}}, nil
	case "true":
		return []Node{{Kind: KindTrue}}, nil
	case "false":
		return []Node{{Kind: KindFalse}}, nil
	}

	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return nil, errors.Newf(errors.ErrCodeGenomeDecodeFailed, "unknown atom %q", tok)
	}

	return []Node{{Kind: KindConst, Value: v}}, nil
}

// list parses the remainder of a parenthesised form.
func (p *parser) list() ([]Node, error) {
	head, err := p.next()
	if err != nil {
		return nil, err
	}

	if ind := types.IndicatorType(head); ind.IsValid() {
		period, err := p.number()
		if err != nil {
			return nil, err
		}

		if period != float64(int(period)) {
			return nil, errors.Newf(errors.ErrCodeGenomeDecodeFailed, "period %v is not an integer", period)
		}

		if err := p.expect(")"); err != nil {
			return nil, err
		}

		return []Node{{Kind: KindIndicator, Indicator: ind, Period: int(period)}}, nil
	}

	if head == "size" {
		v, err := p.number()
		if err != nil {
			return nil, err
		}

		if err := p.expect(")"); err != nil {
			return nil, err
		}

		return []Node{{Kind: KindSize, Value: v}}, nil
	}

	kind, ok := kindsByName[head]
	if !ok || kind.IsLeaf() {
		return nil, errors.Newf(errors.ErrCodeGenomeDecodeFailed, "unknown operator %q", head)
	}

	nodes := []Node{{Kind: kind}}

	for k := 0; k < kind.Arity(); k++ {
		child, err := p.expr()
		if err != nil {
			return nil, err
		}

		nodes = append(nodes, child...)
	}

	if err := p.expect(")"); err != nil {
		return nil, err
	}

	return nodes, nil
}

// Must panics if err is non-nil. It is meant for expressions known at compile time.
func Must(g *Genome, err error) *Genome {
	if err != nil {
		panic(err)
	}

	return g
}
