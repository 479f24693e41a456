package genome

import (
	"encoding/json"

	"github.com/rxtech-lab/argo-evolution/pkg/errors"
)

type genomeJSON struct {
	Expression string `json:"expression"`
	Nodes      []Node `json:"nodes"`
}

// MarshalJSON writes the node arena together with its S-expression.
func (g *Genome) MarshalJSON() ([]byte, error) {
	return json.Marshal(genomeJSON{
		Expression: g.String(),
		Nodes:      g.nodes,
	})
}

// UnmarshalJSON reads the node arena; the expression is informational.
func (g *Genome) UnmarshalJSON(data []byte) error {
	var raw genomeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(errors.ErrCodeGenomeDecodeFailed, "failed to decode genome JSON", err)
	}

	parsed, err := FromNodes(raw.Nodes)
	if err != nil {
		return errors.Wrap(errors.ErrCodeGenomeDecodeFailed, "invalid genome nodes", err)
	}

	g.nodes = parsed.nodes

	return nil
}
