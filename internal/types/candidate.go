package types

import (
	"time"
)

// CandidateFormatVersion is the layout version written into every CandidateRecord.
const CandidateFormatVersion = "1.1.0"

// EvaluationRecord is one evaluation kept in a candidate's history.
type EvaluationRecord struct {
	// Series is the name of the price series evaluated on.
	Series string `yaml:"series" json:"series"`
	// Points is the length of that series.
	Points int `yaml:"points" json:"points"`
	// Result is the fitness produced on that series.
	Result FitnessResult `yaml:"result" json:"result"`
}

// CandidateRecord is a promoted genome and its full evaluation history.
// Records are never modified; promoting the same genome again writes a new
// record that supersedes the older one for the same Fingerprint.
type CandidateRecord struct {
	// ID is the unique identifier of this record.
	ID string `yaml:"id" json:"id"`
	// FormatVersion is the record layout version (semver).
	FormatVersion string `yaml:"format_version" json:"format_version"`
	// Fingerprint identifies the genome structure; equal genomes share it.
	Fingerprint string `yaml:"fingerprint" json:"fingerprint"`
	// Genome is the canonical S-expression of the strategy.
	Genome string `yaml:"genome" json:"genome"`
	// Size is the number of nodes in the genome.
	Size int `yaml:"size" json:"size"`
	// Height is the depth of the genome tree.
	Height int `yaml:"height" json:"height"`
	// IndividualID is the ID the genome carried in the population.
	IndividualID string `yaml:"individual_id" json:"individual_id"`
	// Generation is the generation in which the candidate was promoted.
	Generation int `yaml:"generation" json:"generation"`
	// Born is the generation the individual was created in.
	Born int `yaml:"born" json:"born"`
	// Parents are the individual IDs the genome was bred from.
	Parents []string `yaml:"parents" json:"parents"`
	// RunID identifies the run that promoted the genome. Added in 1.1.0.
	RunID string `yaml:"run_id,omitempty" json:"run_id,omitempty"`
	// RunSeed is the random seed of the run that produced the genome.
	RunSeed int64 `yaml:"run_seed" json:"run_seed"`
	// InSample is the evaluation on the training series.
	InSample EvaluationRecord `yaml:"in_sample" json:"in_sample"`
	// OutOfSample is the evaluation on the held-out series.
	OutOfSample EvaluationRecord `yaml:"out_of_sample" json:"out_of_sample"`
	// Stress holds one evaluation per stress scenario.
	Stress []EvaluationRecord `yaml:"stress" json:"stress"`
	// PromotedAt is when the record was created.
	PromotedAt time.Time `yaml:"promoted_at" json:"promoted_at"`
}

// MinStressScore returns the lowest stress score, or 0 when there are none.
func (c CandidateRecord) MinStressScore() float64 {
	if len(c.Stress) == 0 {
		return 0
	}

	minScore := c.Stress[0].Result.Score
	for _, s := range c.Stress[1:] {
		if s.Result.Score < minScore {
			minScore = s.Result.Score
		}
	}

	return minScore
}
