package types

// FitnessResult is the outcome of evaluating one genome against one price
// series. It is a value type and is never modified after it is produced.
type FitnessResult struct {
	// Score is the primary scalar used for selection.
	Score float64 `yaml:"score" json:"score"`
	// Return is the compounded strategy return (final equity - 1).
	Return float64 `yaml:"return" json:"return"`
	// MaxDrawdown is the largest peak-to-trough equity loss as a fraction.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
	// Turnover is the sum of absolute position changes.
	Turnover float64 `yaml:"turnover" json:"turnover"`
	// LatencyCost is the penalty charged for recomputing the signal every bar.
	LatencyCost float64 `yaml:"latency_cost" json:"latency_cost"`
	// Trades counts bars where the position changed.
	Trades int `yaml:"trades" json:"trades"`
	// Bars is the number of bars the genome was evaluated on.
	Bars int `yaml:"bars" json:"bars"`
	// TimedOut is set when the evaluation exceeded its budget and was scored zero.
	TimedOut bool `yaml:"timed_out,omitempty" json:"timed_out,omitempty"`
}

// ZeroFitness is the result given to genomes that never trade, time out or
// fail in isolation.
func ZeroFitness() FitnessResult {
	return FitnessResult{}
}

// TimedOutFitness is a zero result flagged as a timeout.
func TimedOutFitness() FitnessResult {
	return FitnessResult{TimedOut: true}
}

// Traded reports whether the genome ever held a position.
func (f FitnessResult) Traded() bool {
	return f.Trades > 0
}
