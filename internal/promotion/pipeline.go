// Package promotion gates leaders of a run through out-of-sample and stress
// evaluations before they are admitted to the candidate pool.
package promotion

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-evolution/internal/config"
	"github.com/rxtech-lab/argo-evolution/internal/fitness"
	"github.com/rxtech-lab/argo-evolution/internal/logger"
	"github.com/rxtech-lab/argo-evolution/internal/metrics"
	"github.com/rxtech-lab/argo-evolution/internal/population"
	"github.com/rxtech-lab/argo-evolution/internal/store"
	"github.com/rxtech-lab/argo-evolution/internal/types"
	"github.com/rxtech-lab/argo-evolution/pkg/errors"
	"go.uber.org/zap"
)

// Gates a candidate can fail.
const (
	GateInSample    = "in_sample"
	GateOutOfSample = "out_of_sample"
	GateStress      = "stress"
)

// Datasets are the series a candidate is judged on.
type Datasets struct {
	InSample    *fitness.Series
	OutOfSample *fitness.Series
	Stress      []*fitness.Series
}

// Decision is the outcome of one promotion attempt.
type Decision struct {
	// Promoted is true when every gate passed and the record was saved.
	Promoted bool
	// Gate names the first gate that failed.
	Gate string
	// Reason explains a rejection.
	Reason string
	// Record is set for promoted candidates.
	Record optional.Option[types.CandidateRecord]
	// InSample and OutOfSample are the evaluations the gates were applied to.
	InSample    types.FitnessResult
	OutOfSample types.FitnessResult
	// Stress holds the stress evaluations (empty if an earlier gate failed).
	Stress []types.EvaluationRecord
}

// Pipeline runs the promotion gates.
type Pipeline interface {
	// Promote evaluates ind once on every dataset and saves a CandidateRecord
	// when it clears all gates. generation is the generation being promoted from.
	Promote(ctx context.Context, ind population.Individual, generation int, data Datasets) (Decision, error)
}

// PipelineV1 implements Pipeline.
type PipelineV1 struct {
	config    config.PromotionConfig
	seed      int64
	runID     string
	evaluator fitness.Evaluator
	store     store.CandidateStore
	metrics   *metrics.MetricsRegistry
	logger    *logger.Logger
	now       func() time.Time
}

// Option customises a PipelineV1.
type Option func(*PipelineV1)

// WithMetrics records decisions in m.
func WithMetrics(m *metrics.MetricsRegistry) Option {
	return func(p *PipelineV1) {
		p.metrics = m
	}
}

// WithRunID sets the run the promoted records belong to. Without it every
// pipeline draws a random run ID.
func WithRunID(runID string) Option {
	return func(p *PipelineV1) {
		p.runID = runID
	}
}

// WithClock replaces time.Now for PromotedAt.
func WithClock(now func() time.Time) Option {
	return func(p *PipelineV1) {
		p.now = now
	}
}

// NewPipeline creates a promotion pipeline. seed is the run seed recorded
// in candidates.
func NewPipeline(cfg config.PromotionConfig, seed int64, evaluator fitness.Evaluator, candidates store.CandidateStore, log *logger.Logger, opts ...Option) Pipeline {
	p := &PipelineV1{
		config:    cfg,
		seed:      seed,
		runID:     uuid.NewString(),
		evaluator: evaluator,
		store:     candidates,
		metrics:   nil,
		logger:    log.Named("promotion"),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// candidateNamespace scopes the name-based IDs of candidate records.
var candidateNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/rxtech-lab/argo-evolution/candidate"))

// CandidateID returns the record ID for an individual promoted in generation
// of run runID. Individual IDs repeat across runs with the same seed, so the
// run keeps records of re-runs into one pool apart.
func CandidateID(runID string, generation int, individualID string) string {
	return uuid.NewSHA1(candidateNamespace, []byte(fmt.Sprintf("%s/%d/%s", runID, generation, individualID))).String()
}

// PassesOutOfSample reports whether the out-of-sample score is within
// tolerance of the in-sample score: is - oos <= tolerance * |is|.
func PassesOutOfSample(inSample, outOfSample, tolerance float64) bool {
	return inSample-outOfSample <= tolerance*math.Abs(inSample)
}

// Promote implements Pipeline.
func (p *PipelineV1) Promote(ctx context.Context, ind population.Individual, generation int, data Datasets) (Decision, error) {
	if len(data.Stress) == 0 {
		return Decision{}, errors.NewConfigurationError("promotion.stress", "stress series set is empty")
	}

	if data.InSample == nil || data.OutOfSample == nil {
		return Decision{}, errors.NewConfigurationError("promotion.datasets", "in-sample and out-of-sample series are required")
	}

	decision := Decision{}

	inSample, err := p.evaluator.Evaluate(ctx, ind.Genome, data.InSample)
	if err != nil {
		return Decision{}, fmt.Errorf("in-sample evaluation of %s failed: %w", ind.ID, err)
	}

	decision.InSample = inSample

	if !inSample.Traded() {
		return p.reject(ind, decision, GateInSample, "genome never trades in sample"), nil
	}

	outOfSample, err := p.evaluator.Evaluate(ctx, ind.Genome, data.OutOfSample)
	if err != nil {
		return Decision{}, fmt.Errorf("out-of-sample evaluation of %s failed: %w", ind.ID, err)
	}

	decision.OutOfSample = outOfSample

	if !PassesOutOfSample(inSample.Score, outOfSample.Score, p.config.OOSTolerance) {
		return p.reject(ind, decision, GateOutOfSample, fmt.Sprintf(
			"out-of-sample score %.6f is more than %.2f below in-sample score %.6f",
			outOfSample.Score, p.config.OOSTolerance, inSample.Score)), nil
	}

	for _, series := range data.Stress {
		result, err := p.evaluator.Evaluate(ctx, ind.Genome, series)
		if err != nil {
			return Decision{}, fmt.Errorf("stress evaluation of %s on %s failed: %w", ind.ID, series.Name(), err)
		}

		decision.Stress = append(decision.Stress, types.EvaluationRecord{
			Series: series.Name(),
			Points: series.Len(),
			Result: result,
		})

		if result.Score <= p.config.StressFloor {
			return p.reject(ind, decision, GateStress, fmt.Sprintf(
				"stress score %.6f on %s is not above floor %.6f", result.Score, series.Name(), p.config.StressFloor)), nil
		}
	}

	record := types.CandidateRecord{
		ID:            CandidateID(p.runID, generation, ind.ID),
		FormatVersion: types.CandidateFormatVersion,
		Fingerprint:   ind.Genome.Fingerprint(),
		Genome:        ind.Genome.String(),
		Size:          ind.Genome.Size(),
		Height:        ind.Genome.Height(),
		IndividualID:  ind.ID,
		Generation:    generation,
		Born:          ind.Born,
		Parents:       append([]string{}, ind.Parents...),
		RunID:         p.runID,
		RunSeed:       p.seed,
		InSample:      types.EvaluationRecord{Series: data.InSample.Name(), Points: data.InSample.Len(), Result: inSample},
		OutOfSample:   types.EvaluationRecord{Series: data.OutOfSample.Name(), Points: data.OutOfSample.Len(), Result: outOfSample},
		Stress:        decision.Stress,
		PromotedAt:    p.now().UTC(),
	}

	if err := p.store.Save(ctx, record); err != nil {
		return Decision{}, fmt.Errorf("failed to save candidate %s: %w", record.ID, err)
	}

	p.metrics.RecordPromotion(metrics.DecisionPass, "")
	p.logger.Info("Candidate promoted",
		zap.String("candidate", record.ID),
		zap.String("run", p.runID),
		zap.String("individual", ind.ID),
		zap.Int("generation", generation),
		zap.Float64("in_sample", inSample.Score),
		zap.Float64("out_of_sample", outOfSample.Score),
		zap.Float64("min_stress", record.MinStressScore()),
		zap.String("genome", record.Genome),
	)

	decision.Promoted = true
	decision.Record = optional.Some(record)

	return decision, nil
}

func (p *PipelineV1) reject(ind population.Individual, decision Decision, gate, reason string) Decision {
	decision.Promoted = false
	decision.Gate = gate
	decision.Reason = reason
	decision.Record = optional.None[types.CandidateRecord]()

	p.metrics.RecordPromotion(metrics.DecisionReject, gate)
	p.logger.Debug("Candidate rejected",
		zap.String("individual", ind.ID),
		zap.String("gate", gate),
		zap.String("reason", reason),
	)

	return decision
}
