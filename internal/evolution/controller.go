// Package evolution drives the generational loop: evaluate, rank, promote and breed.
package evolution

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-evolution/internal/config"
	"github.com/rxtech-lab/argo-evolution/internal/fitness"
	"github.com/rxtech-lab/argo-evolution/internal/indicator"
	"github.com/rxtech-lab/argo-evolution/internal/logger"
	"github.com/rxtech-lab/argo-evolution/internal/metrics"
	"github.com/rxtech-lab/argo-evolution/internal/population"
	"github.com/rxtech-lab/argo-evolution/internal/promotion"
	"github.com/rxtech-lab/argo-evolution/internal/types"
	"github.com/rxtech-lab/argo-evolution/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Dataset is the input of a run. OutOfSample and Stress are only used when
// a promotion pipeline is configured.
type Dataset struct {
	InSample    types.PriceSeries
	OutOfSample types.PriceSeries
	Stress      []types.PriceSeries
}

// Controller runs the evolutionary search.
type Controller interface {
	// Run executes the search until it converges, reaches max_generations,
	// fails, or ctx is cancelled. It may be called once. The returned report
	// is never nil; the error is set only when the run failed.
	Run(ctx context.Context, data Dataset, callbacks LifecycleCallbacks) (*Report, error)
	// State returns the current lifecycle state.
	State() State
}

// ControllerV1 implements Controller.
type ControllerV1 struct {
	config    config.EvolutionConfig
	runID     string
	registry  indicator.IndicatorRegistry
	evaluator fitness.Evaluator
	manager   population.Manager
	pipeline  promotion.Pipeline
	metrics   *metrics.MetricsRegistry
	logger    *logger.Logger
	state     atomic.Int32
}

// Option customises a ControllerV1.
type Option func(*ControllerV1)

// WithRunID sets the ID reported for the run. Without it Run draws a
// random one.
func WithRunID(runID string) Option {
	return func(c *ControllerV1) {
		c.runID = runID
	}
}

// WithRegistry sets the indicator registry series are prepared with.
func WithRegistry(registry indicator.IndicatorRegistry) Option {
	return func(c *ControllerV1) {
		c.registry = registry
	}
}

// WithEvaluator replaces the default fitness evaluator.
func WithEvaluator(evaluator fitness.Evaluator) Option {
	return func(c *ControllerV1) {
		c.evaluator = evaluator
	}
}

// WithManager replaces the default population manager.
func WithManager(manager population.Manager) Option {
	return func(c *ControllerV1) {
		c.manager = manager
	}
}

// WithPromotion enables periodic promotion through pipeline.
func WithPromotion(pipeline promotion.Pipeline) Option {
	return func(c *ControllerV1) {
		c.pipeline = pipeline
	}
}

// WithMetrics records run metrics in m.
func WithMetrics(m *metrics.MetricsRegistry) Option {
	return func(c *ControllerV1) {
		c.metrics = m
	}
}

// NewController creates a controller for cfg. Components not supplied
// through options are built from cfg.
func NewController(cfg config.EvolutionConfig, log *logger.Logger, opts ...Option) Controller {
	c := &ControllerV1{
		config:    cfg,
		runID:     "",
		registry:  nil,
		evaluator: nil,
		manager:   nil,
		pipeline:  nil,
		metrics:   nil,
		logger:    log.Named("evolution"),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.registry == nil {
		c.registry = indicator.NewDefaultRegistry()
	}

	if c.evaluator == nil {
		c.evaluator = fitness.NewEvaluator(cfg.Fitness, c.registry, log)
	}

	if c.manager == nil {
		c.manager = population.NewManager(cfg, log)
	}

	return c
}

// State implements Controller.
func (c *ControllerV1) State() State {
	return State(c.state.Load())
}

func (c *ControllerV1) promotionEnabled() bool {
	return c.pipeline != nil && c.config.Promotion.PromotionInterval > 0 && c.config.Promotion.PromotionTopK > 0
}

// preRunCheck validates everything that can be checked before generation 0.
func (c *ControllerV1) preRunCheck(data Dataset) error {
	if err := c.config.Validate(); err != nil {
		return err
	}

	if err := data.InSample.Validate(); err != nil {
		return errors.WrapConfigurationError("dataset.in_sample", "invalid in-sample series", err)
	}

	required := c.config.MinSeriesLength()
	if data.InSample.Len() < required {
		return errors.NewDataInsufficientErrorf(required, data.InSample.Len(), data.InSample.Name,
			"in-sample series is shorter than max_indicator_period + 3")
	}

	if !c.promotionEnabled() {
		return nil
	}

	if len(data.Stress) == 0 {
		return errors.NewConfigurationError("dataset.stress", "stress series set is empty")
	}

	for _, series := range append([]types.PriceSeries{data.OutOfSample}, data.Stress...) {
		if err := series.Validate(); err != nil {
			return errors.WrapConfigurationError("dataset", fmt.Sprintf("invalid series %s", series.Name), err)
		}

		if series.Len() < required {
			return errors.NewDataInsufficientErrorf(required, series.Len(), series.Name,
				"promotion series is shorter than max_indicator_period + 3")
		}
	}

	return nil
}

// Run implements Controller.
func (c *ControllerV1) Run(ctx context.Context, data Dataset, callbacks LifecycleCallbacks) (report *Report, err error) {
	report = newReport(c.config.RandomSeed)
	if c.runID != "" {
		report.RunID = c.runID
	}

	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		report.State = StateFailed
		report.Err = errors.Newf(errors.ErrCodeControllerState, "controller already ran (state %s)", c.State())
		report.Finished = time.Now()

		return report, report.Err
	}

	defer func() {
		report.Finished = time.Now()
		report.Err = err
		c.state.Store(int32(report.State))

		c.logger.Info("Evolution finished",
			zap.String("run", report.RunID),
			zap.String("state", report.State.String()),
			zap.Int("generations", len(report.Generations)),
			zap.Int("promoted", len(report.Promoted)),
			zap.Duration("elapsed", report.Finished.Sub(report.Started)),
			zap.Error(err),
		)

		if callbacks.OnRunEnd != nil {
			(*callbacks.OnRunEnd)(report)
		}
	}()

	if err := c.preRunCheck(data); err != nil {
		report.State = StateFailed

		return report, err
	}

	if callbacks.OnRunStart != nil {
		if err := (*callbacks.OnRunStart)(c.config, data.InSample.Len()); err != nil {
			report.State = StateFailed

			return report, errors.Wrap(errors.ErrCodeCallbackFailed, "OnRunStart callback failed", err)
		}
	}

	c.logger.Info("Evolution started",
		zap.String("run", report.RunID),
		zap.Int64("seed", c.config.RandomSeed),
		zap.Int("population", c.config.PopulationSize),
		zap.Int("max_generations", c.config.MaxGenerations),
		zap.Int("series_length", data.InSample.Len()),
		zap.Bool("promotion", c.promotionEnabled()),
	)

	report.State, err = c.loop(ctx, c.prepare(data), report, callbacks)

	return report, err
}

// prepared holds the datasets wrapped for evaluation so indicator caches are
// shared across the whole run.
type prepared struct {
	inSample  *fitness.Series
	promotion promotion.Datasets
}

func (c *ControllerV1) prepare(data Dataset) prepared {
	p := prepared{
		inSample:  fitness.NewSeries(data.InSample, c.registry),
		promotion: promotion.Datasets{InSample: nil, OutOfSample: nil, Stress: nil},
	}

	if c.promotionEnabled() {
		p.promotion.InSample = p.inSample
		p.promotion.OutOfSample = fitness.NewSeries(data.OutOfSample, c.registry)

		for _, s := range data.Stress {
			p.promotion.Stress = append(p.promotion.Stress, fitness.NewSeries(s, c.registry))
		}
	}

	return p
}

func (c *ControllerV1) loop(ctx context.Context, data prepared, report *Report, callbacks LifecycleCallbacks) (State, error) {
	pop, err := c.manager.Initial()
	if err != nil {
		return StateFailed, fmt.Errorf("failed to create initial population: %w", err)
	}

	plateauBest := 0.0
	stale := 0

	for {
		if ctx.Err() != nil {
			c.logger.Info("Evolution cancelled", zap.Int("generation", pop.Generation))

			return StateStopped, nil
		}

		if callbacks.OnGenerationStart != nil {
			if err := (*callbacks.OnGenerationStart)(pop.Generation, pop.Size()); err != nil {
				return StateFailed, errors.Wrap(errors.ErrCodeCallbackFailed, "OnGenerationStart callback failed", err)
			}
		}

		start := time.Now()

		scores, tally, err := c.evaluate(ctx, pop, data.inSample, callbacks)
		if err != nil {
			return StateFailed, err
		}

		// A generation interrupted mid-evaluation is discarded.
		if ctx.Err() != nil {
			c.logger.Info("Evolution cancelled during evaluation", zap.Int("generation", pop.Generation))

			return StateStopped, nil
		}

		scored := pop.WithScores(scores)
		ranked := population.Ranked(scored.Individuals)

		stats, err := generationStats(pop.Generation, ranked)
		if err != nil {
			return StateFailed, errors.Wrap(errors.ErrCodeEvaluationFailed, "failed to compute generation statistics", err)
		}

		stats.TimedOut = tally.timedOut
		stats.Failed = tally.failed
		stats.Duration = time.Since(start)

		report.Generations = append(report.Generations, stats)
		report.Final = ranked

		if report.Best.IsNone() || ranked[0].Score() > report.Best.Unwrap().Score() {
			report.Best = optional.Some(ranked[0].Clone())
			report.BestGeneration = pop.Generation
		}

		if pop.Generation == 0 || stats.Best > plateauBest+c.config.PlateauEpsilon {
			plateauBest = stats.Best
			stale = 0
		} else {
			stale++
		}

		c.metrics.RecordGeneration(stats.Best, stats.Mean, stats.Diversity, stats.Duration)
		c.logger.Info("Generation complete",
			zap.Int("generation", stats.Generation),
			zap.Float64("best", stats.Best),
			zap.Float64("mean", stats.Mean),
			zap.Float64("std_dev", stats.StdDev),
			zap.Float64("diversity", stats.Diversity),
			zap.Int("timed_out", stats.TimedOut),
			zap.Int("failed", stats.Failed),
			zap.String("best_genome", stats.BestGenome),
		)

		if callbacks.OnGenerationEnd != nil {
			if err := (*callbacks.OnGenerationEnd)(stats, ranked); err != nil {
				return StateFailed, errors.Wrap(errors.ErrCodeCallbackFailed, "OnGenerationEnd callback failed", err)
			}
		}

		if c.promotionEnabled() && (pop.Generation+1)%c.config.Promotion.PromotionInterval == 0 {
			if err := c.promote(ctx, pop.Generation, ranked, data.promotion, report, callbacks); err != nil {
				if ctx.Err() != nil {
					return StateStopped, nil
				}

				return StateFailed, err
			}
		}

		if c.config.PlateauPatience > 0 && stale >= c.config.PlateauPatience {
			c.logger.Info("Evolution converged",
				zap.Int("generation", pop.Generation),
				zap.Int("patience", c.config.PlateauPatience),
				zap.Float64("best", plateauBest),
			)

			return StateConverged, nil
		}

		if pop.Generation+1 >= c.config.MaxGenerations {
			return StateStopped, nil
		}

		next, err := c.manager.NextGeneration(pop, scores)
		if err != nil {
			return StateFailed, fmt.Errorf("failed to breed generation %d: %w", pop.Generation+1, err)
		}

		pop = next
	}
}

// evaluationTally counts evaluations that were scored zero instead of failing the run.
type evaluationTally struct {
	timedOut int
	failed   int
}

// evaluate scores every individual of pop. Individuals that already carry a
// fitness (elites) are not re-evaluated.
func (c *ControllerV1) evaluate(ctx context.Context, pop population.Population, series *fitness.Series, callbacks LifecycleCallbacks) ([]types.FitnessResult, evaluationTally, error) {
	scores := make([]types.FitnessResult, pop.Size())
	outcomes := make([]string, pop.Size())

	var (
		mu   sync.Mutex
		done int
	)

	progress := func() {
		if callbacks.OnEvaluation == nil {
			return
		}

		mu.Lock()
		defer mu.Unlock()

		done++
		(*callbacks.OnEvaluation)(done, pop.Size())
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.config.Parallelism)

	for i, ind := range pop.Individuals {
		if ind.Fitness.IsSome() {
			scores[i] = ind.Fitness.Unwrap()
			outcomes[i] = metrics.ResultCarried
			c.metrics.RecordEvaluation(metrics.ResultCarried, 0)
			progress()

			continue
		}

		group.Go(func() error {
			result, outcome, err := c.evaluateOne(groupCtx, ind, series)
			if err != nil {
				return err
			}

			scores[i] = result
			outcomes[i] = outcome
			progress()

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, evaluationTally{}, err
	}

	tally := evaluationTally{}

	for _, outcome := range outcomes {
		switch outcome {
		case metrics.ResultTimeout:
			tally.timedOut++
		case metrics.ResultFailed:
			tally.failed++
		}
	}

	return scores, tally, nil
}

// evaluateOne runs one evaluation under the per-evaluation budget. Timeouts
// and isolated errors become zero fitness; only DataInsufficientError is
// returned, since it would hit every individual.
func (c *ControllerV1) evaluateOne(ctx context.Context, ind population.Individual, series *fitness.Series) (types.FitnessResult, string, error) {
	evalCtx := ctx

	if c.config.EvaluationTimeout > 0 {
		var cancel context.CancelFunc

		evalCtx, cancel = context.WithTimeout(ctx, c.config.EvaluationTimeout)
		defer cancel()
	}

	start := time.Now()
	result, err := c.evaluator.Evaluate(evalCtx, ind.Genome, series)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		c.metrics.RecordEvaluation(metrics.ResultOK, elapsed)

		return result, metrics.ResultOK, nil
	case errors.IsDataInsufficientError(err):
		c.metrics.RecordEvaluation(metrics.ResultFailed, elapsed)

		return types.FitnessResult{}, metrics.ResultFailed, err
	case ctx.Err() != nil:
		// The run is being cancelled; the generation is discarded.
		return types.ZeroFitness(), metrics.ResultFailed, nil
	case errors.IsEvaluationTimeoutError(err):
		c.metrics.RecordEvaluation(metrics.ResultTimeout, elapsed)
		c.logger.Warn("Evaluation timed out",
			zap.String("individual", ind.ID),
			zap.Duration("elapsed", elapsed),
			zap.String("genome", ind.Genome.String()),
		)

		return types.TimedOutFitness(), metrics.ResultTimeout, nil
	default:
		c.metrics.RecordEvaluation(metrics.ResultFailed, elapsed)
		c.logger.Warn("Evaluation failed",
			zap.String("individual", ind.ID),
			zap.String("genome", ind.Genome.String()),
			zap.Error(err),
		)

		return types.ZeroFitness(), metrics.ResultFailed, nil
	}
}

// promote passes the top promotion_top_k leaders through the pipeline.
func (c *ControllerV1) promote(ctx context.Context, generation int, ranked []population.Individual, data promotion.Datasets, report *Report, callbacks LifecycleCallbacks) error {
	top := min(c.config.Promotion.PromotionTopK, len(ranked))

	for _, ind := range ranked[:top] {
		decision, err := c.pipeline.Promote(ctx, ind, generation, data)
		if err != nil {
			return fmt.Errorf("promotion of %s in generation %d failed: %w", ind.ID, generation, err)
		}

		if decision.Promoted {
			report.Promoted = append(report.Promoted, decision.Record.Unwrap().ID)
		} else {
			report.Rejected++
		}

		if callbacks.OnPromotion != nil {
			(*callbacks.OnPromotion)(generation, ind, decision)
		}
	}

	return nil
}
