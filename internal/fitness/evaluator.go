// Package fitness scores genomes against price series.
package fitness

import (
	"context"
	"math"
	"time"

	"github.com/rxtech-lab/argo-evolution/internal/config"
	"github.com/rxtech-lab/argo-evolution/internal/genome"
	"github.com/rxtech-lab/argo-evolution/internal/indicator"
	"github.com/rxtech-lab/argo-evolution/internal/logger"
	"github.com/rxtech-lab/argo-evolution/internal/types"
	"github.com/rxtech-lab/argo-evolution/pkg/errors"
	"go.uber.org/zap"
)

// deadlineCheckInterval is how many bars are processed between context checks.
const deadlineCheckInterval = 256

// Evaluator scores a genome on a prepared series. Implementations must be
// deterministic and safe for concurrent use.
type Evaluator interface {
	Evaluate(ctx context.Context, g *genome.Genome, series *Series) (types.FitnessResult, error)
}

// EvaluatorV1 runs the genome bar by bar and charges drawdown, turnover and
// latency penalties against the compounded return.
type EvaluatorV1 struct {
	config   config.FitnessConfig
	registry indicator.IndicatorRegistry
	logger   *logger.Logger
}

// NewEvaluator creates an evaluator with the given costs and indicator registry.
func NewEvaluator(cfg config.FitnessConfig, registry indicator.IndicatorRegistry, log *logger.Logger) Evaluator {
	return &EvaluatorV1{
		config:   cfg,
		registry: registry,
		logger:   log.Named("fitness"),
	}
}

// RequiredLength returns the shortest series g can be evaluated on: the
// indicator warm-up, one bar for crossing look-back, then at least one
// position and the bar its return is realised on.
func RequiredLength(g *genome.Genome, registry indicator.IndicatorRegistry) (int, error) {
	lookback, err := registry.MaxLookback(g.Indicators())
	if err != nil {
		return 0, err
	}

	return lookback + 3, nil
}

// Evaluate implements Evaluator.
//
// Positions are held from bar start = lookback+1 to the second-to-last bar.
// The position at bar t earns p_t * (price[t+1]/price[t] - 1) and every
// change of position costs transaction_cost * |p_t - p_(t-1)|.
func (e *EvaluatorV1) Evaluate(ctx context.Context, g *genome.Genome, series *Series) (types.FitnessResult, error) {
	required, err := RequiredLength(g, e.registry)
	if err != nil {
		return types.FitnessResult{}, errors.Wrap(errors.ErrCodeEvaluationFailed, "failed to resolve indicators", err)
	}

	n := series.Len()
	if n < required {
		return types.FitnessResult{}, errors.NewDataInsufficientErrorf(required, n, series.Name(),
			"series %q has %d points, genome %s needs at least %d", series.Name(), n, g.String(), required)
	}

	prog, err := compile(g, series)
	if err != nil {
		return types.FitnessResult{}, errors.Wrap(errors.ErrCodeEvaluationFailed, "failed to compile genome", err)
	}

	began := time.Now()
	prices := prog.prices
	start := required - 2

	// seed the previous-bar values used by the crossing operators
	prog.step(start - 1)

	var (
		equity   = 1.0
		peak     = 1.0
		maxDD    = 0.0
		turnover = 0.0
		trades   = 0
		position = 0.0
		bars     = 0
	)

	for t := start; t <= n-2; t++ {
		if bars%deadlineCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return e.interrupted(ctx, err, began, bars)
			}
		}

		next := clampPosition(prog.step(t))

		if delta := math.Abs(next - position); delta > 0 {
			turnover += delta
			trades++
			equity *= 1 - e.config.TransactionCost*delta
		}

		position = next
		equity *= 1 + position*(prices[t+1]/prices[t]-1)

		if equity > peak {
			peak = equity
		}

		if dd := (peak - equity) / peak; dd > maxDD {
			maxDD = dd
		}

		bars++
	}

	if trades == 0 {
		result := types.ZeroFitness()
		result.Bars = bars

		return result, nil
	}

	result := types.FitnessResult{
		Return:      equity - 1,
		MaxDrawdown: maxDD,
		Turnover:    turnover,
		LatencyCost: e.config.LatencyCostPerNode * float64(g.Size()),
		Trades:      trades,
		Bars:        bars,
	}
	result.Score = result.Return -
		e.config.DrawdownWeight*result.MaxDrawdown -
		e.config.TurnoverWeight*result.Turnover/float64(bars) -
		result.LatencyCost

	return result, nil
}

func (e *EvaluatorV1) interrupted(ctx context.Context, err error, began time.Time, bars int) (types.FitnessResult, error) {
	if !errors.Is(err, context.DeadlineExceeded) {
		return types.FitnessResult{}, errors.Wrap(errors.ErrCodeEvaluationFailed, "evaluation cancelled", err)
	}

	var budget time.Duration
	if deadline, ok := ctx.Deadline(); ok {
		budget = deadline.Sub(began)
	}

	elapsed := time.Since(began)
	e.logger.Debug("Evaluation deadline exceeded",
		zap.Duration("elapsed", elapsed),
		zap.Int("bars", bars),
	)

	return types.TimedOutFitness(), errors.NewEvaluationTimeoutError(budget, elapsed, bars)
}

// clampPosition bounds a signal to [-1, 1]; NaN means flat.
func clampPosition(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}

	return math.Max(-1, math.Min(1, v))
}
