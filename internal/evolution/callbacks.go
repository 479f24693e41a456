package evolution

import (
	"github.com/rxtech-lab/argo-evolution/internal/config"
	"github.com/rxtech-lab/argo-evolution/internal/population"
	"github.com/rxtech-lab/argo-evolution/internal/promotion"
	"github.com/rxtech-lab/argo-evolution/internal/types"
)

// Lifecycle callback types for the phases of a run.
// All callbacks with error return abort the run (state Failed) if they return an error.

// OnRunStartCallback is called once the pre-run checks have passed.
type OnRunStartCallback func(cfg config.EvolutionConfig, seriesLength int) error

// OnRunEndCallback is called when the run ends, whatever the outcome.
type OnRunEndCallback func(report *Report)

// OnGenerationStartCallback is called before a generation is evaluated.
type OnGenerationStartCallback func(generation int, size int) error

// OnEvaluationCallback is called after each fitness evaluation. Calls are
// serialised even though evaluations run concurrently.
type OnEvaluationCallback func(done int, total int)

// OnGenerationEndCallback receives the statistics and the ranked population,
// best first. ranked must not be modified.
type OnGenerationEndCallback func(stats types.GenerationStats, ranked []population.Individual) error

// OnPromotionCallback is called for every promotion decision.
type OnPromotionCallback func(generation int, individual population.Individual, decision promotion.Decision)

// LifecycleCallbacks holds all lifecycle callback functions for a run.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnRunStart        *OnRunStartCallback
	OnRunEnd          *OnRunEndCallback
	OnGenerationStart *OnGenerationStartCallback
	OnEvaluation      *OnEvaluationCallback
	OnGenerationEnd   *OnGenerationEndCallback
	OnPromotion       *OnPromotionCallback
}
