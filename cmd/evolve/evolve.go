package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-evolution/internal/config"
	"github.com/rxtech-lab/argo-evolution/internal/evolution"
	"github.com/rxtech-lab/argo-evolution/internal/fitness"
	"github.com/rxtech-lab/argo-evolution/internal/indicator"
	"github.com/rxtech-lab/argo-evolution/internal/logger"
	"github.com/rxtech-lab/argo-evolution/internal/marketdata"
	"github.com/rxtech-lab/argo-evolution/internal/metrics"
	"github.com/rxtech-lab/argo-evolution/internal/population"
	"github.com/rxtech-lab/argo-evolution/internal/promotion"
	"github.com/rxtech-lab/argo-evolution/internal/store"
	"github.com/rxtech-lab/argo-evolution/internal/types"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func evolveCommand() *cli.Command {
	flags := []cli.Flag{
		configFlag(),
		verboseFlag(),
		&cli.IntFlag{
			Name:    "generations",
			Aliases: []string{"g"},
			Usage:   "Override max_generations",
		},
		&cli.IntFlag{
			Name:    "population",
			Aliases: []string{"p"},
			Usage:   "Override population_size",
		},
		&cli.IntFlag{
			Name:    "seed",
			Aliases: []string{"s"},
			Usage:   "Override random_seed (also seeds the synthetic series)",
		},
		&cli.FloatFlag{
			Name:  "split",
			Usage: "Fraction of the series used in sample",
			Value: 0.7,
		},
		&cli.StringFlag{
			Name:  "db",
			Usage: "DuckDB file holding the candidate pool",
			Value: ":memory:",
		},
		&cli.StringFlag{
			Name:  "export",
			Usage: "Directory to export the candidate pool to (Parquet plus one YAML file per candidate)",
		},
		&cli.StringFlag{
			Name:  "summary",
			Usage: "Path of the run summary YAML file",
		},
		&cli.StringFlag{
			Name:  "metrics",
			Usage: "Path of a Prometheus textfile with the run metrics",
		},
		&cli.BoolFlag{
			Name:  "no-progress",
			Usage: "Disable the per-generation progress bar",
		},
	}

	return &cli.Command{
		Name:   "evolve",
		Usage:  "Run the evolutionary search on a synthetic series",
		Flags:  append(flags, seriesFlags()...),
		Action: evolveAction,
	}
}

// applyOverrides copies the command line overrides onto cfg.
func applyOverrides(cmd *cli.Command, cfg *config.EvolutionConfig) {
	if cmd.IsSet("generations") {
		cfg.MaxGenerations = int(cmd.Int("generations"))
	}

	if cmd.IsSet("population") {
		cfg.PopulationSize = int(cmd.Int("population"))
	}

	if cmd.IsSet("seed") {
		cfg.RandomSeed = cmd.Int("seed")
	}
}

// buildDataset splits base chronologically and derives the stress scenarios
// from the out-of-sample part.
func buildDataset(base types.PriceSeries, ratio float64, cfg config.EvolutionConfig) (evolution.Dataset, error) {
	inSample, outOfSample, err := marketdata.Split(base, ratio, cfg.MinSeriesLength())
	if err != nil {
		return evolution.Dataset{}, err
	}

	return evolution.Dataset{
		InSample:    inSample,
		OutOfSample: outOfSample,
		Stress:      marketdata.StressScenarios(outOfSample),
	}, nil
}

func progressCallbacks(log *logger.Logger, enabled bool) evolution.LifecycleCallbacks {
	var bar *progressbar.ProgressBar

	onGenerationStart := evolution.OnGenerationStartCallback(func(generation int, size int) error {
		if enabled {
			bar = progressbar.NewOptions(size,
				progressbar.OptionSetDescription(fmt.Sprintf("generation %d", generation)),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		return nil
	})

	onEvaluation := evolution.OnEvaluationCallback(func(done int, _ int) {
		if bar != nil {
			_ = bar.Set(done)
		}
	})

	onGenerationEnd := evolution.OnGenerationEndCallback(func(stats types.GenerationStats, _ []population.Individual) error {
		if bar != nil {
			_ = bar.Finish()
			bar = nil
		}

		return nil
	})

	onPromotion := evolution.OnPromotionCallback(func(generation int, ind population.Individual, decision promotion.Decision) {
		if decision.Promoted {
			return
		}

		log.Info("Candidate rejected",
			zap.Int("generation", generation),
			zap.String("individual", ind.ID),
			zap.String("gate", decision.Gate),
			zap.String("reason", decision.Reason),
		)
	})

	return evolution.LifecycleCallbacks{
		OnRunStart:        nil,
		OnRunEnd:          nil,
		OnGenerationStart: &onGenerationStart,
		OnEvaluation:      &onEvaluation,
		OnGenerationEnd:   &onGenerationEnd,
		OnPromotion:       &onPromotion,
	}
}

func evolveAction(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	applyOverrides(cmd, &cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	base, err := synthesize(cmd, cfg.RandomSeed)
	if err != nil {
		return err
	}

	data, err := buildDataset(base, cmd.Float("split"), cfg)
	if err != nil {
		return err
	}

	candidates, err := store.NewDuckDBStore(cmd.String("db"), log)
	if err != nil {
		return err
	}
	defer candidates.Close()

	runID := uuid.NewString()
	registry := indicator.NewDefaultRegistry()
	evaluator := fitness.NewEvaluator(cfg.Fitness, registry, log)
	runMetrics := metrics.NewMetricsRegistry()
	pipeline := promotion.NewPipeline(cfg.Promotion, cfg.RandomSeed, evaluator, candidates, log,
		promotion.WithRunID(runID),
		promotion.WithMetrics(runMetrics))

	controller := evolution.NewController(cfg, log,
		evolution.WithRunID(runID),
		evolution.WithRegistry(registry),
		evolution.WithEvaluator(evaluator),
		evolution.WithPromotion(pipeline),
		evolution.WithMetrics(runMetrics),
	)

	report, runErr := controller.Run(ctx, data, progressCallbacks(log, !cmd.Bool("no-progress")))

	if path := cmd.String("summary"); path != "" {
		if err := types.WriteRunSummary(path, report.ToSummary()); err != nil {
			return err
		}

		log.Info("Run summary written", zap.String("path", path))
	}

	if path := cmd.String("metrics"); path != "" {
		if err := runMetrics.WriteToTextfile(path); err != nil {
			return err
		}
	}

	if report.Best.IsSome() {
		best := report.Best.Unwrap()
		log.Info("Best of run",
			zap.String("individual", best.ID),
			zap.Int("generation", report.BestGeneration),
			zap.Float64("score", best.Score()),
			zap.String("genome", best.Genome.String()),
		)
	}

	if err := exportCandidates(ctx, candidates, cmd.String("export"), log); err != nil {
		return err
	}

	if runErr != nil {
		return fmt.Errorf("evolution %s: %w", report.State, runErr)
	}

	return nil
}

// exportCandidates writes the pool to dir. Nothing is written when dir is empty.
func exportCandidates(ctx context.Context, candidates *store.DuckDBStore, dir string, log *logger.Logger) error {
	if dir == "" {
		return nil
	}

	records, err := candidates.List(ctx)
	if err != nil {
		return err
	}

	if err := candidates.Write(dir); err != nil {
		return err
	}

	for _, record := range records {
		path := filepath.Join(dir, record.ID+".yaml")
		if err := store.WriteCandidateFile(path, record); err != nil {
			return err
		}

		log.Info("Candidate exported",
			zap.String("path", path),
			zap.Float64("in_sample", record.InSample.Result.Score),
			zap.Float64("out_of_sample", record.OutOfSample.Result.Score),
			zap.String("genome", record.Genome),
		)
	}

	return nil
}
