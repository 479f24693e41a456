package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rxtech-lab/argo-evolution/internal/fitness"
	"github.com/rxtech-lab/argo-evolution/internal/genome"
	"github.com/rxtech-lab/argo-evolution/internal/indicator"
	"github.com/rxtech-lab/argo-evolution/internal/store"
	"github.com/rxtech-lab/argo-evolution/internal/types"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func evaluateCommand() *cli.Command {
	flags := []cli.Flag{
		configFlag(),
		verboseFlag(),
		&cli.StringFlag{
			Name:  "candidate",
			Usage: "Candidate record file (JSON or YAML) to re-evaluate",
		},
		&cli.StringFlag{
			Name:  "genome",
			Usage: "Genome S-expression to evaluate instead of a candidate file",
		},
		&cli.IntFlag{
			Name:    "seed",
			Aliases: []string{"s"},
			Usage:   "Seed of the synthetic series",
			Value:   42,
		},
	}

	return &cli.Command{
		Name:   "evaluate",
		Usage:  "Evaluate a persisted candidate or a genome expression on a synthetic series",
		Flags:  append(flags, seriesFlags()...),
		Action: evaluateAction,
	}
}

// loadGenome returns the genome named by --candidate or --genome.
func loadGenome(cmd *cli.Command) (*genome.Genome, error) {
	candidatePath := cmd.String("candidate")
	expression := cmd.String("genome")

	switch {
	case candidatePath != "" && expression != "":
		return nil, fmt.Errorf("--candidate and --genome are mutually exclusive")
	case candidatePath != "":
		record, err := store.ReadCandidateFile(candidatePath)
		if err != nil {
			return nil, err
		}

		return genome.Parse(record.Genome)
	case expression != "":
		return genome.Parse(expression)
	default:
		return nil, fmt.Errorf("one of --candidate or --genome is required")
	}
}

func evaluateAction(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	g, err := loadGenome(cmd)
	if err != nil {
		return err
	}

	series, err := synthesize(cmd, cmd.Int("seed"))
	if err != nil {
		return err
	}

	registry := indicator.NewDefaultRegistry()
	evaluator := fitness.NewEvaluator(cfg.Fitness, registry, log)

	result, err := evaluator.Evaluate(ctx, g, fitness.NewSeries(series, registry))
	if err != nil {
		return err
	}

	log.Info("Genome evaluated",
		zap.String("genome", g.String()),
		zap.String("series", series.Name),
		zap.Float64("score", result.Score),
		zap.Float64("return", result.Return),
		zap.Float64("max_drawdown", result.MaxDrawdown),
		zap.Int("trades", result.Trades),
	)

	out, err := yaml.Marshal(types.EvaluationRecord{Series: series.Name, Points: series.Len(), Result: result})
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	_, err = os.Stdout.Write(out)

	return err
}
