package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rxtech-lab/argo-evolution/internal/store"
	"github.com/rxtech-lab/argo-evolution/internal/types"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func candidatesCommand() *cli.Command {
	return &cli.Command{
		Name:  "candidates",
		Usage: "List the candidate pool, or the promotion history of one genome",
		Flags: []cli.Flag{
			verboseFlag(),
			&cli.StringFlag{
				Name:     "db",
				Usage:    "DuckDB file holding the candidate pool",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "fingerprint",
				Usage: "Show every record of this genome instead of the pool",
			},
		},
		Action: candidatesAction,
	}
}

// candidateRow is the listing form of a record.
type candidateRow struct {
	ID          string  `yaml:"id"`
	Generation  int     `yaml:"generation"`
	InSample    float64 `yaml:"in_sample"`
	OutOfSample float64 `yaml:"out_of_sample"`
	MinStress   float64 `yaml:"min_stress"`
	Genome      string  `yaml:"genome"`
}

func toRows(records []types.CandidateRecord) []candidateRow {
	rows := make([]candidateRow, len(records))
	for i, r := range records {
		rows[i] = candidateRow{
			ID:          r.ID,
			Generation:  r.Generation,
			InSample:    r.InSample.Result.Score,
			OutOfSample: r.OutOfSample.Result.Score,
			MinStress:   r.MinStressScore(),
			Genome:      r.Genome,
		}
	}

	return rows
}

func candidatesAction(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	path := cmd.String("db")
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("candidate database %s: %w", path, err)
	}

	candidates, err := store.NewDuckDBStore(path, log)
	if err != nil {
		return err
	}
	defer candidates.Close()

	var records []types.CandidateRecord

	if fingerprint := cmd.String("fingerprint"); fingerprint != "" {
		records, err = candidates.History(ctx, fingerprint)
	} else {
		records, err = candidates.List(ctx)
	}

	if err != nil {
		return err
	}

	out, err := yaml.Marshal(toRows(records))
	if err != nil {
		return fmt.Errorf("failed to encode candidates: %w", err)
	}

	_, err = os.Stdout.Write(out)

	return err
}
