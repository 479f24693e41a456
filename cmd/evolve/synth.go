package main

import (
	"context"
	"fmt"

	"github.com/rxtech-lab/argo-evolution/internal/marketdata"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func synthCommand() *cli.Command {
	flags := []cli.Flag{
		verboseFlag(),
		&cli.IntFlag{
			Name:    "seed",
			Aliases: []string{"s"},
			Usage:   "Seed of the synthetic series",
			Value:   42,
		},
		&cli.StringFlag{
			Name:     "out",
			Aliases:  []string{"o"},
			Usage:    "Output Parquet file",
			Required: true,
		},
	}

	return &cli.Command{
		Name:   "synth",
		Usage:  "Write a synthetic price series to a Parquet file",
		Flags:  append(flags, seriesFlags()...),
		Action: synthAction,
	}
}

func synthAction(_ context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	series, err := synthesize(cmd, cmd.Int("seed"))
	if err != nil {
		return err
	}

	path, err := marketdata.WriteSeries(marketdata.NewParquetWriter(cmd.String("out"), series.Name), series)
	if err != nil {
		return err
	}

	log.Info("Synthetic series written",
		zap.String("path", path),
		zap.String("series", series.Name),
		zap.Int("rows", series.Len()),
	)

	return nil
}
