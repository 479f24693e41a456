package main

import (
	"fmt"

	"github.com/rxtech-lab/argo-evolution/internal/config"
	"github.com/rxtech-lab/argo-evolution/internal/logger"
	"github.com/rxtech-lab/argo-evolution/internal/marketdata"
	"github.com/rxtech-lab/argo-evolution/internal/types"
	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to an evolution config YAML file (defaults are used when omitted)",
	}
}

func verboseFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Human readable debug logging on stderr",
	}
}

func seriesFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "rows",
			Usage: "Number of synthetic price points",
			Value: 1000,
		},
		&cli.StringFlag{
			Name:  "model",
			Usage: fmt.Sprintf("Synthetic price process (%s or %s)", marketdata.ModelRandomWalk, marketdata.ModelGBM),
			Value: string(marketdata.ModelRandomWalk),
		},
	}
}

func newLogger(cmd *cli.Command) (*logger.Logger, error) {
	if cmd.Bool("verbose") {
		return logger.NewDevelopmentLogger()
	}

	return logger.NewLogger()
}

// loadConfig reads --config, or returns the defaults.
func loadConfig(cmd *cli.Command) (config.EvolutionConfig, error) {
	path := cmd.String("config")
	if path == "" {
		return config.DefaultConfig(), nil
	}

	return config.Load(path)
}

// synthesize generates the series selected by --rows and --model.
func synthesize(cmd *cli.Command, seed int64) (types.PriceSeries, error) {
	var cfg marketdata.GeneratorConfig

	switch marketdata.Model(cmd.String("model")) {
	case marketdata.ModelRandomWalk:
		cfg = marketdata.DefaultConfig()
	case marketdata.ModelGBM:
		cfg = marketdata.GBMConfig()
	default:
		return types.PriceSeries{}, fmt.Errorf("unknown model %q", cmd.String("model"))
	}

	rows := cmd.Int("rows")
	if rows < 1 {
		return types.PriceSeries{}, fmt.Errorf("rows must be positive, got %d", rows)
	}

	cfg.Count = int(rows)

	return marketdata.NewGenerator(seed).Generate(cfg), nil
}
