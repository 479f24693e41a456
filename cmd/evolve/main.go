package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rxtech-lab/argo-evolution/internal/version"
	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "argo-evolution",
		Usage:   "Evolve, evaluate and promote trading strategy genomes",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			evolveCommand(),
			evaluateCommand(),
			synthCommand(),
			candidatesCommand(),
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		stop()
		log.Fatal(err)
	}
}
