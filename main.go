package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"WooCostAdjuster/internal/config"
	"WooCostAdjuster/internal/version"
	"WooCostAdjuster/pkg/logging"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.GetLogger()
	logger.Info("Start Main")
	defer logger.Info("End Main")

	cmd := &cli.Command{
		Name:    "woo-cost-adjuster",
		Usage:   "recalculates WooCommerce product costs from the regular price",
		Version: version.GetVersion().String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to the INI configuration",
				Value: "./config/config.ini",
			},
			&cli.StringFlag{
				Name:  "env",
				Usage: "path to the dotenv file with secrets",
				Value: ".env",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			config.SetPath(cmd.String("config"), cmd.String("env"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP service",
				Action: serveAction,
			},
			{
				Name:  "bulk",
				Usage: "run the bulk cost update until it completes",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "list the catalog but do not write costs",
					},
				},
				Action: bulkAction,
			},
			{
				Name:  "cost",
				Usage: "print the cost for a regular price",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "price",
						Usage:    "regular price",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "multiplier",
						Usage: "multiplier, the configured one when empty",
					},
				},
				Action: costAction,
			},
			{
				Name:   "version",
				Usage:  "print the version",
				Action: versionAction,
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		logger.Fatal(err)
	}
}
