package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"WooCostAdjuster/internal/bulk"
	"WooCostAdjuster/internal/config"
	"WooCostAdjuster/internal/cost"
	"WooCostAdjuster/internal/telegram"
	"WooCostAdjuster/internal/version"
	"WooCostAdjuster/pkg/logging"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

func serveAction(ctx context.Context, cmd *cli.Command) error {
	logger := logging.GetLogger()
	logger.Info("Start serve")
	defer logger.Info("End serve")

	cfg := config.GetConfig()
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	go telegram.BotStart()
	go a.cleanup.RunWithRecovered(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.SERVICE.PORT),
		Handler:           a.handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "failed ListenAndServe")
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func bulkAction(ctx context.Context, cmd *cli.Command) error {
	logger := logging.GetLogger()
	logger.Info("Start bulk")
	defer logger.Info("End bulk")

	cfg := config.GetConfig()
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if cmd.Bool("dry-run") {
		ids, err := a.store.ListActiveIDs(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%d published products, multiplier %.2f\n", len(ids), a.settings.Multiplier())
		return nil
	}

	summary, err := a.job.Start(ctx)
	if err != nil {
		if errors.Is(err, bulk.ErrNoItemsFound) {
			fmt.Println(err.Error())
			return nil
		}
		return err
	}
	fmt.Println(summary.Message)
	printProgress(&summary.Progress)

	complete := summary.Complete
	for !complete {
		p, err := a.job.Step(ctx)
		if err != nil {
			return err
		}
		printProgress(p)
		complete = p.Complete
	}
	return nil
}

func printProgress(p *bulk.Progress) {
	fmt.Printf("%d/%d processed, %d success, %d failed\n", p.Processed, p.Total, p.Success, p.Failed)
}

func costAction(ctx context.Context, cmd *cli.Command) error {
	m := config.DefaultMultiplier
	if raw := cmd.String("multiplier"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return errors.Wrapf(cost.ErrInvalidMultiplier, "multiplier %q", raw)
		}
		m = v
	} else if cfg, err := config.ReadConfig(cmd.String("config"), cmd.String("env")); err == nil {
		m = cfg.Multiplier()
	}

	r := cost.Calculate(cmd.String("price"), m)
	if !r.Valid() {
		return r.Err
	}
	fmt.Println(cost.Format(r.Cost))
	return nil
}

func versionAction(ctx context.Context, cmd *cli.Command) error {
	fmt.Printf("Version %s\n", version.GetVersion().String())
	return nil
}
