package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/buildinfo"
	"github.com/dmitrijs2005/gophstore/internal/client/cli"
	"github.com/dmitrijs2005/gophstore/internal/client/config"
	"github.com/dmitrijs2005/gophstore/internal/logging"
	"github.com/dmitrijs2005/gophstore/internal/telemetry"
)

const serviceName = "gophstore-client"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

// run owns every deferred cleanup, so a startup failure still flushes
// traces and releases the signal handler before the process exits.
func run() error {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.NewTextLogger(os.Stderr, cfg.LogLevel)

	shutdown, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		logger.Warn(ctx, "tracing disabled", "err", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Warn(sctx, "flushing traces", "err", err)
		}
	}()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "starting client", "err", err)
		return err
	}

	app.Run(ctx)
	return nil
}
