package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ganot/motion-collector/internal/app"
	"github.com/ganot/motion-collector/internal/cli"
	"github.com/ganot/motion-collector/internal/config"
	"github.com/ganot/motion-collector/internal/output"
)

func main() {
	if err := run(); err != nil {
		output.NewFormatter(os.Stderr).Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Keep stdout clean for JSON-RPC in stdio mode.
	logger, logFile, err := app.NewLogger(cfg.Log, cfg.Transport.Mode == "stdio")
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}
	defer application.Close()

	deps := &cli.Dependencies{App: application}
	return cli.NewRootCmd(deps).ExecuteContext(ctx)
}
