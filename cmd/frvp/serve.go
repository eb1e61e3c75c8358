package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rxtech-lab/argo-frvp/internal/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// serveAction serves analyses until the process receives SIGINT or SIGTERM.
func serveAction(ctx context.Context, cmd *cli.Command) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	analyzer, log, err := newAnalyzer(config, false)
	if err != nil {
		return err
	}

	defer func() { _ = log.Sync() }()

	srv := server.NewServer(analyzer, config, log)
	if err := srv.Start(cmd.String("address")); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info("Shutting down", zap.String("address", srv.Address()))

	return srv.Stop()
}
