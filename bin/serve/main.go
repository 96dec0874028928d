package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"portfolio-site/cmd"
	"portfolio-site/pkg/config"
	"portfolio-site/pkg/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger := log.Base()
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	log.Configure(log.Config{Level: cfg.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start server
	if err := cmd.Serve(ctx, cfg); err != nil {
		logger := log.WithComponent("server")
		logger.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}
