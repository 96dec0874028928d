package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"portfolio-site/pkg/config"
	"portfolio-site/pkg/log"
)

const shutdownTimeout = 10 * time.Second

// newServeCmd creates a new command for serving the web application
func newServeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  `Start the web server to serve the landing page, the asset API and the contact form endpoint.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(v)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return Serve(ctx, cfg)
		},
	}
}

// Serve runs the web server until ctx is cancelled, then shuts it down gracefully
func Serve(ctx context.Context, cfg *config.Config) error {
	logger := log.WithComponent("server")
	a := newApp(cfg)

	srv := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           a.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().
			Str("addr", srv.Addr).
			Str("assets", cfg.ManifestSource()).
			Str("hero", cfg.HeroAssetID).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info().Msg("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.PreflightOnStart {
		g.Go(func() error {
			outcomes, err := a.preflight.Warm(gctx)
			if err != nil {
				// a failed warm-up never stops the server
				if gctx.Err() == nil {
					logger.Warn().Err(err).Msg("startup preflight failed")
				}
				return nil
			}
			logger.Info().Int("assets", len(outcomes)).Msg("startup preflight finished")
			return nil
		})
	}
	return g.Wait()
}
