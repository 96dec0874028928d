package cmd

import (
	"net/http"

	"portfolio-site/pkg/config"
	"portfolio-site/pkg/handlers"
	"portfolio-site/pkg/services"
)

// app bundles the services shared by every command
type app struct {
	config    *config.Config
	assets    *services.AssetService
	posters   *services.PosterService
	preflight *services.PreflightService
	contacts  *services.ContactService
}

func newApp(cfg *config.Config) *app {
	client := &http.Client{}
	assets := services.NewAssetService(cfg)
	posters := services.NewPosterService(client, cfg.MediaTimeout, cfg.PreflightTTL)
	return &app{
		config:  cfg,
		assets:  assets,
		posters: posters,
		preflight: services.NewPreflightService(assets, posters, services.PreflightOptions{
			Client:       client,
			MediaTimeout: cfg.MediaTimeout,
			RetryDelay:   cfg.RetryDelay,
			TTL:          cfg.PreflightTTL,
		}),
		contacts: services.NewContactService(services.NewMemStore()),
	}
}

func (a *app) router() http.Handler {
	return handlers.NewRouter(handlers.New(a.config, a.assets, a.posters, a.preflight, a.contacts))
}
