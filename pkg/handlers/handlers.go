package handlers

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/eknkc/pug"
	"github.com/eknkc/pug/compiler"

	"portfolio-site/pkg/assets"
	"portfolio-site/pkg/config"
	"portfolio-site/pkg/environment"
	"portfolio-site/pkg/log"
	"portfolio-site/pkg/models"
	"portfolio-site/pkg/playback"
	"portfolio-site/pkg/services"
)

// Handlers serves the landing page and the JSON API
type Handlers struct {
	config    *config.Config
	assets    services.RegistrySource
	posters   *services.PosterService
	preflight *services.PreflightService
	contacts  *services.ContactService
}

// New wires the handlers to their services. preflight may be nil.
func New(cfg *config.Config, registries services.RegistrySource, posters *services.PosterService, preflight *services.PreflightService, contacts *services.ContactService) *Handlers {
	return &Handlers{
		config:    cfg,
		assets:    registries,
		posters:   posters,
		preflight: preflight,
		contacts:  contacts,
	}
}

// IndexHandler renders the landing page
func (h *Handlers) IndexHandler(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())
	logger.Debug().Msg("generating index")

	w.Header().Set("Accept-CH", environment.AcceptCH)
	w.Header().Add("Vary", environment.AcceptCH)

	view, err := h.heroView(r.Context(), h.config.HeroAssetID, environment.FromRequest(r))
	if err != nil {
		logger.Error().Err(err).Msg("resolving hero asset failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	tmpl, err := h.compile("index.pug")
	if err != nil {
		logger.Error().Err(err).Msg("template error")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = tmpl.Execute(w, models.Index{
		SiteTitle: "Financial Advisory & Analysis",
		Hero:      h.heroModel(view),
		Services:  services.ServiceOptions(),
	})
	if err != nil {
		logger.Error().Err(err).Msg("template execution error")
	}
}

// compile loads a pug template from the configured template directory.
// The pug file system refuses paths that start with "..", so the directory is made absolute first.
func (h *Handlers) compile(name string) (*template.Template, error) {
	dir, err := filepath.Abs(h.config.TemplateDir)
	if err != nil {
		return nil, fmt.Errorf("template dir %s: %w", h.config.TemplateDir, err)
	}
	return pug.CompileFile(name, pug.Options{Dir: compiler.FsDir(dir)})
}

// heroDecision is what the server decided for one asset and one client
type heroDecision struct {
	RequestedID string             `json:"requestedId"`
	Eligible    bool               `json:"eligible"`
	Preflight   *services.Outcome  `json:"preflight,omitempty"`
	View        playback.View      `json:"view"`
	Asset       models.VideoAsset  `json:"asset"`
	Options     heroOptionsSummary `json:"options"`
}

type heroOptionsSummary struct {
	OverlayOpacity         float64 `json:"overlayOpacity"`
	PauseWhenHidden        bool    `json:"pauseWhenHidden"`
	EnableBackgroundEffect bool    `json:"enableBackgroundEffect"`
	MaxRetryAttempts       int     `json:"maxRetryAttempts"`
	RetryDelayMs           int64   `json:"retryDelayMs"`
}

func (h *Handlers) playbackOptions() playback.Options {
	opts := playback.DefaultOptions()
	opts.OverlayOpacity = h.config.OverlayOpacity
	opts.PauseWhenHidden = h.config.PauseWhenHidden
	opts.EnableBackgroundEffect = h.config.EnableBackgroundEffect
	if h.config.RetryDelay > 0 {
		opts.RetryDelay = h.config.RetryDelay
	}
	return opts
}

// heroView decides the initial render of asset id for the client described by probe.
// A cached preflight result may swap in the fallback asset or force the poster.
func (h *Handlers) heroView(ctx context.Context, id string, probe playback.Probe) (heroDecision, error) {
	reg, err := h.assets.Registry(ctx)
	if err != nil {
		return heroDecision{}, err
	}
	asset := reg.Resolve(id)
	opts := h.playbackOptions()

	d := heroDecision{RequestedID: id}
	if h.preflight != nil {
		if out, ok := h.preflight.Outcome(id); ok {
			d.Preflight = &out
			if out.Phase == playback.PhasePosterOnly {
				opts.ForcePoster = true
			} else {
				asset = out.Asset
			}
		}
	}

	d.Eligible = playback.Eligible(probe, opts.ForcePoster)
	phase := playback.PhasePosterOnly
	if d.Eligible {
		phase = playback.PhaseLoading
	}
	d.View = playback.ViewFor(playback.State{Phase: phase, Asset: asset, Eligible: d.Eligible}, opts, probe.PrefersReducedMotion())
	if h.posters != nil {
		d.View.PosterURL = h.posters.URL(asset)
	}
	d.Asset = asset
	d.Options = heroOptionsSummary{
		OverlayOpacity:         opts.OverlayOpacity,
		PauseWhenHidden:        opts.PauseWhenHidden,
		EnableBackgroundEffect: opts.EnableBackgroundEffect,
		MaxRetryAttempts:       opts.MaxRetryAttempts,
		RetryDelayMs:           opts.RetryDelay.Milliseconds(),
	}
	return d, nil
}

func (h *Handlers) heroModel(d heroDecision) models.Hero {
	v := d.View
	hero := models.Hero{
		Title:            "Strategic Financial Guidance",
		AssetID:          d.Asset.ID,
		AssetTitle:       d.Asset.Title,
		Phase:            string(v.Phase),
		PosterURL:        v.PosterURL,
		PosterOpacity:    v.PosterOpacity,
		ShowVideo:        v.ShowVideo,
		OverlayOpacity:   v.OverlayOpacity,
		PauseWhenHidden:  v.PauseWhenHidden,
		BackgroundEffect: v.BackgroundEffect,
		PosterStyle:      fmt.Sprintf("opacity: %.2f", v.PosterOpacity),
		VideoStyle:       fmt.Sprintf("opacity: %.2f", v.VideoOpacity),
		OverlayStyle:     fmt.Sprintf("opacity: %.2f", v.OverlayOpacity),
	}
	if v.ShowVideo {
		hero.PrimaryURL = d.Asset.PrimaryURL
		hero.AlternateURL = d.Asset.AlternateURL
	}
	return hero
}

// registry is a shorthand used by the API handlers
func (h *Handlers) registry(w http.ResponseWriter, r *http.Request) (*assets.Registry, bool) {
	reg, err := h.assets.Registry(r.Context())
	if err != nil {
		logger := log.FromContext(r.Context())
		logger.Error().Err(err).Msg("loading asset registry failed")
		writeProblem(w, r, http.StatusServiceUnavailable, "assets_unavailable", "asset registry could not be loaded")
		return nil, false
	}
	return reg, true
}
