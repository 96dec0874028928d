package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"portfolio-site/pkg/assets"
	"portfolio-site/pkg/environment"
	"portfolio-site/pkg/log"
	"portfolio-site/pkg/media"
	"portfolio-site/pkg/metrics"
	"portfolio-site/pkg/models"
	"portfolio-site/pkg/playback"
)

// RegistrySource supplies the current asset registry
type RegistrySource interface {
	Registry(ctx context.Context) (*assets.Registry, error)
}

// Outcome is the result of playing an asset through a controller on the server
type Outcome struct {
	RequestedID  string            `json:"requestedId"`
	Asset        models.VideoAsset `json:"asset"`
	Phase        playback.Phase    `json:"phase"`
	Attempts     int               `json:"attempts"`
	UsedFallback bool              `json:"usedFallback"`
	Error        string            `json:"error,omitempty"`
	PosterError  string            `json:"posterError,omitempty"`
	CheckedAt    time.Time         `json:"checkedAt"`
}

// Playable reports whether clients should attempt video for the asset
func (o Outcome) Playable() bool {
	return o.Phase == playback.PhaseLoaded
}

// PreflightOptions tune a PreflightService
type PreflightOptions struct {
	Client       *http.Client
	MediaTimeout time.Duration
	RetryDelay   time.Duration
	TTL          time.Duration
	Concurrency  int
}

// PreflightService runs the playback state machine against real asset URLs so the
// page can skip assets that would only fail in the browser
type PreflightService struct {
	registries RegistrySource
	posters    *PosterService
	opts       PreflightOptions
	outcomes   *cache.Cache
}

// NewPreflightService returns a service checking assets from registries
func NewPreflightService(registries RegistrySource, posters *PosterService, opts PreflightOptions) *PreflightService {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = playback.RetryDelay
	}
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &PreflightService{
		registries: registries,
		posters:    posters,
		opts:       opts,
		outcomes:   cache.New(opts.TTL, 2*opts.TTL),
	}
}

// Outcome returns the cached result for id, if any
func (s *PreflightService) Outcome(id string) (Outcome, bool) {
	if cached, found := s.outcomes.Get(id); found {
		return cached.(Outcome), true
	}
	return Outcome{}, false
}

// Outcomes returns every cached result ordered by requested id
func (s *PreflightService) Outcomes() []Outcome {
	items := s.outcomes.Items()
	out := make([]Outcome, 0, len(items))
	for _, item := range items {
		out = append(out, item.Object.(Outcome))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedID < out[j].RequestedID })
	return out
}

// Check plays id to a terminal phase and caches the outcome
func (s *PreflightService) Check(ctx context.Context, id string) (Outcome, error) {
	reg, err := s.registries.Registry(ctx)
	if err != nil {
		return Outcome{}, err
	}
	return s.check(ctx, reg, id)
}

// Warm checks every primary asset, at most Concurrency at a time
func (s *PreflightService) Warm(ctx context.Context) ([]Outcome, error) {
	reg, err := s.registries.Registry(ctx)
	if err != nil {
		return nil, err
	}
	all := reg.All()
	results := make([]Outcome, len(all))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, asset := range all {
		g.Go(func() error {
			out, err := s.check(gctx, reg, asset.ID)
			if err != nil {
				return fmt.Errorf("preflight %s: %w", asset.ID, err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *PreflightService) check(ctx context.Context, reg *assets.Registry, id string) (Outcome, error) {
	component := log.WithComponent("preflight")
	logger := component.With().Str(log.FieldAssetID, id).Logger()

	m := media.NewHTTPMedia(s.opts.Client, s.opts.MediaTimeout)
	defer m.Close()

	done := make(chan struct{})
	var once sync.Once
	loadErr := make(chan error, 1)
	opts := playback.DefaultOptions()
	opts.RetryDelay = s.opts.RetryDelay
	// the controller adds the asset id itself
	opts.Logger = &component
	opts.OnLoadError = func(err error) { loadErr <- err }
	opts.OnTransition = func(from, to playback.Phase, _ models.VideoAsset) {
		metrics.RecordTransition(string(from), string(to))
		if to.Terminal() {
			once.Do(func() { close(done) })
		}
	}

	c := playback.New(id, playback.Deps{
		Resolver: reg,
		Media:    m,
		Probe:    environment.Desktop,
		Observer: playback.AlwaysVisible{},
	}, opts)
	c.Mount()
	defer c.Unmount()

	select {
	case <-done:
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}

	st := c.State()
	out := Outcome{
		RequestedID:  id,
		Asset:        st.Asset,
		Phase:        st.Phase,
		Attempts:     st.Attempts,
		UsedFallback: st.Asset.ID != reg.Resolve(id).ID,
		CheckedAt:    time.Now().UTC(),
	}
	if out.Phase == playback.PhasePosterOnly {
		// the error callback runs right after the transition hook
		select {
		case err := <-loadErr:
			out.Error = err.Error()
		case <-ctx.Done():
			return Outcome{}, ctx.Err()
		}
	}
	if s.posters != nil {
		if err := s.posters.Validate(ctx, st.Asset); err != nil {
			if errors.Is(err, context.Canceled) {
				return Outcome{}, err
			}
			out.PosterError = err.Error()
		}
	}

	s.outcomes.SetDefault(id, out)
	metrics.RecordPreflight(string(out.Phase), out.UsedFallback)
	logger.Info().
		Str("phase", string(out.Phase)).
		Str("final_asset", out.Asset.ID).
		Int(log.FieldAttempt, out.Attempts).
		Bool("fallback", out.UsedFallback).
		Msg("preflight finished")
	return out, nil
}
