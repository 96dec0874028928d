package playback

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"portfolio-site/pkg/log"
	"portfolio-site/pkg/models"
)

const (
	// MaxRetryAttempts is the number of reloads of one asset before giving up on it
	MaxRetryAttempts = 2
	// RetryDelay is the base of the linear retry backoff
	RetryDelay = time.Second
	// DefaultOverlayOpacity matches the hero overlay of the site
	DefaultOverlayOpacity = 0.4
)

// ErrPlaybackFailed is wrapped by the error passed to OnLoadError
var ErrPlaybackFailed = errors.New("video playback failed")

// Resolver maps asset ids to assets and names the fallback asset
type Resolver interface {
	Resolve(id string) models.VideoAsset
	FallbackAsset() models.VideoAsset
}

// Options configure a Controller. Use DefaultOptions and override fields.
type Options struct {
	EnableBackgroundEffect bool
	OverlayOpacity         float64
	PauseWhenHidden        bool
	// ForcePoster skips video regardless of the environment
	ForcePoster      bool
	MaxRetryAttempts int
	RetryDelay       time.Duration

	OnLoadSuccess func()
	OnLoadError   func(err error)
	OnTransition  func(from, to Phase, asset models.VideoAsset)

	Logger *zerolog.Logger
}

// DefaultOptions returns the options used by the hero section
func DefaultOptions() Options {
	return Options{
		OverlayOpacity:   DefaultOverlayOpacity,
		PauseWhenHidden:  true,
		MaxRetryAttempts: MaxRetryAttempts,
		RetryDelay:       RetryDelay,
	}
}

// Deps are the capabilities a Controller drives
type Deps struct {
	Resolver Resolver
	Media    Media
	Probe    Probe
	Observer VisibilityObserver
	Clock    Clock
}

// Controller runs the load/retry/fallback state machine for one mounted background.
// Every instance owns its state. Media, observer and timer callbacks may arrive on any
// goroutine; user callbacks and media calls are made without holding the lock.
type Controller struct {
	deps   Deps
	opts   Options
	logger zerolog.Logger

	mu           sync.Mutex
	phase        Phase
	asset        models.VideoAsset
	attempts     int
	eligible     bool
	visible      bool
	mounted      bool
	disposed     bool
	retryPending bool
	retryGen     uint64
	retryTimer   Timer
	unsubscribe  func()
	stopObserve  func()
	errorFired   bool
	successFired bool
}

// New creates an idle controller for the asset registered under assetID
func New(assetID string, deps Deps, opts Options) *Controller {
	if deps.Clock == nil {
		deps.Clock = RealClock{}
	}
	if deps.Observer == nil {
		deps.Observer = AlwaysVisible{}
	}
	if opts.MaxRetryAttempts < 0 {
		opts.MaxRetryAttempts = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = RetryDelay
	}
	opts.OverlayOpacity = clamp01(opts.OverlayOpacity)

	logger := log.WithComponent("playback")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	asset := deps.Resolver.Resolve(assetID)
	return &Controller{
		deps:   deps,
		opts:   opts,
		logger: logger.With().Str(log.FieldAssetID, asset.ID).Logger(),
		phase:  PhaseIdle,
		asset:  asset,
	}
}

// Mount evaluates eligibility and starts loading when video is allowed.
// Ineligible environments go straight to poster-only without touching the media.
func (c *Controller) Mount() {
	c.mu.Lock()
	if c.mounted || c.disposed {
		c.mu.Unlock()
		return
	}
	c.mounted = true
	c.eligible = Eligible(c.deps.Probe, c.opts.ForcePoster)
	if !c.eligible {
		notify := c.setPhase(PhasePosterOnly)
		c.mu.Unlock()
		notify()
		c.logger.Debug().Msg("environment not eligible for video, showing poster")
		return
	}
	notify := c.setPhase(PhaseLoading)
	sources := c.sources()
	c.mu.Unlock()
	notify()

	unsubscribe := c.deps.Media.Subscribe(c.handleEvent)
	stop := c.deps.Observer.Observe(c.handleVisibility)

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		unsubscribe()
		stop()
		return
	}
	c.unsubscribe = unsubscribe
	c.stopObserve = stop
	c.mu.Unlock()

	c.deps.Media.Load(sources)
}

// Unmount cancels any pending retry and detaches from the media and observer.
// No callback fires and no state changes after Unmount returns.
func (c *Controller) Unmount() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	c.cancelRetry()
	unsubscribe, stop := c.unsubscribe, c.stopObserve
	c.unsubscribe, c.stopObserve = nil, nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if stop != nil {
		stop()
	}
}

// Reevaluate recomputes eligibility after an environment change. A controller that
// became ineligible drops to poster-only; poster-only never goes back to video.
func (c *Controller) Reevaluate() {
	c.mu.Lock()
	if c.disposed || !c.mounted {
		c.mu.Unlock()
		return
	}
	c.eligible = Eligible(c.deps.Probe, c.opts.ForcePoster)
	if c.eligible || c.phase == PhasePosterOnly {
		c.mu.Unlock()
		return
	}
	c.cancelRetry()
	notify := c.setPhase(PhasePosterOnly)
	c.mu.Unlock()
	notify()

	c.deps.Media.Pause()
	c.logger.Info().Msg("environment no longer eligible, switched to poster")
}

// State returns a snapshot of the controller
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Phase:    c.phase,
		Asset:    c.asset,
		Attempts: c.attempts,
		Eligible: c.eligible,
		Visible:  c.visible,
	}
}

// View returns what the view layer should render for the current state
func (c *Controller) View() View {
	st := c.State()
	reduced := c.deps.Probe != nil && c.deps.Probe.PrefersReducedMotion()
	return ViewFor(st, c.opts, reduced)
}

func (c *Controller) handleEvent(event MediaEvent, err error) {
	switch event {
	case EventLoadedData:
		c.onLoaded()
	case EventError:
		c.onError(err)
	case EventCanPlay:
		c.onCanPlay()
	}
}

func (c *Controller) onLoaded() {
	c.mu.Lock()
	if c.disposed || c.phase != PhaseLoading {
		c.mu.Unlock()
		return
	}
	notify := c.setPhase(PhaseLoaded)
	var cb func()
	if !c.successFired {
		c.successFired = true
		cb = c.opts.OnLoadSuccess
	}
	pause := c.opts.PauseWhenHidden && !c.visible
	c.mu.Unlock()

	notify()
	if pause {
		c.deps.Media.Pause()
	}
	if cb != nil {
		cb()
	}
}

func (c *Controller) onError(cause error) {
	c.mu.Lock()
	if c.disposed || c.phase != PhaseLoading || c.retryPending {
		c.mu.Unlock()
		return
	}
	if cause == nil {
		cause = errors.New("media error")
	}

	switch fallback := c.deps.Resolver.FallbackAsset(); {
	case c.attempts < c.opts.MaxRetryAttempts:
		delay := c.opts.RetryDelay * time.Duration(c.attempts+1)
		notify := c.setPhase(PhaseErrored)
		c.retryPending = true
		c.retryGen++
		gen := c.retryGen
		c.retryTimer = c.deps.Clock.AfterFunc(delay, func() { c.retry(gen) })
		attempt := c.attempts
		c.mu.Unlock()

		notify()
		c.logger.Debug().Err(cause).Int(log.FieldAttempt, attempt).Dur("delay", delay).Msg("media error, retry scheduled")

	case c.asset.ID != fallback.ID:
		previous := c.asset.ID
		notify := c.setPhase(PhaseUsingFallback)
		c.asset = fallback
		c.attempts = 0
		notifyLoading := c.setPhase(PhaseLoading)
		sources := c.sources()
		c.mu.Unlock()

		notify()
		notifyLoading()
		c.logger.Warn().Err(cause).Str("previous", previous).Str("fallback", fallback.ID).Msg("retries exhausted, using fallback asset")
		c.deps.Media.Load(sources)

	default:
		notify := c.setPhase(PhasePosterOnly)
		var cb func(error)
		if !c.errorFired {
			c.errorFired = true
			cb = c.opts.OnLoadError
		}
		title := c.asset.Title
		c.mu.Unlock()

		notify()
		err := fmt.Errorf("%w: %s: %v", ErrPlaybackFailed, title, cause)
		c.logger.Error().Err(err).Msg("fallback asset failed, showing poster")
		if cb != nil {
			cb(err)
		}
	}
}

func (c *Controller) retry(gen uint64) {
	c.mu.Lock()
	if c.disposed || !c.retryPending || gen != c.retryGen {
		c.mu.Unlock()
		return
	}
	c.retryPending = false
	c.retryTimer = nil
	c.attempts++
	notify := c.setPhase(PhaseLoading)
	sources := c.sources()
	c.mu.Unlock()

	notify()
	c.deps.Media.Load(sources)
}

func (c *Controller) onCanPlay() {
	c.mu.Lock()
	if c.disposed || (c.phase != PhaseLoading && c.phase != PhaseLoaded) {
		c.mu.Unlock()
		return
	}
	wantPlay := c.visible || !c.opts.PauseWhenHidden
	c.mu.Unlock()

	if !wantPlay || !c.deps.Media.Paused() {
		return
	}
	if err := c.deps.Media.Play(); err != nil {
		c.onError(err)
	}
}

func (c *Controller) handleVisibility(visible bool) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.visible = visible
	act := c.phase == PhaseLoaded && c.opts.PauseWhenHidden
	c.mu.Unlock()

	if !act {
		return
	}
	paused := c.deps.Media.Paused()
	switch {
	case visible && paused:
		if err := c.deps.Media.Play(); err != nil {
			c.logger.Warn().Err(err).Msg("resume after becoming visible failed")
		}
	case !visible && !paused:
		c.deps.Media.Pause()
	}
}

// setPhase must be called with mu held. The returned func reports the
// transition and must be called after mu is released.
func (c *Controller) setPhase(to Phase) func() {
	from := c.phase
	if !canTransition(from, to) {
		c.logger.Error().Str(log.FieldOldPhase, string(from)).Str(log.FieldNewPhase, string(to)).Msg("rejected phase transition")
		return func() {}
	}
	c.phase = to
	asset := c.asset
	hook := c.opts.OnTransition
	c.logger.Debug().Str(log.FieldOldPhase, string(from)).Str(log.FieldNewPhase, string(to)).Msg("phase changed")
	return func() {
		if hook != nil {
			hook(from, to, asset)
		}
	}
}

// cancelRetry must be called with mu held
func (c *Controller) cancelRetry() {
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	c.retryPending = false
	c.retryGen++
}

func (c *Controller) sources() []Source {
	return SourcesFor(c.asset)
}

// SourcesFor lists the encodings of an asset, alternate format first
func SourcesFor(asset models.VideoAsset) []Source {
	var out []Source
	if asset.AlternateURL != "" {
		out = append(out, Source{URL: asset.AlternateURL, Type: "video/webm"})
	}
	return append(out, Source{URL: asset.PrimaryURL, Type: "video/mp4"})
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
