package playback

import (
	"sync"
	"time"
)

// MediaEvent is a notification delivered by a Media
type MediaEvent int

const (
	// EventLoadedData means the current load produced playable data
	EventLoadedData MediaEvent = iota
	// EventError means the current load failed
	EventError
	// EventCanPlay means playback can start
	EventCanPlay
)

func (e MediaEvent) String() string {
	switch e {
	case EventLoadedData:
		return "loadeddata"
	case EventError:
		return "error"
	case EventCanPlay:
		return "canplay"
	default:
		return "unknown"
	}
}

// Source is one candidate encoding of an asset, in preference order
type Source struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

// Media is a playable element. Events may be delivered from any goroutine,
// but LoadedData and Error are mutually exclusive for a single Load.
type Media interface {
	Load(sources []Source)
	Play() error
	Pause()
	Paused() bool
	Subscribe(fn func(event MediaEvent, err error)) (unsubscribe func())
}

// Probe reports the capabilities of the environment that will show the video
type Probe interface {
	IsHandheldDevice() bool
	// ConnectionEffectiveType returns "" when unknown
	ConnectionEffectiveType() string
	PrefersReducedMotion() bool
	SupportsVisibilityObservation() bool
}

// VisibilityObserver reports when the media enters or leaves the viewport
type VisibilityObserver interface {
	Observe(onChange func(visible bool)) (stop func())
}

// AlwaysVisible is an observer for environments without a viewport
type AlwaysVisible struct{}

// Observe reports visible once and never again
func (AlwaysVisible) Observe(onChange func(bool)) func() {
	onChange(true)
	return func() {}
}

// Timer is a pending scheduled wake-up
type Timer interface {
	Stop() bool
}

// Clock schedules retry wake-ups
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock schedules on the runtime timer
type RealClock struct{}

// AfterFunc calls f in its own goroutine after d
func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualClock is a Clock driven by Advance, for deterministic tests and simulations
type ManualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock   *ManualClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

// NewManualClock returns a clock at offset zero
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// AfterFunc registers f to run when the clock is advanced past d
func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Now returns the elapsed manual time
func (c *ManualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Pending returns the number of timers not yet fired or stopped
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Advance moves time forward and runs due timers in order on the calling goroutine
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *manualTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.at
		next.fired = true
		c.mu.Unlock()
		next.f()
	}
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}
