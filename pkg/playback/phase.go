// Package playback decides whether a background video plays and drives its
// load, retry and fallback lifecycle.
package playback

import "portfolio-site/pkg/models"

// Phase is the discrete state of a Controller
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseLoading       Phase = "loading"
	PhaseLoaded        Phase = "loaded"
	PhaseErrored       Phase = "errored"
	PhaseUsingFallback Phase = "usingFallback"
	PhasePosterOnly    Phase = "posterOnly"
)

// Terminal reports whether no further load activity can follow p
func (p Phase) Terminal() bool {
	return p == PhaseLoaded || p == PhasePosterOnly
}

// State is a snapshot of a Controller
type State struct {
	Phase    Phase             `json:"phase"`
	Asset    models.VideoAsset `json:"asset"`
	Attempts int               `json:"attempts"`
	Eligible bool              `json:"eligible"`
	Visible  bool              `json:"visible"`
}

// allowed lists the edges a Controller may take. Anything else is a bug.
var allowed = map[Phase][]Phase{
	PhaseIdle:          {PhaseLoading, PhasePosterOnly},
	PhaseLoading:       {PhaseLoaded, PhaseErrored, PhaseUsingFallback, PhasePosterOnly},
	PhaseErrored:       {PhaseLoading, PhasePosterOnly},
	PhaseUsingFallback: {PhaseLoading},
	PhaseLoaded:        {PhasePosterOnly},
}

func canTransition(from, to Phase) bool {
	for _, p := range allowed[from] {
		if p == to {
			return true
		}
	}
	return false
}
