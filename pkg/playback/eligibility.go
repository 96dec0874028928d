package playback

// slowConnections are effective connection types too slow for background video
var slowConnections = map[string]bool{
	"slow-2g": true,
	"2g":      true,
}

// Eligible reports whether background video should be attempted at all.
// All heuristics collapse into one answer; an ineligible caller only ever sees poster-only.
func Eligible(p Probe, forcePoster bool) bool {
	if forcePoster || p == nil {
		return false
	}
	return !p.IsHandheldDevice() &&
		!slowConnections[p.ConnectionEffectiveType()] &&
		!p.PrefersReducedMotion() &&
		p.SupportsVisibilityObservation()
}
