// Package environment answers the playback probe questions for a visiting client.
package environment

import (
	"net/http"
	"regexp"
	"strings"
)

var (
	handheldAgents    = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)
	nonInteractiveUAs = regexp.MustCompile(`(?i)bot|crawler|spider|slurp|curl|wget|python-requests|go-http-client|lynx|links|w3m|headless`)
)

// AcceptCH lists the client hints the probe reads. Send it on page responses so
// browsers include them on subsequent requests.
const AcceptCH = "Sec-CH-UA-Mobile, ECT, Sec-CH-Prefers-Reduced-Motion"

// RequestProbe derives client capabilities from request headers
type RequestProbe struct {
	userAgent     string
	mobileHint    string
	ect           string
	reducedMotion string
}

// FromRequest captures the headers of r relevant to playback eligibility
func FromRequest(r *http.Request) RequestProbe {
	return RequestProbe{
		userAgent:     r.UserAgent(),
		mobileHint:    r.Header.Get("Sec-CH-UA-Mobile"),
		ect:           r.Header.Get("ECT"),
		reducedMotion: r.Header.Get("Sec-CH-Prefers-Reduced-Motion"),
	}
}

// IsHandheldDevice matches mobile user agents or the ?1 mobile client hint
func (p RequestProbe) IsHandheldDevice() bool {
	return strings.TrimSpace(p.mobileHint) == "?1" || handheldAgents.MatchString(p.userAgent)
}

// ConnectionEffectiveType returns the ECT client hint, "" when absent
func (p RequestProbe) ConnectionEffectiveType() string {
	return strings.ToLower(strings.TrimSpace(p.ect))
}

// PrefersReducedMotion reads the reduced-motion media feature client hint
func (p RequestProbe) PrefersReducedMotion() bool {
	return strings.EqualFold(strings.Trim(strings.TrimSpace(p.reducedMotion), `"`), "reduce")
}

// SupportsVisibilityObservation is false for clients that never run page scripts
func (p RequestProbe) SupportsVisibilityObservation() bool {
	if strings.TrimSpace(p.userAgent) == "" {
		return false
	}
	return !nonInteractiveUAs.MatchString(p.userAgent)
}

// StaticProbe is a fixed answer set, used by the CLI and in tests
type StaticProbe struct {
	Handheld      bool   `json:"handheld"`
	EffectiveType string `json:"effectiveType,omitempty"`
	ReducedMotion bool   `json:"reducedMotion"`
	NoVisibility  bool   `json:"noVisibility"`
}

// Desktop is a fast desktop browser with no motion preference
var Desktop = StaticProbe{EffectiveType: "4g"}

func (p StaticProbe) IsHandheldDevice() bool              { return p.Handheld }
func (p StaticProbe) ConnectionEffectiveType() string     { return p.EffectiveType }
func (p StaticProbe) PrefersReducedMotion() bool          { return p.ReducedMotion }
func (p StaticProbe) SupportsVisibilityObservation() bool { return !p.NoVisibility }
