package playback

// View is the render tree of a video background. The poster is part of every view,
// only its opacity changes, so no frame ever lacks both video and poster.
type View struct {
	Phase            Phase    `json:"phase"`
	AssetID          string   `json:"assetId"`
	PosterURL        string   `json:"posterUrl"`
	PosterOpacity    float64  `json:"posterOpacity"`
	ShowVideo        bool     `json:"showVideo"`
	VideoOpacity     float64  `json:"videoOpacity"`
	Sources          []Source `json:"sources,omitempty"`
	OverlayOpacity   float64  `json:"overlayOpacity"`
	PauseWhenHidden  bool     `json:"pauseWhenHidden"`
	BackgroundEffect bool     `json:"backgroundEffect"`
	Loading          bool     `json:"loading"`
}

// ViewFor derives the render tree from a state snapshot
func ViewFor(st State, opts Options, reducedMotion bool) View {
	loaded := st.Phase == PhaseLoaded
	showVideo := st.Eligible && st.Phase != PhasePosterOnly

	v := View{
		Phase:           st.Phase,
		AssetID:         st.Asset.ID,
		PosterURL:       st.Asset.PosterURL,
		PosterOpacity:   1,
		ShowVideo:       showVideo,
		OverlayOpacity:  clamp01(opts.OverlayOpacity),
		PauseWhenHidden: opts.PauseWhenHidden,
		Loading:         showVideo && !loaded,
	}
	if showVideo {
		v.Sources = SourcesFor(st.Asset)
	}
	if showVideo && loaded {
		v.PosterOpacity = 0
		v.VideoOpacity = 1
	}
	v.BackgroundEffect = opts.EnableBackgroundEffect && showVideo && loaded && !reducedMotion
	return v
}
