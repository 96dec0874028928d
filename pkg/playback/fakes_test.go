package playback

import (
	"sync"

	"portfolio-site/pkg/models"
)

type fakeMedia struct {
	mu        sync.Mutex
	loads     [][]Source
	paused    bool
	plays     int
	pauses    int
	playErr   error
	listeners map[int]func(MediaEvent, error)
	nextID    int
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{paused: true, listeners: make(map[int]func(MediaEvent, error))}
}

func (m *fakeMedia) Load(sources []Source) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads = append(m.loads, sources)
	m.paused = true
}

func (m *fakeMedia) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plays++
	if m.playErr != nil {
		return m.playErr
	}
	m.paused = false
	return nil
}

func (m *fakeMedia) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauses++
	m.paused = true
}

func (m *fakeMedia) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *fakeMedia) Subscribe(fn func(MediaEvent, error)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *fakeMedia) emit(event MediaEvent, err error) {
	m.mu.Lock()
	fns := make([]func(MediaEvent, error), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(event, err)
	}
}

func (m *fakeMedia) loadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.loads)
}

func (m *fakeMedia) lastLoad() []Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.loads) == 0 {
		return nil
	}
	return m.loads[len(m.loads)-1]
}

func (m *fakeMedia) listenerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}

type fakeProbe struct {
	mu        sync.Mutex
	handheld  bool
	ect       string
	reduced   bool
	noObserve bool
}

func (p *fakeProbe) IsHandheldDevice() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handheld
}

func (p *fakeProbe) ConnectionEffectiveType() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ect
}

func (p *fakeProbe) PrefersReducedMotion() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reduced
}

func (p *fakeProbe) SupportsVisibilityObservation() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.noObserve
}

func (p *fakeProbe) setHandheld(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handheld = v
}

type fakeObserver struct {
	mu       sync.Mutex
	onChange func(bool)
	stopped  bool
}

func (o *fakeObserver) Observe(fn func(bool)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onChange = fn
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		o.stopped = true
	}
}

func (o *fakeObserver) set(visible bool) {
	o.mu.Lock()
	fn := o.onChange
	o.mu.Unlock()
	if fn != nil {
		fn(visible)
	}
}

func (o *fakeObserver) isStopped() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stopped
}

type fakeResolver struct {
	assets   map[string]models.VideoAsset
	def      models.VideoAsset
	fallback models.VideoAsset
}

func newFakeResolver() *fakeResolver {
	primary := models.VideoAsset{
		ID: "hero_primary", Title: "Abstract Financial Data Flow",
		PrimaryURL: "https://cdn.example.com/primary.mp4", AlternateURL: "https://cdn.example.com/primary.webm",
		PosterURL: "https://cdn.example.com/primary.jpg", Theme: models.ThemeFinance,
	}
	fallback := models.VideoAsset{
		ID: "hero_simple_abstract", Title: "Simple Abstract Background",
		PrimaryURL: "https://cdn.example.com/simple.mp4", PosterURL: "https://cdn.example.com/simple.jpg",
		Theme: models.ThemeAbstract,
	}
	return &fakeResolver{
		assets:   map[string]models.VideoAsset{primary.ID: primary, fallback.ID: fallback},
		def:      primary,
		fallback: fallback,
	}
}

func (r *fakeResolver) Resolve(id string) models.VideoAsset {
	if a, ok := r.assets[id]; ok {
		return a
	}
	return r.def
}

func (r *fakeResolver) FallbackAsset() models.VideoAsset { return r.fallback }

type step struct {
	from, to Phase
	asset    string
}

type transitionLog struct {
	mu    sync.Mutex
	steps []step
}

func (l *transitionLog) record(from, to Phase, asset models.VideoAsset) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, step{from: from, to: to, asset: asset.ID})
}

func (l *transitionLog) count(to Phase) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, s := range l.steps {
		if s.to == to {
			n++
		}
	}
	return n
}
