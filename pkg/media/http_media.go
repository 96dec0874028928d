// Package media implements playback.Media over HTTP so the server can check
// that background videos are actually reachable.
package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	"portfolio-site/pkg/log"
	"portfolio-site/pkg/playback"
)

const probeRange = "bytes=0-1023"

// HTTPMedia "loads" a video by fetching the first bytes of each source in order.
// The first source answering with video content wins.
type HTTPMedia struct {
	client  *http.Client
	timeout time.Duration

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	gen       uint64
	paused    bool
	listeners map[int]func(playback.MediaEvent, error)
	nextID    int
	wg        sync.WaitGroup
}

// NewHTTPMedia returns a media bound to client; each source gets timeout to answer
func NewHTTPMedia(client *http.Client, timeout time.Duration) *HTTPMedia {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &HTTPMedia{
		client:    client,
		timeout:   timeout,
		ctx:       ctx,
		cancel:    cancel,
		paused:    true,
		listeners: make(map[int]func(playback.MediaEvent, error)),
	}
}

// Load starts probing sources in the background. A newer Load supersedes
// an older one; results of the older load are dropped.
func (m *HTTPMedia) Load(sources []playback.Source) {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.paused = true
	ctx := m.ctx
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		err := m.fetchAny(ctx, sources)

		m.mu.Lock()
		stale := gen != m.gen || ctx.Err() != nil
		m.mu.Unlock()
		if stale {
			return
		}
		if err != nil {
			m.emit(playback.EventError, err)
			return
		}
		m.emit(playback.EventLoadedData, nil)
		m.emit(playback.EventCanPlay, nil)
	}()
}

// Play marks the media as playing
func (m *HTTPMedia) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = false
	return nil
}

// Pause marks the media as paused
func (m *HTTPMedia) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
}

// Paused reports whether the media is paused
func (m *HTTPMedia) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// Subscribe registers fn for media events
func (m *HTTPMedia) Subscribe(fn func(playback.MediaEvent, error)) func() {
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

// Close aborts in-flight requests and waits for them to return
func (m *HTTPMedia) Close() {
	m.cancel()
	m.wg.Wait()
}

func (m *HTTPMedia) emit(event playback.MediaEvent, err error) {
	m.mu.Lock()
	fns := make([]func(playback.MediaEvent, error), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(event, err)
	}
}

func (m *HTTPMedia) fetchAny(ctx context.Context, sources []playback.Source) error {
	logger := log.WithComponent("media")
	if len(sources) == 0 {
		return fmt.Errorf("no sources")
	}
	var lastErr error
	for _, src := range sources {
		if err := m.fetch(ctx, src.URL, isVideoType); err != nil {
			logger.Debug().Err(err).Str(log.FieldURL, src.URL).Msg("source not playable")
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

// fetch requests the first bytes of url and checks the status and content type
func (m *HTTPMedia) fetch(ctx context.Context, url string, accept func(string) bool) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Range", probeRange)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !accept(ct) {
		return fmt.Errorf("fetch %s: unexpected content type %q", url, ct)
	}
	return nil
}

// ValidatePoster checks that url serves an image within timeout
func ValidatePoster(ctx context.Context, client *http.Client, url string, timeout time.Duration) error {
	m := &HTTPMedia{client: client, timeout: timeout}
	if m.client == nil {
		m.client = http.DefaultClient
	}
	if m.timeout <= 0 {
		m.timeout = 5 * time.Second
	}
	return m.fetch(ctx, url, isImageType)
}

func isVideoType(contentType string) bool {
	mt := mediaType(contentType)
	return strings.HasPrefix(mt, "video/") || mt == "application/octet-stream"
}

func isImageType(contentType string) bool {
	return strings.HasPrefix(mediaType(contentType), "image/")
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}
