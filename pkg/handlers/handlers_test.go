package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-site/pkg/assets"
	"portfolio-site/pkg/config"
	"portfolio-site/pkg/models"
	"portfolio-site/pkg/playback"
	"portfolio-site/pkg/services"
)

const desktopUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15"

type staticRegistry struct {
	reg *assets.Registry
	err error
}

func (s staticRegistry) Registry(context.Context) (*assets.Registry, error) {
	return s.reg, s.err
}

func testConfig() *config.Config {
	return &config.Config{
		Port:             "8080",
		HeroAssetID:      assets.HeroAssetID,
		OverlayOpacity:   0.4,
		PauseWhenHidden:  true,
		ContactRateLimit: 3,
		PublicDir:        "../../public",
		TemplateDir:      "../../views",
	}
}

type testServer struct {
	handler  http.Handler
	contacts *services.ContactService
}

func newTestServer(t *testing.T, src services.RegistrySource, preflight *services.PreflightService) *testServer {
	t.Helper()
	cfg := testConfig()
	cfg.EnableBackgroundEffect = true
	return newTestServerWith(t, cfg, src, preflight)
}

func newTestServerWith(t *testing.T, cfg *config.Config, src services.RegistrySource, preflight *services.PreflightService) *testServer {
	t.Helper()
	contacts := services.NewContactService(services.NewMemStore())
	posters := services.NewPosterService(nil, time.Second, time.Minute)
	h := New(cfg, src, posters, preflight, contacts)
	return &testServer{handler: NewRouter(h), contacts: contacts}
}

func defaultServer(t *testing.T) *testServer {
	return newTestServer(t, staticRegistry{reg: assets.MustDefault()}, nil)
}

func (s *testServer) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("User-Agent", desktopUA)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestIndexHandler(t *testing.T) {
	s := defaultServer(t)

	rec := s.do(t, "GET", "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Accept-CH"), "ECT")
	body := rec.Body.String()
	assert.Contains(t, body, "hero-poster")
	assert.Contains(t, body, "<video")
	assert.Contains(t, body, "Financial Analysis &amp; Reporting")

	rec = s.do(t, "GET", "/", "", map[string]string{"Sec-CH-Prefers-Reduced-Motion": "reduce"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hero-poster")
	assert.NotContains(t, rec.Body.String(), "<video")
}

func TestIndexHandler_AbsoluteTemplateDir(t *testing.T) {
	views, err := filepath.Abs("../../views")
	require.NoError(t, err)
	cfg := testConfig()
	cfg.TemplateDir = views
	s := newTestServerWith(t, cfg, staticRegistry{reg: assets.MustDefault()}, nil)

	t.Chdir(t.TempDir())
	rec := s.do(t, "GET", "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "hero-poster")

	cfg.TemplateDir = filepath.Join(views, "missing")
	rec = s.do(t, "GET", "/", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestIndexHandler_RegistryFailure(t *testing.T) {
	s := newTestServer(t, staticRegistry{err: errors.New("bucket down")}, nil)
	rec := s.do(t, "GET", "/", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAssetsHandler(t *testing.T) {
	s := defaultServer(t)

	rec := s.do(t, "GET", "/api/assets", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[struct {
		Default  string              `json:"default"`
		Fallback string              `json:"fallback"`
		Groups   []models.ThemeGroup `json:"groups"`
		Backups  []models.VideoAsset `json:"backups"`
	}](t, rec)
	assert.Equal(t, assets.HeroAssetID, all.Default)
	assert.Equal(t, assets.FallbackAssetID, all.Fallback)
	assert.Len(t, all.Groups, 4)
	assert.Len(t, all.Backups, 2)

	rec = s.do(t, "GET", "/api/assets?theme=corporate", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	group := decode[models.ThemeGroup](t, rec)
	require.Len(t, group.Assets, 1)
	assert.Equal(t, "hero_corporate", group.Assets[0].ID)

	rec = s.do(t, "GET", "/api/assets?theme=space", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	problem := decode[map[string]any](t, rec)
	assert.Equal(t, "unknown_theme", problem["code"])
	assert.NotEmpty(t, problem["request_id"])
}

func TestAssetHandler_NeverNotFound(t *testing.T) {
	s := defaultServer(t)

	for _, tc := range []struct {
		id         string
		want       string
		registered bool
	}{
		{"hero_abstract", "hero_abstract", true},
		{"hero_simple_professional", "hero_simple_professional", true},
		{"does_not_exist", assets.HeroAssetID, false},
	} {
		rec := s.do(t, "GET", "/api/assets/"+tc.id, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decode[struct {
			Registered bool              `json:"registered"`
			Asset      models.VideoAsset `json:"asset"`
		}](t, rec)
		assert.Equal(t, tc.want, got.Asset.ID, tc.id)
		assert.Equal(t, tc.registered, got.Registered, tc.id)
	}

	rec := s.do(t, "GET", "/api/assets/fallback", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, assets.FallbackAssetID, decode[models.VideoAsset](t, rec).ID)
}

func TestPlaybackHandler(t *testing.T) {
	s := defaultServer(t)

	tests := []struct {
		name     string
		headers  map[string]string
		eligible bool
	}{
		{"desktop", nil, true},
		{"phone", map[string]string{"User-Agent": "Mozilla/5.0 (Linux; Android 14; Pixel 8) Mobile"}, false},
		{"slow network", map[string]string{"ECT": "2g"}, false},
		{"reduced motion", map[string]string{"Sec-CH-Prefers-Reduced-Motion": "reduce"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, "GET", "/api/playback/hero_primary", "", tt.headers)
			require.Equal(t, http.StatusOK, rec.Code)
			d := decode[heroDecision](t, rec)
			assert.Equal(t, tt.eligible, d.Eligible)
			assert.Equal(t, tt.eligible, d.View.ShowVideo)
			assert.NotEmpty(t, d.View.PosterURL, "poster is always rendered")
			assert.Equal(t, 1.0, d.View.PosterOpacity)
			assert.Equal(t, 0.4, d.View.OverlayOpacity)
			if tt.eligible {
				assert.Equal(t, playback.PhaseLoading, d.View.Phase)
				assert.NotEmpty(t, d.View.Sources)
			} else {
				assert.Equal(t, playback.PhasePosterOnly, d.View.Phase)
				assert.Empty(t, d.View.Sources)
			}
		})
	}
}

func TestPlaybackHandler_UsesPreflightOutcome(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.mp4", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		w.WriteHeader(http.StatusPartialContent)
	})
	media := httptest.NewServer(mux)
	defer media.Close()

	asset := func(id, video string) models.VideoAsset {
		return models.VideoAsset{ID: id, Title: id, PrimaryURL: media.URL + video, PosterURL: media.URL + "/" + id + ".jpg", Theme: models.ThemeFinance}
	}
	reg, err := assets.NewRegistry(assets.Manifest{
		Default:  "broken",
		Fallback: "calm",
		Assets:   []models.VideoAsset{asset("broken", "/gone.mp4"), asset("dead", "/gone.mp4")},
		Backups:  []models.VideoAsset{asset("calm", "/ok.mp4")},
	})
	require.NoError(t, err)
	src := staticRegistry{reg: reg}
	preflight := services.NewPreflightService(src, nil, services.PreflightOptions{
		Client:     media.Client(),
		RetryDelay: time.Millisecond,
	})
	s := newTestServer(t, src, preflight)

	rec := s.do(t, "POST", "/api/preflight/broken", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[services.Outcome](t, rec)
	assert.True(t, out.UsedFallback)

	rec = s.do(t, "GET", "/api/playback/broken", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	d := decode[heroDecision](t, rec)
	require.NotNil(t, d.Preflight)
	assert.Equal(t, "calm", d.View.AssetID, "preflight swaps in the fallback")
	assert.True(t, d.View.ShowVideo)

	rec = s.do(t, "GET", "/api/preflight", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]services.Outcome](t, rec), 1)
}

func TestPreflightRoutes_Disabled(t *testing.T) {
	s := defaultServer(t)
	rec := s.do(t, "POST", "/api/preflight", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := defaultServer(t)

	rec := s.do(t, "GET", "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", health["status"])
	assert.EqualValues(t, 4, health["assets"])

	rec = s.do(t, "GET", "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "portfolio_http_request_duration_seconds")

	bad := newTestServer(t, staticRegistry{err: errors.New("bucket down")}, nil)
	rec = bad.do(t, "GET", "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStaticFiles(t *testing.T) {
	s := defaultServer(t)
	rec := s.do(t, "GET", "/public/js/hero.js", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "loadeddata")
}
