package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"portfolio-site/pkg/assets"
	"portfolio-site/pkg/models"
)

// mediaServer serves a playable video under /ok.mp4 and a poster under /poster.jpg.
// Every other path is a 404.
type mediaServer struct {
	*httptest.Server
	hits atomic.Int64
}

func newMediaServer(t *testing.T) *mediaServer {
	t.Helper()
	ms := &mediaServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.mp4", func(w http.ResponseWriter, r *http.Request) {
		ms.hits.Add(1)
		w.Header().Set("Content-Type", "video/mp4")
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write(make([]byte, 64))
	})
	mux.HandleFunc("/poster.jpg", func(w http.ResponseWriter, r *http.Request) {
		ms.hits.Add(1)
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte{0xff, 0xd8})
	})
	ms.Server = httptest.NewServer(mux)
	t.Cleanup(ms.Close)
	return ms
}

func (ms *mediaServer) asset(id, video, poster string) models.VideoAsset {
	return models.VideoAsset{
		ID:         id,
		Title:      id,
		PrimaryURL: ms.URL + video,
		PosterURL:  ms.URL + poster,
		Theme:      models.ThemeFinance,
	}
}

type staticRegistry struct {
	reg *assets.Registry
}

func (s staticRegistry) Registry(context.Context) (*assets.Registry, error) {
	return s.reg, nil
}

func mustRegistry(t *testing.T, m assets.Manifest) staticRegistry {
	t.Helper()
	reg, err := assets.NewRegistry(m)
	require.NoError(t, err)
	return staticRegistry{reg: reg}
}
