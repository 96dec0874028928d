package services

import (
	"context"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"portfolio-site/pkg/assets"
	"portfolio-site/pkg/log"
	"portfolio-site/pkg/media"
	"portfolio-site/pkg/models"
)

const (
	posterWidth   = 1920
	posterQuality = 80
)

type posterResult struct {
	err error
}

// PosterService checks that poster images are reachable and remembers the answer
type PosterService struct {
	client  *http.Client
	timeout time.Duration
	results *cache.Cache

	validate func(ctx context.Context, client *http.Client, url string, timeout time.Duration) error
}

// NewPosterService returns a service caching results for ttl
func NewPosterService(client *http.Client, timeout, ttl time.Duration) *PosterService {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &PosterService{
		client:   client,
		timeout:  timeout,
		results:  cache.New(ttl, 2*ttl),
		validate: media.ValidatePoster,
	}
}

// URL returns the poster URL the page should request for asset
func (s *PosterService) URL(asset models.VideoAsset) string {
	return assets.OptimizedPoster(asset, posterWidth, posterQuality)
}

// Validate fetches the optimized poster of asset unless a recent result is cached
func (s *PosterService) Validate(ctx context.Context, asset models.VideoAsset) error {
	url := s.URL(asset)
	if cached, found := s.results.Get(url); found {
		return cached.(posterResult).err
	}

	err := s.validate(ctx, s.client, url, s.timeout)
	if ctx.Err() != nil {
		// do not cache the outcome of a cancelled check
		return err
	}
	s.results.SetDefault(url, posterResult{err: err})
	if err != nil {
		logger := log.WithComponent("posters")
		logger.Warn().Err(err).Str(log.FieldAssetID, asset.ID).Msg("poster unavailable")
	}
	return err
}

// Forget drops every cached result
func (s *PosterService) Forget() {
	s.results.Flush()
}
