package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"portfolio-site/pkg/assets"
	"portfolio-site/pkg/config"
	"portfolio-site/pkg/log"
)

const registryKey = "registry"

// AssetService builds the asset registry from the configured manifest source
type AssetService struct {
	config        *config.Config
	registryCache *cache.Cache
	mu            sync.RWMutex

	loadBucket func(context.Context, assets.BucketSource) (assets.Manifest, error)
	loadFile   func(string) (assets.Manifest, error)
}

// NewAssetService returns a service for cfg. Bucket manifests are refreshed every
// five minutes so signed URLs never get close to expiry; other sources are read once.
func NewAssetService(cfg *config.Config) *AssetService {
	return &AssetService{
		config:        cfg,
		registryCache: cache.New(5*time.Minute, 10*time.Minute),
		loadBucket:    assets.LoadBucket,
		loadFile:      assets.LoadFile,
	}
}

// Registry returns the current registry, loading it on first use
func (s *AssetService) Registry(ctx context.Context) (*assets.Registry, error) {
	logger := log.WithComponent("assets")

	s.mu.RLock()
	if cached, found := s.registryCache.Get(registryKey); found {
		s.mu.RUnlock()
		logger.Debug().Msg("using cached asset registry")
		return cached.(*assets.Registry), nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, found := s.registryCache.Get(registryKey); found {
		return cached.(*assets.Registry), nil
	}

	manifest, expiry, err := s.loadManifest(ctx)
	if err != nil {
		return nil, err
	}
	if s.config.FallbackAsset != "" {
		manifest.Fallback = s.config.FallbackAsset
	}
	reg, err := assets.NewRegistry(manifest)
	if err != nil {
		return nil, fmt.Errorf("build registry from %s: %w", s.config.ManifestSource(), err)
	}

	s.registryCache.Set(registryKey, reg, expiry)
	logger.Info().
		Str("source", s.config.ManifestSource()).
		Int("assets", len(reg.All())).
		Int("backups", len(reg.Backups())).
		Msg("asset registry loaded")
	return reg, nil
}

// Invalidate drops the cached registry so the next call reloads it
func (s *AssetService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registryCache.Delete(registryKey)
}

func (s *AssetService) loadManifest(ctx context.Context) (assets.Manifest, time.Duration, error) {
	switch {
	case s.config.ManifestPath != "":
		m, err := s.loadFile(s.config.ManifestPath)
		return m, cache.NoExpiration, err
	case s.config.BucketName != "":
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		m, err := s.loadBucket(ctx, assets.BucketSource{
			Bucket:   s.config.BucketName,
			Prefix:   s.config.BucketPrefix,
			Fallback: s.config.FallbackAsset,
		})
		return m, cache.DefaultExpiration, err
	default:
		return assets.DefaultManifest(), cache.NoExpiration, nil
	}
}
