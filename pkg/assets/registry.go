// Package assets holds the read-only registry of background video assets.
package assets

import (
	"fmt"
	"strings"

	"portfolio-site/pkg/models"
)

// Registry maps logical asset ids to assets. It is built once and only read afterwards,
// so it can be shared between goroutines without locking.
type Registry struct {
	primary  []models.VideoAsset
	backups  []models.VideoAsset
	byID     map[string]models.VideoAsset
	def      models.VideoAsset
	fallback models.VideoAsset
}

// NewRegistry builds a Registry from a validated manifest
func NewRegistry(m Manifest) (*Registry, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	r := &Registry{
		primary: append([]models.VideoAsset(nil), m.Assets...),
		backups: append([]models.VideoAsset(nil), m.Backups...),
		byID:    make(map[string]models.VideoAsset, len(m.Assets)+len(m.Backups)),
	}
	for _, a := range r.primary {
		r.byID[a.ID] = a
	}
	for _, a := range r.backups {
		r.byID[a.ID] = a
	}
	r.def = r.byID[m.Default]
	r.fallback = r.byID[m.Fallback]
	return r, nil
}

// MustDefault returns the registry of the built-in manifest
func MustDefault() *Registry {
	r, err := NewRegistry(DefaultManifest())
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve returns the asset registered under id, or the default asset when id is unknown.
func (r *Registry) Resolve(id string) models.VideoAsset {
	if a, ok := r.byID[id]; ok {
		return a
	}
	return r.def
}

// Lookup reports whether id is registered in either registry
func (r *Registry) Lookup(id string) (models.VideoAsset, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// Default returns the asset used for unknown ids
func (r *Registry) Default() models.VideoAsset {
	return r.def
}

// FallbackAsset returns the designated fallback asset
func (r *Registry) FallbackAsset() models.VideoAsset {
	return r.fallback
}

// AssetsByTheme returns primary assets with the given theme in registration order
func (r *Registry) AssetsByTheme(theme models.Theme) []models.VideoAsset {
	var out []models.VideoAsset
	for _, a := range r.primary {
		if a.Theme == theme {
			out = append(out, a)
		}
	}
	return out
}

// All returns the primary assets in registration order
func (r *Registry) All() []models.VideoAsset {
	return append([]models.VideoAsset(nil), r.primary...)
}

// Backups returns the backup assets in registration order
func (r *Registry) Backups() []models.VideoAsset {
	return append([]models.VideoAsset(nil), r.backups...)
}

// Groups returns primary assets grouped by theme, skipping empty themes
func (r *Registry) Groups() []models.ThemeGroup {
	var groups []models.ThemeGroup
	for _, theme := range models.Themes {
		if list := r.AssetsByTheme(theme); len(list) > 0 {
			groups = append(groups, models.ThemeGroup{Theme: theme, Assets: list})
		}
	}
	return groups
}

// Manifest returns the declarative form of the registry
func (r *Registry) Manifest() Manifest {
	return Manifest{
		Default:  r.def.ID,
		Fallback: r.fallback.ID,
		Assets:   r.All(),
		Backups:  r.Backups(),
	}
}

// OptimizedPoster returns a poster URL sized for the given width and quality.
// Only unsplash URLs understand the sizing parameters; others are returned unchanged.
func OptimizedPoster(asset models.VideoAsset, width, quality int) string {
	if width <= 0 {
		width = 1920
	}
	if quality <= 0 {
		quality = 80
	}
	if strings.Contains(asset.PosterURL, "unsplash.com") {
		return fmt.Sprintf("%s&w=%d&q=%d&fm=webp", asset.PosterURL, width, quality)
	}
	return asset.PosterURL
}
