package assets

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"portfolio-site/pkg/models"
)

// Manifest is the declarative form of a Registry
type Manifest struct {
	Default  string              `json:"default" yaml:"default"`
	Fallback string              `json:"fallback" yaml:"fallback"`
	Assets   []models.VideoAsset `json:"assets" yaml:"assets"`
	Backups  []models.VideoAsset `json:"backups" yaml:"backups"`
}

var (
	// ErrUnknownTheme is returned when an asset carries a theme outside the closed set
	ErrUnknownTheme = errors.New("unknown theme")
	// ErrDuplicateAsset is returned when two assets share an id
	ErrDuplicateAsset = errors.New("duplicate asset id")
	// ErrMissingAsset is returned when the default or fallback id is not registered
	ErrMissingAsset = errors.New("asset not registered")
)

const (
	// HeroAssetID is the asset the hero section asks for
	HeroAssetID = "hero_primary"
	// FallbackAssetID is the designated fallback of the built-in manifest
	FallbackAssetID = "hero_simple_abstract"
)

// DefaultManifest returns the built-in asset set of the site
func DefaultManifest() Manifest {
	return Manifest{
		Default:  HeroAssetID,
		Fallback: FallbackAssetID,
		Assets: []models.VideoAsset{
			{
				ID:         "hero_primary",
				Title:      "Abstract Financial Data Flow",
				PrimaryURL: "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4",
				PosterURL:  "https://images.unsplash.com/photo-1611974789855-9c2a0a7236a3?ixlib=rb-4.0.3&auto=format&fit=crop&w=1920&h=1080&q=80",
				Duration:   30,
				Theme:      models.ThemeFinance,
			},
			{
				ID:         "hero_corporate",
				Title:      "Modern Corporate Environment",
				PrimaryURL: "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ElephantsDream.mp4",
				PosterURL:  "https://images.unsplash.com/photo-1551434678-e076c223a692?ixlib=rb-4.0.3&auto=format&fit=crop&w=1920&h=1080&q=80",
				Duration:   25,
				Theme:      models.ThemeCorporate,
			},
			{
				ID:         "hero_abstract",
				Title:      "Abstract Data Visualization",
				PrimaryURL: "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ForBiggerBlazes.mp4",
				PosterURL:  "https://images.unsplash.com/photo-1639762681485-074b7f938ba0?ixlib=rb-4.0.3&auto=format&fit=crop&w=1920&h=1080&q=80",
				Duration:   20,
				Theme:      models.ThemeAbstract,
			},
			{
				ID:         "hero_professional",
				Title:      "Professional Consultation",
				PrimaryURL: "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/Sintel.mp4",
				PosterURL:  "https://images.unsplash.com/photo-1560472354-b33ff0c44a43?ixlib=rb-4.0.3&auto=format&fit=crop&w=1920&h=1080&q=80",
				Duration:   35,
				Theme:      models.ThemeProfessional,
			},
		},
		Backups: []models.VideoAsset{
			{
				ID:         "hero_simple_abstract",
				Title:      "Simple Abstract Background",
				PrimaryURL: "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4",
				PosterURL:  "https://images.unsplash.com/photo-1639762681485-074b7f938ba0?ixlib=rb-4.0.3&auto=format&fit=crop&w=1920&h=1080&q=80",
				Duration:   10,
				Theme:      models.ThemeAbstract,
			},
			{
				ID:         "hero_simple_professional",
				Title:      "Simple Professional Background",
				PrimaryURL: "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ElephantsDream.mp4",
				PosterURL:  "https://images.unsplash.com/photo-1551434678-e076c223a692?ixlib=rb-4.0.3&auto=format&fit=crop&w=1920&h=1080&q=80",
				Duration:   15,
				Theme:      models.ThemeProfessional,
			},
		},
	}
}

// Validate checks ids, required URLs and themes
func (m Manifest) Validate() error {
	seen := make(map[string]bool, len(m.Assets)+len(m.Backups))
	for _, list := range [][]models.VideoAsset{m.Assets, m.Backups} {
		for _, a := range list {
			if a.ID == "" {
				return errors.New("asset without id")
			}
			if seen[a.ID] {
				return fmt.Errorf("%w: %s", ErrDuplicateAsset, a.ID)
			}
			seen[a.ID] = true
			if a.PrimaryURL == "" {
				return fmt.Errorf("asset %s: missing video url", a.ID)
			}
			if a.PosterURL == "" {
				return fmt.Errorf("asset %s: missing poster url", a.ID)
			}
			if !a.Theme.Valid() {
				return fmt.Errorf("asset %s: %w %q", a.ID, ErrUnknownTheme, a.Theme)
			}
		}
	}
	if !seen[m.Default] {
		return fmt.Errorf("default %w: %q", ErrMissingAsset, m.Default)
	}
	if !seen[m.Fallback] {
		return fmt.Errorf("fallback %w: %q", ErrMissingAsset, m.Fallback)
	}
	return nil
}

// LoadFile reads a YAML manifest from disk
func LoadFile(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML manifest and validates it
func Parse(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}
