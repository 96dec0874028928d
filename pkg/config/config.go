package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Port     string
	LogLevel string

	// Asset manifest source: a YAML file, a Cloud Storage bucket, or the built-in set
	ManifestPath  string
	BucketName    string
	BucketPrefix  string
	HeroAssetID   string
	FallbackAsset string

	// Hero background behaviour
	EnableBackgroundEffect bool
	OverlayOpacity         float64
	PauseWhenHidden        bool
	RetryDelay             time.Duration

	// Preflight checks of the asset URLs
	PreflightOnStart bool
	PreflightTTL     time.Duration
	MediaTimeout     time.Duration

	// Contact submissions allowed per client IP per minute
	ContactRateLimit int

	PublicDir   string
	TemplateDir string
}

// ErrInvalidPort is returned when PORT is not a number
var ErrInvalidPort = errors.New("PORT must be numeric")

// ErrInvalidOpacity is returned when the overlay opacity is outside 0..1
var ErrInvalidOpacity = errors.New("overlay opacity must be between 0 and 1")

// Defaults applied before files, environment and flags
var Defaults = map[string]any{
	"port":                     "8080",
	"log_level":                "info",
	"asset_manifest":           "",
	"bucket_name":              "",
	"bucket_prefix":            "backgrounds",
	"hero_asset":               "hero_primary",
	"fallback_asset":           "",
	"enable_background_effect": true,
	"overlay_opacity":          0.4,
	"pause_when_hidden":        true,
	"retry_delay":              "1s",
	"preflight_on_start":       true,
	"preflight_ttl":            "30m",
	"media_timeout":            "10s",
	"contact_rate_limit":       5,
	"public_dir":               "./public",
	"template_dir":             "./views",
}

// EnvKeyReplacer maps nested keys to environment variable names
var EnvKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// Setup registers defaults and environment bindings on v. Keys map to
// upper-case environment variables, e.g. bucket_name -> BUCKET_NAME.
func Setup(v *viper.Viper) {
	v.SetEnvKeyReplacer(EnvKeyReplacer)
	for key, value := range Defaults {
		v.SetDefault(key, value)
		_ = v.BindEnv(key, strings.ToUpper(key))
	}
	_ = v.BindEnv("asset_manifest", "ASSET_MANIFEST")
}

// ReadFile merges a YAML config file into v when path is set
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// FromViper builds and validates a Config from v
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:                   v.GetString("port"),
		LogLevel:               v.GetString("log_level"),
		ManifestPath:           v.GetString("asset_manifest"),
		BucketName:             v.GetString("bucket_name"),
		BucketPrefix:           v.GetString("bucket_prefix"),
		HeroAssetID:            v.GetString("hero_asset"),
		FallbackAsset:          v.GetString("fallback_asset"),
		EnableBackgroundEffect: v.GetBool("enable_background_effect"),
		OverlayOpacity:         v.GetFloat64("overlay_opacity"),
		PauseWhenHidden:        v.GetBool("pause_when_hidden"),
		RetryDelay:             v.GetDuration("retry_delay"),
		PreflightOnStart:       v.GetBool("preflight_on_start"),
		PreflightTTL:           v.GetDuration("preflight_ttl"),
		MediaTimeout:           v.GetDuration("media_timeout"),
		ContactRateLimit:       v.GetInt("contact_rate_limit"),
		PublicDir:              v.GetString("public_dir"),
		TemplateDir:            v.GetString("template_dir"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads configuration from environment variables only
func Load() (*Config, error) {
	v := viper.New()
	Setup(v)
	return FromViper(v)
}

// Validate checks value ranges
func (c *Config) Validate() error {
	for _, r := range c.Port {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: %q", ErrInvalidPort, c.Port)
		}
	}
	if c.Port == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPort)
	}
	if c.OverlayOpacity < 0 || c.OverlayOpacity > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidOpacity, c.OverlayOpacity)
	}
	if c.ContactRateLimit <= 0 {
		c.ContactRateLimit = 5
	}
	if c.PreflightTTL <= 0 {
		c.PreflightTTL = 30 * time.Minute
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
	if c.MediaTimeout <= 0 {
		c.MediaTimeout = 10 * time.Second
	}
	return nil
}

// ServerAddress returns the server address with port
func (c *Config) ServerAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// ManifestSource describes where assets come from, for startup logging
func (c *Config) ManifestSource() string {
	switch {
	case c.ManifestPath != "":
		return "file:" + c.ManifestPath
	case c.BucketName != "":
		return "gs://" + c.BucketName + "/" + strings.Trim(c.BucketPrefix, "/")
	default:
		return "builtin"
	}
}
