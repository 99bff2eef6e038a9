// Package config reads and writes the orgchart configuration file.
//
// The file lives at $XDG_CONFIG_HOME/orgchart/config.toml by default. YAML is
// accepted when the path ends in .yaml or .yml. A missing file is not an
// error: Load returns the defaults. Command-line flags override file values.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/viewport"
)

// Source kinds.
const (
	SourceDemo  = "demo"
	SourceHTTP  = "http"
	SourceFile  = "file"
	SourceMongo = "mongo"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the whole configuration file.
type Config struct {
	View     ViewConfig     `toml:"view" yaml:"view"`
	Layout   LayoutConfig   `toml:"layout" yaml:"layout"`
	Viewport ViewportConfig `toml:"viewport" yaml:"viewport"`
	Source   SourceConfig   `toml:"source" yaml:"source"`
	Cache    CacheConfig    `toml:"cache" yaml:"cache"`
	Server   ServerConfig   `toml:"server" yaml:"server"`
}

// ViewConfig holds the initial view settings.
type ViewConfig struct {
	Organization string  `toml:"organization" yaml:"organization"`
	Mode         string  `toml:"mode" yaml:"mode" validate:"oneof=business legal territorial"`
	DetailLevel  int     `toml:"detail_level" yaml:"detail_level" validate:"min=1,max=64"`
	ZoomPercent  float64 `toml:"zoom_percent" yaml:"zoom_percent" validate:"gt=0,lte=1000"`
	ReadOnly     bool    `toml:"read_only" yaml:"read_only"`
	Theme        string  `toml:"theme" yaml:"theme" validate:"oneof=light dark"`
}

// LayoutConfig holds node geometry in world units.
type LayoutConfig struct {
	NodeWidth  float64 `toml:"node_width" yaml:"node_width" validate:"gt=0"`
	NodeHeight float64 `toml:"node_height" yaml:"node_height" validate:"gt=0"`
	HGap       float64 `toml:"hgap" yaml:"hgap" validate:"gte=0"`
	VGap       float64 `toml:"vgap" yaml:"vgap" validate:"gte=0"`
}

// ViewportConfig holds zoom limits and pointer tuning.
type ViewportConfig struct {
	MinScale      float64 `toml:"min_scale" yaml:"min_scale" validate:"gt=0"`
	MaxScale      float64 `toml:"max_scale" yaml:"max_scale" validate:"gtfield=MinScale"`
	FitPadding    float64 `toml:"fit_padding" yaml:"fit_padding" validate:"gte=0"`
	DragThreshold float64 `toml:"drag_threshold" yaml:"drag_threshold" validate:"gte=0"`
}

// SourceConfig selects where hierarchies come from.
type SourceConfig struct {
	Kind            string `toml:"kind" yaml:"kind" validate:"oneof=demo http file mongo"`
	URL             string `toml:"url,omitempty" yaml:"url,omitempty"`
	Token           string `toml:"token,omitempty" yaml:"token,omitempty"`
	Dir             string `toml:"dir,omitempty" yaml:"dir,omitempty"`
	MongoURI        string `toml:"mongo_uri,omitempty" yaml:"mongo_uri,omitempty"`
	MongoDatabase   string `toml:"mongo_database,omitempty" yaml:"mongo_database,omitempty"`
	MongoCollection string `toml:"mongo_collection,omitempty" yaml:"mongo_collection,omitempty"`
	TimeoutSeconds  int    `toml:"timeout_seconds" yaml:"timeout_seconds" validate:"min=1,max=600"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend      string `toml:"backend" yaml:"backend" validate:"oneof=file redis none"`
	Dir          string `toml:"dir,omitempty" yaml:"dir,omitempty"`
	RedisURL     string `toml:"redis_url,omitempty" yaml:"redis_url,omitempty"`
	Prefix       string `toml:"prefix,omitempty" yaml:"prefix,omitempty"`
	HierarchyTTL int    `toml:"hierarchy_ttl_minutes" yaml:"hierarchy_ttl_minutes" validate:"gte=0"`
}

// ServerConfig configures `orgchart serve`.
type ServerConfig struct {
	Addr                string `toml:"addr" yaml:"addr" validate:"required"`
	ReadTimeoutSeconds  int    `toml:"read_timeout_seconds" yaml:"read_timeout_seconds" validate:"gte=0"`
	WriteTimeoutSeconds int    `toml:"write_timeout_seconds" yaml:"write_timeout_seconds" validate:"gte=0"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		View: ViewConfig{
			Organization: "",
			Mode:         "business",
			DetailLevel:  2,
			ZoomPercent:  100,
			ReadOnly:     true,
			Theme:        "light",
		},
		Layout: LayoutConfig{
			NodeWidth:  layout.DefaultNodeWidth,
			NodeHeight: layout.DefaultNodeHeight,
			HGap:       layout.DefaultHGap,
			VGap:       layout.DefaultVGap,
		},
		Viewport: ViewportConfig{
			MinScale:      viewport.DefaultMinScale,
			MaxScale:      viewport.DefaultMaxScale,
			FitPadding:    24,
			DragThreshold: 3,
		},
		Source: SourceConfig{
			Kind:           SourceDemo,
			TimeoutSeconds: 30,
		},
		Cache: CacheConfig{
			Backend:      CacheFile,
			HierarchyTTL: 15,
		},
		Server: ServerConfig{
			Addr:                ":8080",
			ReadTimeoutSeconds:  15,
			WriteTimeoutSeconds: 60,
		},
	}
}

// Dir returns the orgchart config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "orgchart")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads the config at path, or at Path() when path is empty. Values
// missing from the file keep their defaults. A missing file yields the
// defaults; a malformed or invalid file is an INVALID_CONFIG error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, or to Path() when path is empty, creating the
// parent directory.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := cfg.Encode(isYAML(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Encode serializes cfg as TOML, or YAML when asYAML is set.
func (c *Config) Encode(asYAML bool) ([]byte, error) {
	if asYAML {
		return yaml.Marshal(c)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate checks field ranges and that the selected source and cache
// backends have what they need.
func (c *Config) Validate() error {
	if err := errors.ValidateStruct(errors.ErrCodeInvalidConfig, c); err != nil {
		return err
	}
	if org := c.View.Organization; org != "" {
		if err := errors.ValidateOrganizationID(org); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "view.organization")
		}
	}

	switch c.Source.Kind {
	case SourceHTTP:
		if err := errors.ValidateURL(c.Source.URL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "source.url")
		}
	case SourceFile:
		if c.Source.Dir == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "source.dir is required for the file source")
		}
	case SourceMongo:
		if c.Source.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "source.mongo_uri is required for the mongo source")
		}
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisURL == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis cache")
	}
	return nil
}

// LayoutOptions converts the layout section to layout options.
func (c *Config) LayoutOptions() []layout.Option {
	return []layout.Option{
		layout.WithNodeSize(c.Layout.NodeWidth, c.Layout.NodeHeight),
		layout.WithGutters(c.Layout.HGap, c.Layout.VGap),
	}
}

// Limits converts the viewport section to zoom limits.
func (c *Config) Limits() viewport.Limits {
	return viewport.Limits{MinScale: c.Viewport.MinScale, MaxScale: c.Viewport.MaxScale}
}
