package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/layout"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.View.Mode != "business" {
		t.Errorf("View.Mode = %q, want business", cfg.View.Mode)
	}
	if !cfg.View.ReadOnly {
		t.Error("default view should be read-only")
	}
	if cfg.Source.Kind != SourceDemo {
		t.Errorf("Source.Kind = %q, want %q", cfg.Source.Kind, SourceDemo)
	}
	if cfg.Layout.NodeWidth != layout.DefaultNodeWidth {
		t.Errorf("Layout.NodeWidth = %v, want %v", cfg.Layout.NodeWidth, layout.DefaultNodeWidth)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v, want nil", err)
	}
}

func TestDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg")
	if got := Dir(); got != "/tmp/test-xdg/orgchart" {
		t.Errorf("Dir() = %q, want /tmp/test-xdg/orgchart", got)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, _ := os.UserHomeDir()
	if got, want := Dir(), filepath.Join(home, ".config", "orgchart"); got != want {
		t.Errorf("Dir() = %q, want %q", got, want)
	}
	if got, want := Path(), filepath.Join(home, ".config", "orgchart", "config.toml"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.View.DetailLevel != Default().View.DetailLevel {
		t.Errorf("DetailLevel = %d, want default", cfg.View.DetailLevel)
	}
}

func TestSaveAndLoad(t *testing.T) {
	for _, name := range []string{"config.toml", "config.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sub", name)

			cfg := Default()
			cfg.View.Organization = "42"
			cfg.View.Mode = "legal"
			cfg.View.DetailLevel = 3
			cfg.Source.Kind = SourceHTTP
			cfg.Source.URL = "https://org.example.com/api"
			cfg.Cache.Backend = CacheRedis
			cfg.Cache.RedisURL = "redis://localhost:6379/0"

			if err := Save(cfg, path); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if *loaded != *cfg {
				t.Errorf("Load() = %+v, want %+v", loaded, cfg)
			}
		})
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[view]\norganization = \"acme\"\ndetail_level = 4\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.View.Organization != "acme" || cfg.View.DetailLevel != 4 {
		t.Errorf("View = %+v", cfg.View)
	}
	if cfg.View.Mode != "business" {
		t.Errorf("View.Mode = %q, want default business", cfg.View.Mode)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want default :8080", cfg.Server.Addr)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"malformed", "[view\n", "parse"},
		{"bad mode", "[view]\nmode = \"matrix\"\n", "Mode"},
		{"zero detail", "[view]\ndetail_level = 0\n", "DetailLevel"},
		{"inverted zoom limits", "[viewport]\nmin_scale = 2.0\nmax_scale = 1.0\n", "MaxScale"},
		{"http without url", "[source]\nkind = \"http\"\n", "source.url"},
		{"file without dir", "[source]\nkind = \"file\"\n", "source.dir"},
		{"redis without url", "[cache]\nbackend = \"redis\"\n", "redis_url"},
		{"bad organization", "[view]\norganization = \"../x\"\n", "view.organization"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() = nil error, want INVALID_CONFIG")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("GetCode() = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidConfig)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Error() = %q, want substring %q", err.Error(), tt.want)
			}
		})
	}
}

func TestConversions(t *testing.T) {
	cfg := Default()
	cfg.Layout.NodeWidth = 200
	cfg.Viewport.MaxScale = 8

	lim := cfg.Limits()
	if lim.MaxScale != 8 || lim.MinScale != cfg.Viewport.MinScale {
		t.Errorf("Limits() = %+v", lim)
	}

	l, err := layout.Compute(nil, nil, 1, cfg.LayoutOptions()...)
	if err != nil || l.Len() != 0 {
		t.Errorf("Compute(nil) = %v, %v", l, err)
	}
}
