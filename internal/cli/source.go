package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgchart/pkg/cache"
	"github.com/matzehuels/orgchart/pkg/config"
	"github.com/matzehuels/orgchart/pkg/httputil"
	"github.com/matzehuels/orgchart/pkg/loader"
	"github.com/matzehuels/orgchart/pkg/pipeline"
)

// sourceFlags override the [source] and [cache] config sections for one
// command invocation.
type sourceFlags struct {
	file    string // single hierarchy document, bypasses the configured source
	kind    string
	url     string
	dir     string
	noCache bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "file", "", "read the hierarchy from a single JSON, YAML or TOML document")
	cmd.Flags().StringVar(&f.kind, "source", "", "hierarchy source: demo, http, file, mongo (default from config)")
	cmd.Flags().StringVar(&f.url, "url", "", "base URL of the hierarchy API (http source)")
	cmd.Flags().StringVar(&f.dir, "dir", "", "directory of hierarchy documents (file source)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// apply merges the flags into a copy of the source config.
func (f *sourceFlags) apply(cfg config.SourceConfig) config.SourceConfig {
	if f.kind != "" {
		cfg.Kind = f.kind
	}
	if f.url != "" {
		cfg.URL = f.url
	}
	if f.dir != "" {
		cfg.Dir = f.dir
	}
	return cfg
}

// newRunner wires the configured source, cache and keyer into a pipeline
// runner. The returned cleanup releases every backend connection.
func (c *CLI) newRunner(ctx context.Context, f sourceFlags) (*pipeline.Runner, func(), error) {
	cfg := c.config()
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	ch, err := newCache(ctx, cfg.Cache, f.noCache)
	if err != nil {
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}
	keyer := cache.Namespaced(cache.NewDefaultKeyer(), cfg.Cache.Prefix)

	var l loader.Loader
	if f.file != "" {
		l = loader.Document(f.file)
	} else {
		src := f.apply(cfg.Source)
		remote, closeSrc, err := c.newSource(ctx, src)
		if err != nil {
			_ = ch.Close()
			return nil, nil, err
		}
		if closeSrc != nil {
			closers = append(closers, closeSrc)
		}
		l = remote
		if src.Kind == config.SourceHTTP || src.Kind == config.SourceMongo {
			ttl := time.Duration(cfg.Cache.HierarchyTTL) * time.Minute
			if ttl <= 0 {
				ttl = cache.TTLHierarchy
			}
			l = loader.NewCached(remote, ch, keyer, ttl).WithLogger(c.Logger)
		}
	}

	runner := pipeline.NewRunner(loader.Instrument(l, c.Logger), ch, keyer, c.Logger)
	closers = append(closers, func() { _ = runner.Close() })
	return runner, cleanup, nil
}

// newSource builds the loader for one source kind.
func (c *CLI) newSource(ctx context.Context, src config.SourceConfig) (loader.Loader, func(), error) {
	timeout := time.Duration(src.TimeoutSeconds) * time.Second
	switch src.Kind {
	case config.SourceDemo, "":
		l, err := loader.Demo()
		return l, nil, err
	case config.SourceHTTP:
		opts := []loader.HTTPOption{loader.WithHTTPClient(httputil.NewClient(timeout))}
		if src.Token != "" {
			opts = append(opts, loader.WithToken(src.Token))
		}
		l, err := loader.NewHTTP(src.URL, opts...)
		return l, nil, err
	case config.SourceFile:
		if src.Dir == "" {
			return nil, nil, fmt.Errorf("file source needs a directory (--dir or source.dir)")
		}
		return loader.NewFile(src.Dir), nil, nil
	case config.SourceMongo:
		connectCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		m, err := loader.ConnectMongo(connectCtx, src.MongoURI, src.MongoDatabase, src.MongoCollection)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		closeFn := func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := m.Close(closeCtx); err != nil {
				c.Logger.Warn("closing mongo client", "error", err)
			}
		}
		return m, closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unknown source %q (must be demo, http, file or mongo)", src.Kind)
	}
}

// newCache opens the configured cache backend. A file cache that cannot be
// created degrades to no caching.
func newCache(ctx context.Context, cfg config.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.Disabled(), nil
	}
	switch cfg.Backend {
	case config.CacheNone:
		return cache.Disabled(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cfg.RedisURL)
	default:
		dir := cfg.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return cache.Disabled(), nil
			}
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return cache.Disabled(), nil
		}
		return fc, nil
	}
}
