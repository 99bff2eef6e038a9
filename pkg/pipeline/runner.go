package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgchart/pkg/cache"
	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/hierarchy"
	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/loader"
	"github.com/matzehuels/orgchart/pkg/observability"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its collaborators: it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Loader loader.Loader
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// A nil cache disables caching.
func NewRunner(l loader.Loader, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.Disabled()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Loader: l,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
//
// An organization without data is not an error: the result is marked Empty
// and the artifacts hold the "no data" placeholder. Fetch and structural
// failures are returned as errors.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts:   make(map[string][]byte),
		Unavailable: make(map[string]error),
	}

	// Stage 1: Load
	loadStart := time.Now()
	root, err := r.Load(ctx, opts)
	var emptyMsg string
	switch {
	case errors.Is(err, errors.ErrCodeEmptyData):
		result.Empty = true
		emptyMsg = errors.UserMessage(err)
	case err != nil:
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Root = root
	result.HierarchyHash = hierarchy.Hash(root)
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = hierarchy.Count(root)

	r.Logger.Info("loaded hierarchy",
		"org", opts.OrganizationID,
		"mode", opts.ViewMode,
		"nodes", result.Stats.NodeCount,
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.GenerateLayoutWithCacheInfo(ctx, root, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.VisibleCount = l.Len()
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"visible", l.Len(),
		"levels", l.Levels(),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, root, l, opts, emptyMsg)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	for format, a := range artifacts {
		result.Artifacts[format] = a.Data
		if a.Unavailable != nil {
			result.Unavailable[format] = a.Unavailable
		}
	}
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load fetches the hierarchy. With opts.Refresh, a caching loader is
// invalidated first.
func (r *Runner) Load(ctx context.Context, opts Options) (*hierarchy.OrgNode, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	if r.Loader == nil {
		return nil, errors.New(errors.ErrCodeInternal, "no hierarchy source configured")
	}
	mode := hierarchy.ViewMode(opts.ViewMode)
	if opts.Refresh {
		if inv, ok := r.Loader.(loader.Invalidator); ok {
			if err := inv.Invalidate(ctx, opts.OrganizationID, mode); err != nil {
				r.Logger.Warn("cache invalidation failed", "org", opts.OrganizationID, "error", err)
			}
		}
	}
	return r.Loader.Load(ctx, opts.OrganizationID, mode)
}

// GenerateLayoutWithCacheInfo computes a layout with caching and returns
// cache hit info.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, root *hierarchy.OrgNode, opts Options) (*layout.Layout, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}
	hooks := observability.Pipeline()
	cacheHooks := observability.Cache()

	cacheKey := r.Keyer.LayoutKey(hierarchy.Hash(root), opts.LayoutKeyOpts(opts.detailFor(root)))
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		if cached, err := layout.Unmarshal(data); err == nil {
			cacheHooks.OnCacheHit(ctx, keyTypeLayout)
			return cached, true, nil
		}
	}
	cacheHooks.OnCacheMiss(ctx, keyTypeLayout)

	hooks.OnLayoutStart(ctx, hierarchy.Count(root))
	start := time.Now()
	l, err := GenerateLayout(root, opts)
	if err != nil {
		hooks.OnLayoutComplete(ctx, 0, time.Since(start), err)
		return nil, false, err
	}
	hooks.OnLayoutComplete(ctx, l.Len(), time.Since(start), nil)

	if data, err := layout.Marshal(l); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err == nil {
			cacheHooks.OnCacheSet(ctx, keyTypeLayout, len(data))
		}
	}
	return l, false, nil
}

// GenerateLayout is GenerateLayoutWithCacheInfo without the cache hit info.
func (r *Runner) GenerateLayout(ctx context.Context, root *hierarchy.OrgNode, opts Options) (*layout.Layout, error) {
	l, _, err := r.GenerateLayoutWithCacheInfo(ctx, root, opts)
	return l, err
}

// RenderWithCacheInfo renders every requested format with caching and
// reports whether all of them came from the cache. Placeholder artifacts for
// unavailable backends are never cached.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, root *hierarchy.OrgNode, l *layout.Layout, opts Options, emptyMsg string) (map[string]Artifact, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	hooks := observability.Pipeline()
	cacheHooks := observability.Cache()

	layoutData, err := layout.Marshal(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	// The text outline depends on the tree, not only on its layout.
	layoutHash := cache.Digest(layoutData, []byte(hierarchy.Hash(root)))

	scene, err := Scene(root, l, opts, emptyMsg)
	if err != nil {
		return nil, false, err
	}

	artifacts := make(map[string]Artifact, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			cacheHooks.OnCacheHit(ctx, keyTypeArtifact)
			artifacts[format] = Artifact{Data: data}
			continue
		}
		cacheHooks.OnCacheMiss(ctx, keyTypeArtifact)
		allCached = false

		hooks.OnRenderStart(ctx, format)
		start := time.Now()
		a, err := RenderFormat(ctx, format, scene, root, opts)
		hooks.OnRenderComplete(ctx, format, len(a.Data), time.Since(start), err)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = a

		if a.Unavailable != nil {
			r.Logger.Warn("backend unavailable, wrote placeholder", "format", format, "reason", errors.UserMessage(a.Unavailable))
			continue
		}
		if err := r.Cache.Set(ctx, cacheKey, a.Data, cache.TTLArtifact); err == nil {
			cacheHooks.OnCacheSet(ctx, keyTypeArtifact, len(a.Data))
		}
	}
	return artifacts, allCached, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
