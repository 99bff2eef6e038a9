package loader

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgchart/pkg/cache"
	"github.com/matzehuels/orgchart/pkg/hierarchy"
	"github.com/matzehuels/orgchart/pkg/observability"
)

const keyTypeHierarchy = "hierarchy"

// Cached wraps a Loader with a byte cache. Hierarchies are stored as JSON
// documents. Failures are never cached.
type Cached struct {
	next   Loader
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger
}

// NewCached wraps next. A nil keyer uses the default keyer; a nil cache
// disables caching.
func NewCached(next Loader, c cache.Cache, keyer cache.Keyer, ttl time.Duration) *Cached {
	if c == nil {
		c = cache.Disabled()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Cached{next: next, cache: c, keyer: keyer, ttl: ttl, logger: log.Default()}
}

// WithLogger sets the logger used for cache diagnostics.
func (c *Cached) WithLogger(l *log.Logger) *Cached {
	if l != nil {
		c.logger = l
	}
	return c
}

// Load serves from the cache when possible and fills it on a miss.
func (c *Cached) Load(ctx context.Context, orgID string, mode hierarchy.ViewMode) (*hierarchy.OrgNode, error) {
	key := c.keyer.HierarchyKey(orgID, string(mode))
	hooks := observability.Cache()

	data, hit, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("hierarchy cache read failed", "org", orgID, "mode", mode, "error", err)
	}
	if hit {
		doc, err := hierarchy.ReadDocument(bytes.NewReader(data), hierarchy.FormatJSON)
		if err == nil && doc.Root != nil {
			hooks.OnCacheHit(ctx, keyTypeHierarchy)
			c.logger.Debug("hierarchy cache hit", "org", orgID, "mode", mode)
			return doc.Root, nil
		}
		_ = c.cache.Delete(ctx, key)
	}
	hooks.OnCacheMiss(ctx, keyTypeHierarchy)

	root, err := c.next.Load(ctx, orgID, mode)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	doc := &hierarchy.Document{OrganizationID: orgID, ViewMode: mode, Root: root}
	if err := hierarchy.WriteJSON(&buf, doc); err == nil {
		if err := c.cache.Set(ctx, key, buf.Bytes(), c.ttl); err != nil {
			c.logger.Warn("hierarchy cache write failed", "org", orgID, "mode", mode, "error", err)
		} else {
			hooks.OnCacheSet(ctx, keyTypeHierarchy, buf.Len())
		}
	}
	return root, nil
}

// Invalidate drops the cached hierarchy so the next Load refetches it.
func (c *Cached) Invalidate(ctx context.Context, orgID string, mode hierarchy.ViewMode) error {
	return c.cache.Delete(ctx, c.keyer.HierarchyKey(orgID, string(mode)))
}
