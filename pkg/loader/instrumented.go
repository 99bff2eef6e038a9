package loader

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/hierarchy"
	"github.com/matzehuels/orgchart/pkg/observability"
)

// Instrumented reports every load to the pipeline hooks and the logger.
type Instrumented struct {
	next   Loader
	logger *log.Logger
}

// Instrument wraps next. A nil logger uses log.Default().
func Instrument(next Loader, logger *log.Logger) *Instrumented {
	if logger == nil {
		logger = log.Default()
	}
	return &Instrumented{next: next, logger: logger}
}

// Load delegates to the wrapped loader.
func (i *Instrumented) Load(ctx context.Context, orgID string, mode hierarchy.ViewMode) (*hierarchy.OrgNode, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, orgID, string(mode))
	start := time.Now()

	root, err := i.next.Load(ctx, orgID, mode)
	d := time.Since(start)
	nodes := hierarchy.Count(root)
	hooks.OnLoadComplete(ctx, orgID, string(mode), nodes, d, err)

	switch {
	case err == nil:
		i.logger.Info("loaded hierarchy", "org", orgID, "mode", mode, "nodes", nodes, "duration", d)
	case errors.Is(err, errors.ErrCodeEmptyData):
		i.logger.Info("hierarchy is empty", "org", orgID, "mode", mode)
	default:
		i.logger.Warn("load failed", "org", orgID, "mode", mode, "error", err, "duration", d)
	}
	return root, err
}

// Invalidate forwards to the wrapped loader when it caches.
func (i *Instrumented) Invalidate(ctx context.Context, orgID string, mode hierarchy.ViewMode) error {
	if inv, ok := i.next.(Invalidator); ok {
		return inv.Invalidate(ctx, orgID, mode)
	}
	return nil
}

// Invalidator is implemented by loaders that cache results.
type Invalidator interface {
	Invalidate(ctx context.Context, orgID string, mode hierarchy.ViewMode) error
}

var (
	_ Invalidator = (*Cached)(nil)
	_ Invalidator = (*Instrumented)(nil)
)
