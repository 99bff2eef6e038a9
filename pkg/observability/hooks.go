// Package observability lets the loader, cache and pipeline report what
// they do without depending on a metrics backend.
//
// Until a backend registers, every hook discards its events. The server
// installs Prometheus at startup:
//
//	reg := prom.NewRegistry()
//	observability.Register(observability.Hooks{Pipeline: reg, Cache: reg, HTTP: reg})
//
// and library code reports through the accessors:
//
//	observability.Pipeline().OnLoadStart(ctx, orgID, mode)
//	root, err := fetch(ctx)
//	observability.Pipeline().OnLoadComplete(ctx, orgID, mode, hierarchy.Count(root), time.Since(start), err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks receives events from the load, layout and render stages.
type PipelineHooks interface {
	// OnLoadStart and OnLoadComplete bracket a hierarchy fetch. mode is the
	// view mode; nodeCount is zero when err is set.
	OnLoadStart(ctx context.Context, orgID, mode string)
	OnLoadComplete(ctx context.Context, orgID, mode string, nodeCount int, duration time.Duration, err error)

	// visible counts the nodes placed after collapsing.
	OnLayoutStart(ctx context.Context, nodeCount int)
	OnLayoutComplete(ctx context.Context, visible int, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// CacheHooks receives cache lookups and writes. keyType is "hierarchy",
// "layout" or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives the outgoing requests of the HTTP hierarchy source.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError reports transport failures; non-2xx statuses go to OnResponse.
	OnError(ctx context.Context, method, host, path string, err error)
}

// Hooks bundles one backend per event family. Nil fields discard events.
type Hooks struct {
	Pipeline PipelineHooks
	Cache    CacheHooks
	HTTP     HTTPHooks
}

// Discard implements every hook interface and drops all events.
type Discard struct{}

func (Discard) OnLoadStart(context.Context, string, string)                               {}
func (Discard) OnLoadComplete(context.Context, string, string, int, time.Duration, error) {}
func (Discard) OnLayoutStart(context.Context, int)                                        {}
func (Discard) OnLayoutComplete(context.Context, int, time.Duration, error)               {}
func (Discard) OnRenderStart(context.Context, string)                                     {}
func (Discard) OnRenderComplete(context.Context, string, int, time.Duration, error)       {}
func (Discard) OnCacheHit(context.Context, string)                                        {}
func (Discard) OnCacheMiss(context.Context, string)                                       {}
func (Discard) OnCacheSet(context.Context, string, int)                                   {}
func (Discard) OnRequest(context.Context, string, string, string)                         {}
func (Discard) OnResponse(context.Context, string, string, string, int, time.Duration)    {}
func (Discard) OnError(context.Context, string, string, string, error)                    {}

var current atomic.Pointer[Hooks]

func init() { Reset() }

// Register replaces the active hooks. Register at startup, before the
// pipeline runs.
func Register(h Hooks) {
	if h.Pipeline == nil {
		h.Pipeline = Discard{}
	}
	if h.Cache == nil {
		h.Cache = Discard{}
	}
	if h.HTTP == nil {
		h.HTTP = Discard{}
	}
	current.Store(&h)
}

// Reset discards all events again.
func Reset() { Register(Hooks{}) }

// Pipeline returns the active pipeline hooks.
func Pipeline() PipelineHooks { return current.Load().Pipeline }

// Cache returns the active cache hooks.
func Cache() CacheHooks { return current.Load().Cache }

// HTTP returns the active HTTP hooks.
func HTTP() HTTPHooks { return current.Load().HTTP }
