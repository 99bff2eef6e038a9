// Package prom implements the observability hooks with Prometheus metrics.
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/orgchart/pkg/observability"
)

const namespace = "orgchart"

// Registry owns a Prometheus registry and every orgchart metric. It
// implements the pipeline, cache and HTTP hook interfaces.
type Registry struct {
	registry *prometheus.Registry

	LoadsTotal     *prometheus.CounterVec
	LoadDuration   *prometheus.HistogramVec
	LoadedNodes    *prometheus.HistogramVec
	LayoutDuration prometheus.Histogram
	VisibleNodes   prometheus.Histogram
	LayoutErrors   prometheus.Counter
	RendersTotal   *prometheus.CounterVec
	RenderDuration *prometheus.HistogramVec
	RenderBytes    *prometheus.HistogramVec

	CacheEvents   *prometheus.CounterVec
	CacheSetBytes *prometheus.HistogramVec

	ClientRequests *prometheus.CounterVec
	ClientDuration *prometheus.HistogramVec
	ClientErrors   *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with all metrics initialized, plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{registry: reg}
	r.initPipelineMetrics()
	r.initCacheMetrics()
	r.initHTTPMetrics()
	return r
}

// Prometheus returns the underlying Prometheus registry.
func (r *Registry) Prometheus() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Install registers r as the global pipeline, cache and HTTP hooks.
func (r *Registry) Install() {
	observability.Register(observability.Hooks{Pipeline: r, Cache: r, HTTP: r})
}

func (r *Registry) initPipelineMetrics() {
	f := promauto.With(r.registry)

	r.LoadsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Total number of hierarchy loads",
		},
		[]string{"mode", "status"},
	)
	r.LoadDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Hierarchy load duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0},
		},
		[]string{"mode"},
	)
	r.LoadedNodes = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "loaded_nodes",
			Help:      "Number of nodes per loaded hierarchy",
			Buckets:   []float64{10, 100, 1000, 10000, 100000},
		},
		[]string{"mode"},
	)
	r.LayoutDuration = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "layout_duration_seconds",
		Help:      "Layout computation duration in seconds",
		Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 1.0},
	})
	r.VisibleNodes = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "layout_visible_nodes",
		Help:      "Number of nodes placed per layout",
		Buckets:   []float64{10, 100, 1000, 10000},
	})
	r.LayoutErrors = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "layout_errors_total",
		Help:      "Total number of failed layouts",
	})
	r.RendersTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Total number of chart renders",
		},
		[]string{"format", "status"},
	)
	r.RenderDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Chart render duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"format"},
	)
	r.RenderBytes = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_bytes",
			Help:      "Size of rendered artifacts in bytes",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		},
		[]string{"format"},
	)
}

func (r *Registry) initCacheMetrics() {
	f := promauto.With(r.registry)

	r.CacheEvents = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Cache hits, misses and writes",
		},
		[]string{"key_type", "event"},
	)
	r.CacheSetBytes = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cache_set_bytes",
			Help:      "Size of cache writes in bytes",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
		},
		[]string{"key_type"},
	)
}

func (r *Registry) initHTTPMetrics() {
	f := promauto.With(r.registry)

	r.ClientRequests = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_client_requests_total",
			Help:      "Outgoing hierarchy API requests",
		},
		[]string{"method", "host", "status"},
	)
	r.ClientDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_client_duration_seconds",
			Help:      "Outgoing hierarchy API request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0},
		},
		[]string{"method", "host"},
	)
	r.ClientErrors = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_client_errors_total",
			Help:      "Outgoing hierarchy API requests that failed without a response",
		},
		[]string{"method", "host"},
	)
	r.HTTPRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)
	r.HTTPRequestDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
}

// RecordHTTPRequest records a served HTTP request with its duration.
func (r *Registry) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (r *Registry) OnLoadStart(context.Context, string, string) {}

func (r *Registry) OnLoadComplete(_ context.Context, _ string, mode string, nodes int, d time.Duration, err error) {
	r.LoadsTotal.WithLabelValues(mode, status(err)).Inc()
	r.LoadDuration.WithLabelValues(mode).Observe(d.Seconds())
	if err == nil {
		r.LoadedNodes.WithLabelValues(mode).Observe(float64(nodes))
	}
}

func (r *Registry) OnLayoutStart(context.Context, int) {}

func (r *Registry) OnLayoutComplete(_ context.Context, visible int, d time.Duration, err error) {
	if err != nil {
		r.LayoutErrors.Inc()
		return
	}
	r.LayoutDuration.Observe(d.Seconds())
	r.VisibleNodes.Observe(float64(visible))
}

func (r *Registry) OnRenderStart(context.Context, string) {}

func (r *Registry) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	r.RendersTotal.WithLabelValues(format, status(err)).Inc()
	r.RenderDuration.WithLabelValues(format).Observe(d.Seconds())
	if err == nil {
		r.RenderBytes.WithLabelValues(format).Observe(float64(size))
	}
}

func (r *Registry) OnCacheHit(_ context.Context, keyType string) {
	r.CacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (r *Registry) OnCacheMiss(_ context.Context, keyType string) {
	r.CacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (r *Registry) OnCacheSet(_ context.Context, keyType string, size int) {
	r.CacheEvents.WithLabelValues(keyType, "set").Inc()
	r.CacheSetBytes.WithLabelValues(keyType).Observe(float64(size))
}

func (r *Registry) OnRequest(context.Context, string, string, string) {}

func (r *Registry) OnResponse(_ context.Context, method, host, _ string, code int, d time.Duration) {
	r.ClientRequests.WithLabelValues(method, host, strconv.Itoa(code)).Inc()
	r.ClientDuration.WithLabelValues(method, host).Observe(d.Seconds())
}

func (r *Registry) OnError(_ context.Context, method, host, _ string, _ error) {
	r.ClientErrors.WithLabelValues(method, host).Inc()
}

var (
	_ observability.PipelineHooks = (*Registry)(nil)
	_ observability.CacheHooks    = (*Registry)(nil)
	_ observability.HTTPHooks     = (*Registry)(nil)
)
