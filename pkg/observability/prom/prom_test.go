package prom

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/orgchart/pkg/observability"
)

func TestPipelineMetrics(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	r.OnLoadComplete(ctx, "42", "business", 4, 10*time.Millisecond, nil)
	r.OnLoadComplete(ctx, "42", "business", 0, time.Second, errors.New("timeout"))
	r.OnLayoutComplete(ctx, 3, time.Millisecond, nil)
	r.OnLayoutComplete(ctx, 0, 0, errors.New("cycle"))
	r.OnRenderComplete(ctx, "svg", 2048, time.Millisecond, nil)

	require.Equal(t, 1.0, testutil.ToFloat64(r.LoadsTotal.WithLabelValues("business", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.LoadsTotal.WithLabelValues("business", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.LayoutErrors))
	require.Equal(t, 1.0, testutil.ToFloat64(r.RendersTotal.WithLabelValues("svg", "ok")))
}

func TestCacheMetrics(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	r.OnCacheHit(ctx, "layout")
	r.OnCacheHit(ctx, "layout")
	r.OnCacheMiss(ctx, "hierarchy")
	r.OnCacheSet(ctx, "artifact", 512)

	require.Equal(t, 2.0, testutil.ToFloat64(r.CacheEvents.WithLabelValues("layout", "hit")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.CacheEvents.WithLabelValues("hierarchy", "miss")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.CacheEvents.WithLabelValues("artifact", "set")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := NewRegistry()
	r.RecordHTTPRequest("GET", "/healthz", 200, time.Millisecond)
	r.OnResponse(context.Background(), "GET", "org.example.com", "/orgs/42", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), `orgchart_http_requests_total{method="GET",route="/healthz",status="200"} 1`))
	require.True(t, strings.Contains(string(body), "orgchart_http_client_requests_total"))
	require.True(t, strings.Contains(string(body), "go_goroutines"))
}

func TestInstall(t *testing.T) {
	defer observability.Reset()

	r := NewRegistry()
	r.Install()
	require.Same(t, r, observability.Pipeline())
	require.Same(t, r, observability.Cache())
	require.Same(t, r, observability.HTTP())
}
