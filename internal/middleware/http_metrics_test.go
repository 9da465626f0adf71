package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "/"},
		{"/v1/search", "/v1/search"},
		{"/v1/nearby", "/v1/nearby"},
		{"/v1/recommendations", "/v1/recommendations"},
		{"/health", "/health"},
		{"/metrics", "/metrics"},
		{"/v1/search/abc123", "/v1/search/{id}"},
		{"/v1/recommendations/xyz", "/v1/recommendations/{id}"},
		{"/unknown/route", "/unknown/route"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := normalizePath(tt.path); got != tt.want {
				t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

// findMetricFamily gathers the registry and returns the named family, or nil.
func findMetricFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, fam := range families {
		if fam.GetName() == name {
			return fam
		}
	}
	return nil
}

// counterValue extracts the value of a labeled counter from a registry gather.
// Histograms report their sample count.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	fam := findMetricFamily(t, reg, name)
	if fam == nil {
		return 0
	}
metric:
	for _, m := range fam.GetMetric() {
		for _, lp := range m.GetLabel() {
			if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
				continue metric
			}
		}
		switch {
		case m.GetCounter() != nil:
			return m.GetCounter().GetValue()
		case m.GetHistogram() != nil:
			return float64(m.GetHistogram().GetSampleCount())
		}
	}
	return 0
}

func TestHTTPMetricsRecordsRequests(t *testing.T) {
	metrics := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		t.Fatal(err)
	}

	handler := HTTPMetrics(metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(`{"query":"tacos"}`))
	req.Header.Set("Content-Length", "17")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	labels := map[string]string{"method": "POST", "path": "/v1/search", "status": "200"}
	if got := counterValue(t, reg, MetricHTTPRequestsTotal, labels); got != 1 {
		t.Errorf("expected 1 request counted, got %v", got)
	}
	if got := counterValue(t, reg, MetricHTTPRequestDuration, labels); got != 1 {
		t.Errorf("expected 1 duration observation, got %v", got)
	}
}

func TestHTTPMetricsSkipsHealthEndpoints(t *testing.T) {
	metrics := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		t.Fatal(err)
	}

	handler := HTTPMetrics(metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/health", "/ready"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	if fam := findMetricFamily(t, reg, MetricHTTPRequestsTotal); fam != nil && len(fam.GetMetric()) > 0 {
		t.Error("health endpoints should not be recorded in metrics")
	}
}

func TestMetricsRegisterTwiceFails(t *testing.T) {
	metrics := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		t.Fatal(err)
	}
	if err := metrics.Register(reg); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestCacheAndProviderCounters(t *testing.T) {
	metrics := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		t.Fatal(err)
	}

	metrics.IncSearchCacheHits()
	metrics.IncSearchCacheMisses()
	metrics.IncSearchCacheMisses()
	metrics.IncProviderRequests("searchText", "ok")
	metrics.IncProviderRequests("searchText", "rate_limited")

	if got := counterValue(t, reg, MetricSearchCacheHits, nil); got != 1 {
		t.Errorf("expected 1 cache hit, got %v", got)
	}
	if got := counterValue(t, reg, MetricSearchCacheMisses, nil); got != 2 {
		t.Errorf("expected 2 cache misses, got %v", got)
	}
	if got := counterValue(t, reg, MetricProviderRequests, map[string]string{"endpoint": "searchText", "outcome": "ok"}); got != 1 {
		t.Errorf("expected 1 ok provider call, got %v", got)
	}
}
