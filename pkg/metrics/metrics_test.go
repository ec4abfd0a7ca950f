package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRoute(t *testing.T) {
	cases := map[string]string{
		"coupon/campaign/mf-expired/":            "coupon/campaign/{slug}/",
		"coupon/campaign/mf-expired/redemption/": "coupon/campaign/{slug}/redemption/",
		"coupon/campaign/x":                      "coupon/campaign/{slug}",
		"other/path/":                            "other/path/",
	}
	for in, want := range cases {
		if got := Route(in); got != want {
			t.Fatalf("Route(%q) = %q want %q", in, got, want)
		}
	}
}

func TestObserveRequestCountsByCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewRequestMetrics(reg)
	if err != nil {
		t.Fatalf("NewRequestMetrics: %v", err)
	}

	m.ObserveRequest("GET", "coupon/campaign/a/", 200, 10*time.Millisecond)
	m.ObserveRequest("GET", "coupon/campaign/b/", 200, 20*time.Millisecond)
	m.ObserveRequest("GET", "coupon/campaign/c/", 410, 5*time.Millisecond)
	m.ObserveRequest("POST", "coupon/campaign/c/redemption/", 0, time.Second)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "coupon/campaign/{slug}/", "200")); got != 2 {
		t.Fatalf("200 count = %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "coupon/campaign/{slug}/", "410")); got != 1 {
		t.Fatalf("410 count = %v", got)
	}

	expected := `
# HELP madefire_sdk_requests_total Coupon API requests by method, route and result code (0 transport failure, 500 also for malformed bodies)
# TYPE madefire_sdk_requests_total counter
madefire_sdk_requests_total{code="0",method="POST",route="coupon/campaign/{slug}/redemption/"} 1
madefire_sdk_requests_total{code="200",method="GET",route="coupon/campaign/{slug}/"} 2
madefire_sdk_requests_total{code="410",method="GET",route="coupon/campaign/{slug}/"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "madefire_sdk_requests_total"); err != nil {
		t.Fatalf("GatherAndCompare: %v", err)
	}
}

func TestNewRequestMetricsRejectsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewRequestMetrics(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewRequestMetrics(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestNilMetricsIgnoresObservations(t *testing.T) {
	var m *RequestMetrics
	m.ObserveRequest("GET", "x", 200, time.Millisecond)
}
