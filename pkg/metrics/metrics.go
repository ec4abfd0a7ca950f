package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics records SDK request outcomes. It satisfies api.Observer.
type RequestMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRequestMetrics registers the request collectors on reg.
func NewRequestMetrics(reg prometheus.Registerer) (*RequestMetrics, error) {
	m := &RequestMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "madefire_sdk_requests_total",
				Help: "Coupon API requests by method, route and result code (0 transport failure, 500 also for malformed bodies)",
			},
			[]string{"method", "route", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "madefire_sdk_request_duration_seconds",
				Help: "Duration of coupon API requests in seconds",
				Buckets: []float64{
					0.01,  // 10ms
					0.025, // 25ms
					0.05,  // 50ms
					0.1,   // 100ms
					0.25,  // 250ms
					0.5,   // 500ms
					1.0,   // 1s
					2.5,   // 2.5s
					5.0,   // 5s
					10.0,  // 10s
					30.0,  // 30s
				},
			},
			[]string{"method", "route"},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveRequest records one completed call.
func (m *RequestMetrics) ObserveRequest(method, path string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	route := Route(path)
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Route collapses the campaign slug so label cardinality stays bounded.
func Route(path string) string {
	const prefix = "coupon/campaign/"
	rest, ok := strings.CutPrefix(path, prefix)
	if !ok {
		return path
	}
	_, tail, found := strings.Cut(rest, "/")
	if !found {
		return prefix + "{slug}"
	}
	return prefix + "{slug}/" + tail
}
