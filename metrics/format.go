package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FormatMetrics instruments the format API.
type FormatMetrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	values      *prometheus.CounterVec
	valueLength prometheus.Histogram
}

func NewFormatMetrics(reg prometheus.Registerer, namespace string) (*FormatMetrics, error) {
	fm := &FormatMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http",
			Name: "requests_total", Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http",
			Name: "request_duration_seconds", Help: "HTTP request latency by route",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"route"}),

		values: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "format",
			Name: "values_total", Help: "Formatted values by pattern kind and output mode",
		}, []string{"kind", "mode"}),

		valueLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "format",
			Name: "value_runes", Help: "Rune length of input values",
			Buckets: prometheus.ExponentialBuckets(4, 2, 8),
		}),
	}

	for _, c := range []prometheus.Collector{fm.requests, fm.duration, fm.values, fm.valueLength} {
		if err := Register(reg, c); err != nil {
			return nil, err
		}
	}
	return fm, nil
}

func (m *FormatMetrics) ObserveRequest(route string, status int, d time.Duration) {
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveValue counts one formatted value; kind is "none", "single", "dynamic"
// or "preset", mode is "masked" or "raw".
func (m *FormatMetrics) ObserveValue(kind, mode string, runes int) {
	m.values.WithLabelValues(kind, mode).Inc()
	m.valueLength.Observe(float64(runes))
}
