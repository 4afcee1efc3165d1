package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ShutdownMetrics implements shutdown.Metrics.
type ShutdownMetrics struct {
	stopTotal        *prometheus.CounterVec
	serveErrors      *prometheus.CounterVec
	serverStopResult *prometheus.CounterVec
	gracefulDuration prometheus.Histogram
}

func NewShutdownMetrics(reg prometheus.Registerer, namespace string) (*ShutdownMetrics, error) {
	sm := &ShutdownMetrics{
		stopTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "shutdown",
			Name: "graceful_stop_total", Help: "Total graceful stops by result",
		}, []string{"result"}),

		serveErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "shutdown",
			Name: "server_serve_errors_total", Help: "Non-normal Serve() errors by server name",
		}, []string{"name"}),

		serverStopResult: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "shutdown",
			Name: "server_stop_result_total", Help: "Per-server graceful stop result",
		}, []string{"name", "result"}),

		gracefulDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "shutdown",
			Name: "graceful_duration_seconds", Help: "Duration of global graceful stop",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
		}),
	}

	for _, c := range []prometheus.Collector{sm.stopTotal, sm.serveErrors, sm.serverStopResult, sm.gracefulDuration} {
		if err := Register(reg, c); err != nil {
			return nil, err
		}
	}
	return sm, nil
}

func (s *ShutdownMetrics) IncStopTotal(result string) {
	s.stopTotal.WithLabelValues(result).Inc()
}

func (s *ShutdownMetrics) ObserveGracefulDuration(d time.Duration) {
	s.gracefulDuration.Observe(d.Seconds())
}

func (s *ShutdownMetrics) IncServeError(name string) {
	s.serveErrors.WithLabelValues(name).Inc()
}

func (s *ShutdownMetrics) IncServerStopResult(name, result string) {
	s.serverStopResult.WithLabelValues(name, result).Inc()
}
