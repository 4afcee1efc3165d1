package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const healthCheckConcurrencyLimit = 64

type LogFunc func(path, method string, status int, duration time.Duration)

type Options struct {
	Registry *prometheus.Registry
	Register func(reg prometheus.Registerer) error

	// Ready must respect ctx.Done() and return promptly on cancellation,
	// otherwise healthCheckConcurrencyLimit can be exhausted by stuck checks.
	Ready func(ctx context.Context) error

	MetricsPath  string
	HealthPath   string
	ReadyPath    string
	ReadyTimeout time.Duration

	Log LogFunc

	// DisableRuntimeCollectors skips the process and Go collectors, which
	// keeps test registries small.
	DisableRuntimeCollectors bool
}

// New returns the ops mux (/metrics, /health, /ready) and the registry it serves.
func New(opts Options) (http.Handler, *prometheus.Registry, error) {
	metricsPath := normalizePath(opts.MetricsPath, "/metrics")
	healthPath := normalizePath(opts.HealthPath, "/health")
	readyPath := normalizePath(opts.ReadyPath, "/ready")

	readyTimeout := opts.ReadyTimeout
	if readyTimeout <= 0 {
		readyTimeout = 500 * time.Millisecond
	}

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	if !opts.DisableRuntimeCollectors {
		if err := Register(reg, collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
			return nil, nil, fmt.Errorf("metrics.register.process: %w", err)
		}
		if err := Register(reg, collectors.NewGoCollector()); err != nil {
			return nil, nil, fmt.Errorf("metrics.register.go: %w", err)
		}
	}
	if opts.Register != nil {
		if err := opts.Register(reg); err != nil {
			return nil, nil, fmt.Errorf("metrics.register.custom: %w", err)
		}
	}

	mux := http.NewServeMux()
	sem := make(chan struct{}, healthCheckConcurrencyLimit)
	metricsHandler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})

	mux.Handle(metricsPath, withLog(getOnly(metricsHandler), metricsPath, opts.Log))
	mux.Handle(healthPath, withLog(getOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, r.Method == http.MethodHead)
	})), healthPath, opts.Log))
	mux.Handle(readyPath, withLog(getOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		runReadyCheck(w, r, opts.Ready, readyTimeout, sem)
	})), readyPath, opts.Log))

	return mux, reg, nil
}

// Register adds c to reg, treating an identical existing collector as success.
func Register(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil
		}
		return err
	}
	return nil
}

func getOnly(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			writeError(w, "method not allowed", http.StatusMethodNotAllowed, false)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		h.ServeHTTP(w, r)
	})
}

func runReadyCheck(w http.ResponseWriter, r *http.Request, check func(context.Context) error, timeout time.Duration, sem chan struct{}) {
	headOnly := r.Method == http.MethodHead
	if check == nil {
		writeOK(w, headOnly)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	select {
	case sem <- struct{}{}:
	default:
		w.Header().Set("Retry-After", "1")
		writeError(w, "ready check busy", http.StatusServiceUnavailable, headOnly)
		return
	}

	done := make(chan error, 1)
	go func() {
		defer func() { <-sem }()
		done <- check(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			writeError(w, err.Error(), http.StatusServiceUnavailable, headOnly)
			return
		}
		writeOK(w, headOnly)
	case <-ctx.Done():
		w.Header().Set("Retry-After", "1")
		writeError(w, "ready check timeout", http.StatusServiceUnavailable, headOnly)
	}
}

func writeOK(w http.ResponseWriter, headOnly bool) {
	w.WriteHeader(http.StatusOK)
	if !headOnly {
		_, _ = w.Write([]byte("OK"))
	}
}

func writeError(w http.ResponseWriter, msg string, status int, headOnly bool) {
	if headOnly {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		return
	}
	http.Error(w, msg, status)
}

func normalizePath(p, def string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		p = def
	}
	if p[0] != '/' {
		p = "/" + p
	}
	return p
}

func withLog(h http.Handler, path string, log LogFunc) http.Handler {
	if log == nil {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &StatusWriter{ResponseWriter: w}
		h.ServeHTTP(sw, r)
		log(path, r.Method, sw.Status(), time.Since(start))
	})
}

// StatusWriter records the status code written through it.
type StatusWriter struct {
	http.ResponseWriter
	status int
}

func (s *StatusWriter) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *StatusWriter) Write(p []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(p)
}

// Status returns the written status, 200 when nothing was written yet.
func (s *StatusWriter) Status() int {
	if s.status == 0 {
		return http.StatusOK
	}
	return s.status
}

func (s *StatusWriter) Unwrap() http.ResponseWriter { return s.ResponseWriter }
