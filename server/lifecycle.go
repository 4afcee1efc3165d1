package server

import (
	"context"
	"net"
	"net/http"
	"time"

	apperrors "github.com/vortex-fintech/go-mask/errors"
)

const (
	ReadHeaderTimeout = 5 * time.Second
	IdleTimeout       = 60 * time.Second
)

// HTTPServer runs one maskd listener under shutdown.Manager.
type HTTPServer struct {
	name    string
	srv     *http.Server
	lis     net.Listener
	onDrain func()
}

// NewAPIServer serves the format API on lis. Stopping it marks api as
// draining, so Ready fails while in-flight requests finish.
func NewAPIServer(lis net.Listener, api *Server) *HTTPServer {
	return newHTTPServer("api", lis, api, api.drain)
}

// NewOpsServer serves the /metrics, /health and /ready handler on lis.
func NewOpsServer(lis net.Listener, ops http.Handler) *HTTPServer {
	return newHTTPServer("ops", lis, ops, nil)
}

func newHTTPServer(name string, lis net.Listener, h http.Handler, onDrain func()) *HTTPServer {
	return &HTTPServer{
		name: name,
		lis:  lis,
		srv: &http.Server{
			Handler:           h,
			ReadHeaderTimeout: ReadHeaderTimeout,
			IdleTimeout:       IdleTimeout,
		},
		onDrain: onDrain,
	}
}

func (h *HTTPServer) Name() string { return h.name }

func (h *HTTPServer) Addr() net.Addr { return h.lis.Addr() }

// Serve blocks until ctx ends or the listener fails. Request contexts keep
// ctx values but not its cancellation, so a stop lets handlers finish.
func (h *HTTPServer) Serve(ctx context.Context) error {
	base := context.WithoutCancel(ctx)
	h.srv.BaseContext = func(net.Listener) context.Context { return base }

	errCh := make(chan error, 1)
	go func() { errCh <- h.srv.Serve(h.lis) }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (h *HTTPServer) GracefulStopWithTimeout(ctx context.Context) error {
	if h.onDrain != nil {
		h.onDrain()
	}
	return h.srv.Shutdown(ctx)
}

func (h *HTTPServer) ForceStop() {
	_ = h.srv.Close()
}

// Ready reports whether the API should receive traffic.
func (s *Server) Ready(context.Context) error {
	if s.draining.Load() {
		return apperrors.Unavailable().WithReason("draining").WithMessage("Server is shutting down")
	}
	if s.reg.Len() == 0 {
		return apperrors.Unavailable().WithReason("no_presets").WithMessage("No presets registered")
	}
	return nil
}

func (s *Server) drain() {
	if s.draining.CompareAndSwap(false, true) {
		s.log.Infow("api draining")
	}
}
