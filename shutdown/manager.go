package shutdown

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vortex-fintech/go-mask/logger"
)

// Server is anything Manager can run and stop.
type Server interface {
	Serve(ctx context.Context) error
	GracefulStopWithTimeout(ctx context.Context) error
	ForceStop()
	Name() string
}

// Metrics collects shutdown statistics; metrics.ShutdownMetrics implements it.
type Metrics interface {
	IncStopTotal(result string)
	ObserveGracefulDuration(d time.Duration)
	IncServeError(name string)
	IncServerStopResult(name, result string)
}

type Config struct {
	// ShutdownTimeout bounds graceful stop. If 0, servers are force-stopped immediately.
	ShutdownTimeout time.Duration

	// HandleSignals stops the manager on SIGINT and SIGTERM.
	HandleSignals bool

	// IsNormalError reports errors from Serve that are expected during shutdown.
	// Default: DefaultIsNormalErr.
	IsNormalError func(error) bool

	// Logger defaults to a no-op logger.
	Logger logger.LoggerInterface

	Metrics Metrics
}

// Manager runs several servers and stops all of them when the context ends or
// any of them fails.
type Manager struct {
	cfg     Config
	mu      sync.Mutex
	servers []Server
	stopped bool
}

func New(cfg Config) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	if cfg.IsNormalError == nil {
		cfg.IsNormalError = DefaultIsNormalErr
	}
	return &Manager{cfg: cfg}
}

// Add registers a server. Nil servers are ignored.
func (m *Manager) Add(s Server) {
	if s == nil {
		return
	}
	m.mu.Lock()
	m.servers = append(m.servers, s)
	m.mu.Unlock()
}

// Run starts all servers and blocks until shutdown. It returns the first
// non-normal Serve error, or nil on clean shutdown.
func (m *Manager) Run(ctx context.Context) error {
	if m.cfg.HandleSignals {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
	}

	m.mu.Lock()
	servers := append([]Server(nil), m.servers...)
	m.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			name := safeName(srv)
			m.cfg.Logger.Infow("serve start", "name", name)
			err := srv.Serve(gctx)
			if err != nil && !m.cfg.IsNormalError(err) && gctx.Err() == nil {
				m.cfg.Logger.Errorw("serve error", "name", name, "err", err)
				if m.cfg.Metrics != nil {
					m.cfg.Metrics.IncServeError(name)
				}
				return err
			}
			m.cfg.Logger.Infow("serve stop", "name", name)
			return nil
		})
	}

	waitCh := make(chan error, 1)
	go func() { waitCh <- g.Wait() }()

	var (
		groupDone bool
		groupErr  error
	)
	select {
	case <-ctx.Done():
		m.cfg.Logger.Infow("context done; starting graceful stop")
	case err := <-waitCh:
		groupDone, groupErr = true, err
		m.cfg.Logger.Infow("group finished; starting graceful stop", "err", errString(err))
	}

	m.Stop()

	if !groupDone {
		select {
		case groupErr = <-waitCh:
		case <-time.After(m.cfg.ShutdownTimeout + 2*time.Second):
			return fmt.Errorf("shutdown: wait group timeout after %s", m.cfg.ShutdownTimeout)
		}
	}
	if groupErr != nil && !m.cfg.IsNormalError(groupErr) {
		return groupErr
	}
	return nil
}

// Stop gracefully stops all servers, forcing those that miss ShutdownTimeout.
// Calls after the first are no-ops.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	servers := append([]Server(nil), m.servers...)
	m.mu.Unlock()

	started := time.Now()
	var forcedAny atomic.Bool

	deadlineCtx, cancel := context.WithTimeout(context.Background(), m.cfg.ShutdownTimeout)
	defer cancel()

	var g errgroup.Group
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			name := safeName(srv)

			graceDone := make(chan error, 1)
			go func() { graceDone <- srv.GracefulStopWithTimeout(deadlineCtx) }()

			result := "success"
			select {
			case err := <-graceDone:
				if err != nil {
					m.cfg.Logger.Warnw("graceful stop error; forcing", "name", name, "err", err)
					srv.ForceStop()
					result = "force"
				} else {
					m.cfg.Logger.Infow("graceful stop done", "name", name)
				}
			case <-deadlineCtx.Done():
				m.cfg.Logger.Warnw("graceful stop timeout; forcing", "name", name)
				srv.ForceStop()
				result = "force"
			}

			if result == "force" {
				forcedAny.Store(true)
			}
			if m.cfg.Metrics != nil {
				m.cfg.Metrics.IncServerStopResult(name, result)
			}
			return nil
		})
	}
	_ = g.Wait()

	if m.cfg.Metrics != nil {
		m.cfg.Metrics.ObserveGracefulDuration(time.Since(started))
		result := "success"
		if forcedAny.Load() {
			result = "force"
		}
		m.cfg.Metrics.IncStopTotal(result)
	}
}

// DefaultIsNormalErr recognizes errors servers return when closed on purpose:
// nil, context cancellation, http.ErrServerClosed and closed listeners.
func DefaultIsNormalErr(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, http.ErrServerClosed) || errors.Is(err, context.Canceled) {
		return true
	}
	return strings.Contains(err.Error(), "use of closed network connection")
}

func errString(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}

func safeName(s Server) string {
	if n := s.Name(); n != "" {
		return n
	}
	return "server"
}
