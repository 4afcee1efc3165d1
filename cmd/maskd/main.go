// maskd serves the mask engine over HTTP with a separate ops listener for
// /metrics, /health and /ready.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vortex-fintech/go-mask/logger"
	"github.com/vortex-fintech/go-mask/metrics"
	"github.com/vortex-fintech/go-mask/preset"
	"github.com/vortex-fintech/go-mask/server"
	"github.com/vortex-fintech/go-mask/shutdown"
)

const serviceName = "maskd"

func main() {
	envFile := flag.String("env-file", ".env", "dotenv file seeding MASKD_* variables; skipped when missing")
	flag.Parse()

	cfg, err := server.LoadConfig(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}

	log := logger.Init(serviceName, cfg.Env)
	if err := run(context.Background(), cfg, log); err != nil {
		log.Errorw("maskd stopped with error", "err", err)
		log.SafeSync()
		os.Exit(1)
	}
	log.SafeSync()
}

func run(ctx context.Context, cfg server.Config, log logger.LoggerInterface) error {
	if cfg.Env != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := preset.Default()
	if cfg.PresetsFile != "" {
		n, err := reg.LoadFile(cfg.PresetsFile)
		if err != nil {
			return err
		}
		log.Infow("presets loaded", "file", cfg.PresetsFile, "count", n)
	}

	promReg := prometheus.NewRegistry()
	formatMetrics, err := metrics.NewFormatMetrics(promReg, serviceName)
	if err != nil {
		return fmt.Errorf("format metrics: %w", err)
	}
	shutdownMetrics, err := metrics.NewShutdownMetrics(promReg, serviceName)
	if err != nil {
		return fmt.Errorf("shutdown metrics: %w", err)
	}

	mgr := shutdown.New(shutdown.Config{
		ShutdownTimeout: cfg.ShutdownTimeout,
		HandleSignals:   true,
		Logger:          log,
		Metrics:         shutdownMetrics,
	})

	api := server.New(server.Options{
		Registry:      reg,
		Logger:        log,
		Metrics:       formatMetrics,
		MaxValueRunes: cfg.MaxValueRunes,
		MaxBatch:      cfg.MaxBatch,
	})
	apiLis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.HTTPAddr, err)
	}
	apiSrv := server.NewAPIServer(apiLis, api)
	mgr.Add(apiSrv)

	if cfg.MetricsAddr != "" {
		ops, _, err := metrics.New(metrics.Options{
			Registry: promReg,
			Ready:    api.Ready,
			Log: func(path, method string, status int, d time.Duration) {
				log.Debugw("ops request", "path", path, "method", method, "status", status, "duration", d)
			},
		})
		if err != nil {
			_ = apiLis.Close()
			return err
		}
		opsLis, err := net.Listen("tcp", cfg.MetricsAddr)
		if err != nil {
			_ = apiLis.Close()
			return fmt.Errorf("listen %s: %w", cfg.MetricsAddr, err)
		}
		mgr.Add(server.NewOpsServer(opsLis, ops))
	}

	log.Infow("maskd started",
		"http_addr", apiSrv.Addr().String(),
		"metrics_addr", cfg.MetricsAddr,
		"presets", reg.Len(),
	)
	return mgr.Run(ctx)
}
