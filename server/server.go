// Package server exposes the mask engine over HTTP.
package server

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/vortex-fintech/go-mask/logger"
	"github.com/vortex-fintech/go-mask/metrics"
	"github.com/vortex-fintech/go-mask/preset"
)

const maxBodyBytes = 8 << 20

const (
	FormatURL      = "/v1/format"
	FormatBatchURL = "/v1/format/batch"
	PresetsURL     = "/v1/presets"
)

type Options struct {
	Registry *preset.Registry // default: preset.Default()
	Logger   logger.LoggerInterface
	Metrics  *metrics.FormatMetrics // optional

	MaxValueRunes int // default 4096
	MaxBatch      int // default 1000
}

// Server routes the format API. It is safe for concurrent use.
type Server struct {
	reg     *preset.Registry
	log     logger.LoggerInterface
	metrics *metrics.FormatMetrics

	maxValueRunes int
	maxBatch      int

	router   *gin.Engine
	draining atomic.Bool
}

func New(opts Options) *Server {
	def := DefaultConfig()
	s := &Server{
		reg:           opts.Registry,
		log:           opts.Logger,
		metrics:       opts.Metrics,
		maxValueRunes: opts.MaxValueRunes,
		maxBatch:      opts.MaxBatch,
	}
	if s.reg == nil {
		s.reg = preset.Default()
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	if s.maxValueRunes <= 0 {
		s.maxValueRunes = def.MaxValueRunes
	}
	if s.maxBatch <= 0 {
		s.maxBatch = def.MaxBatch
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(s.requestIDMiddleware(), s.recoveryMiddleware())

	router.POST(FormatURL, s.accessMiddleware("format"), s.format)
	router.POST(FormatBatchURL, s.accessMiddleware("format_batch"), s.formatBatch)
	router.GET(PresetsURL, s.accessMiddleware("presets"), s.listPresets)

	s.router = router
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
