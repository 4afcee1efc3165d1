package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/vortex-fintech/go-mask/errors"
	"github.com/vortex-fintech/go-mask/logger"
)

const (
	HeaderRequestID    = "X-Request-ID"
	maxRequestIDLength = 128
)

// requestIDMiddleware propagates the caller's X-Request-ID or assigns a UUIDv7.
func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(HeaderRequestID)
		if !validRequestID(id) {
			id = newRequestID()
		}
		ctx.Header(HeaderRequestID, id)
		ctx.Request = ctx.Request.WithContext(logger.ContextWithRequestID(ctx.Request.Context(), id))
		ctx.Next()
	}
}

// recoveryMiddleware turns a panic into an Internal error response.
func (s *Server) recoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(ctx *gin.Context, rec any) {
		s.log.ErrorwCtx(ctx.Request.Context(), "panic recovered", "panic", fmt.Sprint(rec))
		apperrors.Internal().ToHTTP(ctx.Writer)
		ctx.Abort()
	})
}

// accessMiddleware records access logs and per-route metrics.
func (s *Server) accessMiddleware(route string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Header("Cache-Control", "no-store")
		ctx.Next()
		d := time.Since(start)

		status := ctx.Writer.Status()
		if s.metrics != nil {
			s.metrics.ObserveRequest(route, status, d)
		}

		rctx := ctx.Request.Context()
		kv := []any{"route", route, "method", ctx.Request.Method, "status", status, "duration", d}
		switch {
		case status >= http.StatusInternalServerError:
			s.log.ErrorwCtx(rctx, "request failed", kv...)
		case status >= http.StatusBadRequest:
			s.log.WarnwCtx(rctx, "request rejected", kv...)
		default:
			s.log.InfowCtx(rctx, "request served", kv...)
		}
	}
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if c := id[i]; c < 0x21 || c > 0x7e {
			return false
		}
	}
	return true
}
