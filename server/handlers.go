package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc/codes"

	apperrors "github.com/vortex-fintech/go-mask/errors"
	"github.com/vortex-fintech/go-mask/logger"
	"github.com/vortex-fintech/go-mask/mask"
	"github.com/vortex-fintech/go-mask/textutil"
	"github.com/vortex-fintech/go-mask/validator"
)

const ctxCheckEvery = 256

// compiled is a PatternSpec resolved against the preset registry.
type compiled struct {
	formatter mask.Formatter
	kind      string
}

func (c compiled) mode() string {
	if c.formatter.Raw {
		return "raw"
	}
	return "masked"
}

func (s *Server) format(ctx *gin.Context) {
	var req FormatRequest
	if err := decodeJSON(ctx, &req); err != nil {
		s.abortWithError(ctx, err)
		return
	}
	if err := validator.Struct(req); err != nil {
		s.abortWithError(ctx, err)
		return
	}
	c, err := s.compile(req.PatternSpec)
	if err != nil {
		s.abortWithError(ctx, err)
		return
	}
	if err := s.checkValue("value", req.Value); err != nil {
		s.abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, FormatResponse{Result: s.formatValue(ctx, c, req.Value)})
}

func (s *Server) formatBatch(ctx *gin.Context) {
	var req BatchRequest
	if err := decodeJSON(ctx, &req); err != nil {
		s.abortWithError(ctx, err)
		return
	}
	if err := validator.Struct(req); err != nil {
		s.abortWithError(ctx, err)
		return
	}
	if len(req.Values) > s.maxBatch {
		s.abortWithError(ctx, apperrors.BatchTooLarge(s.maxBatch))
		return
	}
	c, err := s.compile(req.PatternSpec)
	if err != nil {
		s.abortWithError(ctx, err)
		return
	}
	for i, v := range req.Values {
		if err := s.checkValue(fmt.Sprintf("values[%d]", i), v); err != nil {
			s.abortWithError(ctx, err)
			return
		}
	}

	results := make([]string, len(req.Values))
	for i, v := range req.Values {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Request.Context().Err(); err != nil {
				s.abortWithError(ctx, err)
				return
			}
		}
		results[i] = s.formatValue(ctx, c, v)
	}
	ctx.JSON(http.StatusOK, BatchResponse{Results: results})
}

func (s *Server) listPresets(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, PresetsResponse{Presets: s.reg.All()})
}

// compile picks the pattern named by spec. A preset supplies its own raw
// flag unless the request sets masked explicitly.
func (s *Server) compile(spec PatternSpec) (compiled, error) {
	set := 0
	if spec.Mask != "" {
		set++
	}
	if spec.Masks != nil {
		set++
	}
	if spec.Preset != "" {
		set++
	}
	if set > 1 {
		return compiled{}, apperrors.AmbiguousPattern()
	}

	c := compiled{formatter: mask.Formatter{Normalize: spec.Normalize}}
	switch {
	case spec.Mask != "":
		c.formatter.Pattern, c.kind = mask.Single(spec.Mask), "single"
	case spec.Masks != nil:
		c.formatter.Pattern, c.kind = mask.Dynamic(spec.Masks...), "dynamic"
	case spec.Preset != "":
		p, err := s.reg.Get(spec.Preset)
		if err != nil {
			return compiled{}, err
		}
		c.formatter, c.kind = p.Formatter(nil), "preset"
		c.formatter.Normalize = spec.Normalize
	default:
		c.kind = "none"
	}
	if spec.Masked != nil {
		c.formatter.Raw = !*spec.Masked
	}
	return c, nil
}

func (s *Server) checkValue(field, v string) error {
	err := textutil.CheckInput(v, textutil.InputPolicy{MaxRunes: s.maxValueRunes, AllowEmpty: true})
	if err != nil {
		return apperrors.FromInput(field, err, s.maxValueRunes)
	}
	return nil
}

func (s *Server) formatValue(ctx *gin.Context, c compiled, v string) string {
	out := c.formatter.Value(v)
	if s.metrics != nil {
		s.metrics.ObserveValue(c.kind, c.mode(), utf8.RuneCountInString(v))
	}
	if s.log.Enabled(zapcore.DebugLevel) {
		s.log.DebugwCtx(ctx.Request.Context(), "value formatted",
			"kind", c.kind,
			"mode", c.mode(),
			logger.Value("value", v, c.formatter.Pattern, c.formatter.Tokens),
		)
	}
	return out
}

func (s *Server) abortWithError(ctx *gin.Context, err error) {
	e := apperrors.ToErrorResponse(err)
	if e.Code == codes.Internal {
		s.log.ErrorwCtx(ctx.Request.Context(), "unexpected error", "err", err)
	}
	e.ToHTTP(ctx.Writer)
	ctx.Abort()
}

// decodeJSON reads exactly one JSON object and rejects unknown fields.
func decodeJSON(ctx *gin.Context, dst any) error {
	body := http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.FromDecode(err)
	}
	if dec.More() {
		return apperrors.MalformedBody("unexpected data after JSON object")
	}
	return nil
}
