// Package logger configures zap for maskd and maskit. Entries always go to
// stderr because maskit writes formatted values to stdout.
package logger

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	EnvDevelopment = "development"
	EnvDebug       = "debug"
	EnvProduction  = "production"
)

type requestIDKey struct{}

// Logger is a leveled key-value logger that stamps request IDs taken from ctx.
type Logger struct {
	s *zap.SugaredLogger
}

// Init is New that exits the process on failure; meant for main packages.
func Init(name, env string) *Logger {
	l, err := New(name, env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
		os.Exit(1)
	}
	return l
}

func New(name, env string) (*Logger, error) {
	cfg := buildConfig(env)
	z, err := cfg.Build(zap.WithCaller(cfg.EncoderConfig.CallerKey != zapcore.OmitKey))
	if err != nil {
		return nil, fmt.Errorf("cannot init zap logger: %w", err)
	}
	return Wrap(z.Named(name)), nil
}

// Wrap adapts an existing zap logger, e.g. one built on an observer core in tests.
func Wrap(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{s: z.WithOptions(zap.AddCallerSkip(2)).Sugar()}
}

func NewNop() *Logger { return Wrap(nil) }

// buildConfig maps an environment name onto a zap config. Production writes
// JSON at info level; development and debug write colored console lines at
// debug level, and debug adds callers and stack traces. Unknown names get the
// console encoder at info level.
func buildConfig(env string) zap.Config {
	env = strings.ToLower(strings.TrimSpace(env))

	var cfg zap.Config
	if env == EnvProduction {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level := zapcore.InfoLevel
	if env == EnvDevelopment || env == EnvDebug {
		level = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = env != EnvDebug

	enc := &cfg.EncoderConfig
	enc.TimeKey = "timestamp"
	enc.LevelKey = "level"
	enc.MessageKey = "msg"
	enc.NameKey = "logger"
	enc.CallerKey = zapcore.OmitKey
	if env == EnvDebug {
		enc.CallerKey = "caller"
	}
	enc.EncodeTime = zapcore.ISO8601TimeEncoder

	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg
}

// Enabled reports whether entries at lvl are written. Callers use it to skip
// building fields that are expensive to compute.
func (l *Logger) Enabled(lvl zapcore.Level) bool {
	return l.s.Desugar().Core().Enabled(lvl)
}

func (l *Logger) With(kv ...any) LoggerInterface {
	return &Logger{s: l.s.With(kv...)}
}

func (l *Logger) Debugw(msg string, kv ...any) {
	l.log(context.Background(), zapcore.DebugLevel, msg, kv)
}

func (l *Logger) Infow(msg string, kv ...any) {
	l.log(context.Background(), zapcore.InfoLevel, msg, kv)
}

func (l *Logger) Warnw(msg string, kv ...any) {
	l.log(context.Background(), zapcore.WarnLevel, msg, kv)
}

func (l *Logger) Errorw(msg string, kv ...any) {
	l.log(context.Background(), zapcore.ErrorLevel, msg, kv)
}

func (l *Logger) DebugwCtx(ctx context.Context, msg string, kv ...any) {
	l.log(ctx, zapcore.DebugLevel, msg, kv)
}

func (l *Logger) InfowCtx(ctx context.Context, msg string, kv ...any) {
	l.log(ctx, zapcore.InfoLevel, msg, kv)
}

func (l *Logger) WarnwCtx(ctx context.Context, msg string, kv ...any) {
	l.log(ctx, zapcore.WarnLevel, msg, kv)
}

func (l *Logger) ErrorwCtx(ctx context.Context, msg string, kv ...any) {
	l.log(ctx, zapcore.ErrorLevel, msg, kv)
}

func (l *Logger) log(ctx context.Context, lvl zapcore.Level, msg string, kv []any) {
	if !l.Enabled(lvl) {
		return
	}
	if id := RequestID(ctx); id != "" {
		kv = append(kv, "request_id", id)
	}
	switch lvl {
	case zapcore.DebugLevel:
		l.s.Debugw(msg, kv...)
	case zapcore.InfoLevel:
		l.s.Infow(msg, kv...)
	case zapcore.WarnLevel:
		l.s.Warnw(msg, kv...)
	default:
		l.s.Errorw(msg, kv...)
	}
}

// SafeSync flushes buffered entries, ignoring the errors stderr reports when it
// is a terminal or a pipe.
func (l *Logger) SafeSync() {
	if l == nil {
		return
	}
	if err := l.s.Sync(); err != nil && !isIgnorableSyncError(err) {
		l.Errorw("log sync error", "err", err)
	}
}

func isIgnorableSyncError(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "invalid argument") ||
		strings.Contains(s, "inappropriate ioctl for device") ||
		strings.Contains(s, "bad file descriptor")
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(requestIDKey{}).(string)
	return s
}
