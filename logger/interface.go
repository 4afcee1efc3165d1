package logger

import (
	"context"

	"go.uber.org/zap/zapcore"
)

// LoggerInterface is what the server, the shutdown manager and the binaries
// log through. The Ctx variants add the request ID carried by ctx.
type LoggerInterface interface {
	Debugw(msg string, kv ...any)
	Infow(msg string, kv ...any)
	Warnw(msg string, kv ...any)
	Errorw(msg string, kv ...any)

	DebugwCtx(ctx context.Context, msg string, kv ...any)
	InfowCtx(ctx context.Context, msg string, kv ...any)
	WarnwCtx(ctx context.Context, msg string, kv ...any)
	ErrorwCtx(ctx context.Context, msg string, kv ...any)

	Enabled(lvl zapcore.Level) bool
	With(kv ...any) LoggerInterface
	SafeSync()
}
