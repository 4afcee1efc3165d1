//go:build unit
// +build unit

package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vortex-fintech/go-mask/mask"
)

func TestBuildConfigByEnvironment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		env              string
		wantLevel        zapcore.Level
		wantEncoding     string
		wantDisableStack bool
		wantCallerKey    string
	}{
		{name: "development", env: EnvDevelopment, wantLevel: zap.DebugLevel, wantEncoding: "console", wantDisableStack: true, wantCallerKey: zapcore.OmitKey},
		{name: "debug", env: " DEBUG ", wantLevel: zap.DebugLevel, wantEncoding: "console", wantDisableStack: false, wantCallerKey: "caller"},
		{name: "production", env: EnvProduction, wantLevel: zap.InfoLevel, wantEncoding: "json", wantDisableStack: true, wantCallerKey: zapcore.OmitKey},
		{name: "fallback", env: "unknown", wantLevel: zap.InfoLevel, wantEncoding: "console", wantDisableStack: true, wantCallerKey: zapcore.OmitKey},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := buildConfig(tc.env)

			require.Equal(t, tc.wantLevel, cfg.Level.Level())
			require.Equal(t, tc.wantEncoding, cfg.Encoding)
			require.Equal(t, tc.wantDisableStack, cfg.DisableStacktrace)
			require.Equal(t, tc.wantCallerKey, cfg.EncoderConfig.CallerKey)
			require.Equal(t, "timestamp", cfg.EncoderConfig.TimeKey)
			require.Equal(t, "msg", cfg.EncoderConfig.MessageKey)
			require.Equal(t, []string{"stderr"}, cfg.OutputPaths)
			require.Equal(t, []string{"stderr"}, cfg.ErrorOutputPaths)
		})
	}
}

func TestNewReturnsLogger(t *testing.T) {
	t.Parallel()

	l, err := New("maskd", EnvProduction)
	require.NoError(t, err)
	require.NotNil(t, l)
	require.True(t, l.Enabled(zapcore.InfoLevel))
	require.False(t, l.Enabled(zapcore.DebugLevel))

	l.Infow("startup", "component", "logger")
	l.SafeSync()
}

func TestIsIgnorableSyncError(t *testing.T) {
	t.Parallel()

	require.False(t, isIgnorableSyncError(nil))
	require.True(t, isIgnorableSyncError(errors.New("sync /dev/stderr: invalid argument")))
	require.True(t, isIgnorableSyncError(errors.New("sync /dev/stderr: inappropriate ioctl for device")))
	require.False(t, isIgnorableSyncError(errors.New("disk write failed")))
}

func TestRequestIDIsAppended(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	l := Wrap(zap.New(core))

	ctx := ContextWithRequestID(context.Background(), "req-1")
	l.With("component", "test").InfowCtx(ctx, "formatted", "preset", "cpf")
	l.Warnw("no context")

	entries := logs.All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	require.Equal(t, "req-1", fields["request_id"])
	require.Equal(t, "cpf", fields["preset"])
	require.Equal(t, "test", fields["component"])
	require.NotContains(t, entries[1].ContextMap(), "request_id")
	require.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestLevelsBelowCoreAreDropped(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	l := Wrap(zap.New(core))

	l.Debugw("debug")
	l.InfowCtx(context.Background(), "info")
	l.Warnw("warn")
	l.ErrorwCtx(context.Background(), "error")

	require.False(t, l.Enabled(zapcore.InfoLevel))
	require.True(t, l.Enabled(zapcore.ErrorLevel))
	require.Equal(t, 2, logs.Len())
	require.Equal(t, 1, logs.FilterMessage("warn").Len())
	require.Equal(t, 1, logs.FilterMessage("error").Len())
}

func TestRequestID_NilContext(t *testing.T) {
	t.Parallel()

	//nolint:staticcheck // nil context is part of the contract
	ctx := ContextWithRequestID(nil, "req-1")
	require.Equal(t, "req-1", RequestID(ctx))
	//nolint:staticcheck
	require.Equal(t, "", RequestID(nil))
	require.Equal(t, "", RequestID(context.Background()))
}

func TestValue_RedactsOnlyWhenWritten(t *testing.T) {
	t.Parallel()

	calls := 0
	tokens := mask.DefaultTokens().With('#', mask.Class(func(r rune) bool {
		calls++
		return r >= '0' && r <= '9'
	}))
	p := mask.Single("(##) #####-####")

	core, logs := observer.New(zap.InfoLevel)
	l := Wrap(zap.New(core))

	l.Debugw("value formatted", Value("value", "11987654321", p, tokens))
	require.Zero(t, calls)
	require.Zero(t, logs.Len())

	l.Infow("value formatted", Value("value", "11987654321", p, tokens))
	entries := logs.FilterMessage("value formatted").All()
	require.Len(t, entries, 1)
	require.Equal(t, "(**) *****-4321", entries[0].ContextMap()["value"])
	require.Positive(t, calls)
}

func TestNopAndWrapNil(t *testing.T) {
	t.Parallel()

	var _ LoggerInterface = NewNop()
	var _ LoggerInterface = Wrap(nil)
	require.False(t, NewNop().Enabled(zapcore.ErrorLevel))
	NewNop().Infow("discarded")
	NewNop().SafeSync()
}
