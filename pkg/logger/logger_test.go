package logger

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func resetLogger(t *testing.T) {
	t.Helper()
	orig, origBuild := base, buildLogger
	base = nil
	once = sync.Once{}
	t.Cleanup(func() {
		base = orig
		buildLogger = origBuild
		once = sync.Once{}
	})
}

// observe swaps in an in-memory core so tests can read what was logged
func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	resetLogger(t)
	core, logs := observer.New(zapcore.DebugLevel)
	buildLogger = func(zap.Config) (*zap.Logger, error) { return zap.New(core), nil }
	Init("production")
	return logs
}

func TestContextFields(t *testing.T) {
	logs := observe(t)

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithWallet(ctx, "GABC")
	ctx = WithTransaction(ctx, "deadbeef")
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "GABC", Wallet(ctx))

	Info(ctx, "submitted")
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "GABC", fields["wallet"])
	assert.Equal(t, "deadbeef", fields["tx_hash"])

	Debug(context.Background(), "plain")
	assert.Empty(t, logs.All()[1].ContextMap())
}

func TestWithContextNil(t *testing.T) {
	Init("development")
	//nolint:staticcheck // nil context is tolerated
	assert.NotNil(t, WithContext(nil))
	//nolint:staticcheck
	assert.Empty(t, RequestID(nil))
}

func TestLogAccess_LevelFollowsStatus(t *testing.T) {
	logs := observe(t)
	ctx := WithRequestID(context.Background(), "req-2")

	LogAccess(ctx, AccessEntry{Method: http.MethodGet, Path: "/api/v1/lotteries", Status: http.StatusOK, Latency: time.Millisecond})
	LogAccess(ctx, AccessEntry{Method: http.MethodPost, Path: "/api/v1/lotteries", Status: http.StatusUnprocessableEntity})
	LogAccess(ctx, AccessEntry{Method: http.MethodPost, Path: "/api/v1/lotteries", Status: http.StatusBadGateway, IdempotencyHit: true})

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.NotContains(t, entries[0].ContextMap(), "idempotency_hit")
	assert.Equal(t, true, entries[2].ContextMap()["idempotency_hit"])
	assert.Equal(t, int64(http.StatusBadGateway), entries[2].ContextMap()["status"])
}

func TestGetLogger_NopBeforeInit(t *testing.T) {
	resetLogger(t)
	assert.NotNil(t, GetLogger())
	Warn(context.Background(), "dropped")
	Error(context.Background(), "dropped")
}

func TestInit_ProductionAndSetLevel(t *testing.T) {
	resetLogger(t)

	Init("production")
	require.NotNil(t, base)
	SetLevel(zapcore.DebugLevel)
	assert.Equal(t, zapcore.DebugLevel, level.Level())
}

func TestInit_PanicWhenLoggerBuildFails(t *testing.T) {
	resetLogger(t)
	buildLogger = func(zap.Config) (*zap.Logger, error) {
		return nil, errors.New("build failed")
	}

	assert.Panics(t, func() { Init("production") })
}
