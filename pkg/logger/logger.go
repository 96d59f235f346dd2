package logger

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	base  *zap.Logger
	level zap.AtomicLevel
	once  sync.Once
)

var buildLogger = func(cfg zap.Config) (*zap.Logger, error) {
	return cfg.Build(zap.AddCallerSkip(1))
}

type ctxKey int

const (
	requestIDKey ctxKey = iota
	walletKey
	txHashKey
)

// Init builds the process logger once: console output for development,
// JSON with ISO8601 timestamps everywhere else.
func Init(env string) {
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if env == "development" {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}

		l, err := buildLogger(cfg)
		if err != nil {
			panic(err)
		}
		base = l
		level = cfg.Level
	})
}

// SetLevel changes the level of an initialized logger at runtime
func SetLevel(l zapcore.Level) {
	if base != nil {
		level.SetLevel(l)
	}
}

// GetLogger returns the process logger, or a no-op logger before Init
func GetLogger() *zap.Logger {
	if base == nil {
		return zap.NewNop()
	}
	return base
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// WithWallet tags every later log line on ctx with the signing address
func WithWallet(ctx context.Context, address string) context.Context {
	return context.WithValue(ctx, walletKey, address)
}

// WithTransaction tags every later log line on ctx with a transaction hash
func WithTransaction(ctx context.Context, hash string) context.Context {
	return context.WithValue(ctx, txHashKey, hash)
}

func RequestID(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

func Wallet(ctx context.Context) string {
	return stringValue(ctx, walletKey)
}

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// WithContext returns the logger carrying the correlation fields found on ctx
func WithContext(ctx context.Context) *zap.Logger {
	l := GetLogger()
	if ctx == nil {
		return l
	}
	fields := make([]zap.Field, 0, 3)
	if id := stringValue(ctx, requestIDKey); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if addr := stringValue(ctx, walletKey); addr != "" {
		fields = append(fields, zap.String("wallet", addr))
	}
	if hash := stringValue(ctx, txHashKey); hash != "" {
		fields = append(fields, zap.String("tx_hash", hash))
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

func Info(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Info(msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Error(msg, fields...)
}

func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Debug(msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Warn(msg, fields...)
}

// AccessEntry describes one served HTTP request
type AccessEntry struct {
	Method         string
	Path           string
	Status         int
	Latency        time.Duration
	ClientIP       string
	IdempotencyHit bool
}

// LogAccess writes an access log line. Server errors log at error level and
// client errors at warn so failed submissions stand out from reads.
func LogAccess(ctx context.Context, e AccessEntry) {
	fields := []zap.Field{
		zap.String("method", e.Method),
		zap.String("path", e.Path),
		zap.Int("status", e.Status),
		zap.Duration("latency", e.Latency),
		zap.String("client_ip", e.ClientIP),
	}
	if e.IdempotencyHit {
		fields = append(fields, zap.Bool("idempotency_hit", true))
	}

	l := WithContext(ctx)
	switch {
	case e.Status >= http.StatusInternalServerError:
		l.Error("HTTP request", fields...)
	case e.Status >= http.StatusBadRequest:
		l.Warn("HTTP request", fields...)
	default:
		l.Info("HTTP request", fields...)
	}
}
